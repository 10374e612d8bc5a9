package dataset

import (
	"math"
	"time"
)

// Column is a header name in the source file or the name of a derived field
type Column string

// Source columns
const (
	ColumnOrderID      Column = "Order ID"
	ColumnOrderDate    Column = "Order Date"
	ColumnShipDate     Column = "Ship Date"
	ColumnCustomerName Column = "Customer Name"
	ColumnRegion       Column = "Region"
	ColumnState        Column = "State"
	ColumnCategory     Column = "Category"
	ColumnSubCategory  Column = "Sub-Category"
	ColumnProductName  Column = "Product Name"
	ColumnSegment      Column = "Segment"
	ColumnSales        Column = "Sales"
	ColumnQuantity     Column = "Quantity"
	ColumnDiscount     Column = "Discount"
	ColumnProfit       Column = "Profit"
)

// Derived columns
const (
	ColumnProfitMargin  Column = "Profit Margin"
	ColumnProfitPerUnit Column = "Profit Per Unit"
	ColumnDiscounted    Column = "Discounted"
	ColumnOrderMonth    Column = "Order Month"
	ColumnOrderDay      Column = "Order Day"
	ColumnOrderYear     Column = "Order Year"
	ColumnStateCode     Column = "State Code"
	ColumnDiscountLevel Column = "Discount Level"
	ColumnShipDays      Column = "Ship Days"
)

// SourceColumns lists every column the source file must provide
//
//nolint:gochecknoglobals // Read-only schema
var SourceColumns = []Column{
	ColumnOrderID,
	ColumnOrderDate,
	ColumnShipDate,
	ColumnCustomerName,
	ColumnRegion,
	ColumnState,
	ColumnCategory,
	ColumnSubCategory,
	ColumnProductName,
	ColumnSegment,
	ColumnSales,
	ColumnQuantity,
	ColumnDiscount,
	ColumnProfit,
}

// Transaction is one order line item with its derived fields.
// Null numeric values are stored as NaN.
type Transaction struct {
	// Ordinal is the zero-based position of the row in the source file
	Ordinal int `json:"ordinal"`

	OrderID      string    `json:"order_id"`
	OrderDate    time.Time `json:"order_date"`
	ShipDate     time.Time `json:"ship_date"`
	CustomerName string    `json:"customer_name"`
	Region       string    `json:"region"`
	State        string    `json:"state"`
	Category     string    `json:"category"`
	SubCategory  string    `json:"sub_category"`
	ProductName  string    `json:"product_name"`
	Segment      string    `json:"segment"`
	Sales        float64   `json:"sales"`
	Quantity     int       `json:"quantity"`
	Discount     float64   `json:"discount"`
	Profit       float64   `json:"profit"`

	ProfitMargin  float64       `json:"profit_margin"`
	ProfitPerUnit float64       `json:"profit_per_unit"`
	Discounted    bool          `json:"discounted"`
	OrderMonth    time.Month    `json:"order_month"`
	OrderDay      int           `json:"order_day"`
	OrderYear     int           `json:"order_year"`
	StateCode     string        `json:"state_code"`
	DiscountLevel DiscountLevel `json:"discount_level"`
	ShipDays      int           `json:"ship_days"`

	quantityNull bool
}

// DiscountLevel is the categorical bucket of a discount fraction
type DiscountLevel int

// Discount levels in display order
const (
	DiscountNone DiscountLevel = iota
	DiscountLow
	DiscountMedium
	DiscountHigh
	DiscountUnknown
)

// DiscountLevels returns the known levels in display order
func DiscountLevels() []DiscountLevel {
	return []DiscountLevel{DiscountNone, DiscountLow, DiscountMedium, DiscountHigh}
}

// BucketDiscount maps a discount fraction to its level.
// (-inf,0] is none, (0,0.2] low, (0.2,0.5] medium, above 0.5 high.
func BucketDiscount(discount float64) DiscountLevel {
	switch {
	case math.IsNaN(discount):
		return DiscountUnknown
	case discount <= 0:
		return DiscountNone
	case discount <= 0.2:
		return DiscountLow
	case discount <= 0.5:
		return DiscountMedium
	default:
		return DiscountHigh
	}
}

func (l DiscountLevel) String() string {
	switch l {
	case DiscountNone:
		return "none"
	case DiscountLow:
		return "low"
	case DiscountMedium:
		return "medium"
	case DiscountHigh:
		return "high"
	default:
		return ""
	}
}

// ParseDiscountLevel is the inverse of DiscountLevel.String
func ParseDiscountLevel(s string) (DiscountLevel, bool) {
	for _, l := range DiscountLevels() {
		if l.String() == s {
			return l, true
		}
	}

	return DiscountUnknown, false
}

// MarshalText encodes the level by name
func (l DiscountLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText decodes a level name; unknown names decode to DiscountUnknown
func (l *DiscountLevel) UnmarshalText(b []byte) error {
	level, _ := ParseDiscountLevel(string(b))
	*l = level

	return nil
}

// MonthFromName parses a full English month name
func MonthFromName(name string) (time.Month, bool) {
	for m := time.January; m <= time.December; m++ {
		if m.String() == name {
			return m, true
		}
	}

	return 0, false
}

// Months returns January through December in calendar order
func Months() []time.Month {
	months := make([]time.Month, 0, 12)
	for m := time.January; m <= time.December; m++ {
		months = append(months, m)
	}

	return months
}
