package dataset

import (
	"cmp"
	"strconv"
)

// UnknownValue is the group key for rows whose dimension value is null
const UnknownValue = "(unknown)"

// Dimension is a categorical field that rows can be grouped and filtered by
type Dimension string

// Supported dimensions
const (
	DimRegion        Dimension = "region"
	DimState         Dimension = "state"
	DimStateCode     Dimension = "state_code"
	DimCategory      Dimension = "category"
	DimSubCategory   Dimension = "sub_category"
	DimProduct       Dimension = "product"
	DimCustomer      Dimension = "customer"
	DimSegment       Dimension = "segment"
	DimOrderMonth    Dimension = "order_month"
	DimOrderYear     Dimension = "order_year"
	DimDiscountLevel Dimension = "discount_level"
	DimDiscounted    Dimension = "discounted"
)

// Discounted flag values
const (
	DiscountedYes = "yes"
	DiscountedNo  = "no"
)

// Valid reports whether the dimension is known
func (d Dimension) Valid() bool {
	switch d {
	case DimRegion, DimState, DimStateCode, DimCategory, DimSubCategory, DimProduct,
		DimCustomer, DimSegment, DimOrderMonth, DimOrderYear, DimDiscountLevel, DimDiscounted:
		return true
	}

	return false
}

// Value extracts the group key of a row. Null values map to UnknownValue.
func (d Dimension) Value(t *Transaction) string {
	var v string

	switch d {
	case DimRegion:
		v = t.Region
	case DimState:
		v = t.State
	case DimStateCode:
		v = t.StateCode
	case DimCategory:
		v = t.Category
	case DimSubCategory:
		v = t.SubCategory
	case DimProduct:
		v = t.ProductName
	case DimCustomer:
		v = t.CustomerName
	case DimSegment:
		v = t.Segment
	case DimOrderMonth:
		if t.OrderMonth != 0 {
			v = t.OrderMonth.String()
		}
	case DimOrderYear:
		if t.OrderYear != 0 {
			v = strconv.Itoa(t.OrderYear)
		}
	case DimDiscountLevel:
		v = t.DiscountLevel.String()
	case DimDiscounted:
		v = DiscountedNo
		if t.Discounted {
			v = DiscountedYes
		}
	}

	if v == "" {
		return UnknownValue
	}

	return v
}

// Compare orders two group keys of this dimension.
// Months and discount levels use enumeration order, years sort numerically
// and everything else sorts lexically. UnknownValue always sorts last.
func (d Dimension) Compare(a, b string) int {
	if a == b {
		return 0
	}

	if a == UnknownValue {
		return 1
	}

	if b == UnknownValue {
		return -1
	}

	switch d {
	case DimOrderMonth:
		ma, okA := MonthFromName(a)
		mb, okB := MonthFromName(b)

		if okA && okB {
			return cmp.Compare(ma, mb)
		}
	case DimOrderYear:
		ya, errA := strconv.Atoi(a)
		yb, errB := strconv.Atoi(b)

		if errA == nil && errB == nil {
			return cmp.Compare(ya, yb)
		}
	case DimDiscountLevel:
		la, okA := ParseDiscountLevel(a)
		lb, okB := ParseDiscountLevel(b)

		if okA && okB {
			return cmp.Compare(la, lb)
		}
	}

	return cmp.Compare(a, b)
}
