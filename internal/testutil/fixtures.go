package testutil

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/salesdash/salesdash/pkg/dataset"
)

// Header is the column order used by fixture files
//
//nolint:gochecknoglobals // Read-only fixture schema
var Header = []string{
	"Order ID", "Order Date", "Ship Date", "Customer Name", "Region", "State",
	"Category", "Sub-Category", "Product Name", "Segment",
	"Sales", "Quantity", "Discount", "Profit",
}

// Row describes one fixture transaction. Zero values get sensible defaults.
type Row struct {
	OrderID     string
	OrderDate   string
	ShipDate    string
	Customer    string
	Region      string
	State       string
	Category    string
	SubCategory string
	Product     string
	Segment     string
	Sales       string
	Quantity    string
	Discount    string
	Profit      string
}

func (r Row) record(i int) []string {
	def := func(v, fallback string) string {
		if v == "" {
			return fallback
		}

		return v
	}

	return []string{
		def(r.OrderID, fmt.Sprintf("ORD-%04d", i)),
		def(r.OrderDate, "1/15/2017"),
		def(r.ShipDate, "1/19/2017"),
		def(r.Customer, "Claire Gute"),
		def(r.Region, "West"),
		def(r.State, "California"),
		def(r.Category, "Technology"),
		def(r.SubCategory, "Phones"),
		def(r.Product, "Apple iPhone"),
		def(r.Segment, "Consumer"),
		def(r.Sales, "100"),
		def(r.Quantity, "1"),
		def(r.Discount, "0"),
		def(r.Profit, "10"),
	}
}

// CSV renders rows as a UTF-8 Superstore file with a header
func CSV(rows ...Row) []byte {
	var buf bytes.Buffer

	w := csv.NewWriter(&buf)
	_ = w.Write(Header)

	for i, r := range rows {
		_ = w.Write(r.record(i))
	}

	w.Flush()

	return buf.Bytes()
}

// Logger returns a quiet logger for tests
func Logger() logrus.FieldLogger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	return log
}

// Config returns a dataset configuration for UTF-8 fixtures
func Config() *dataset.Config {
	cfg := &dataset.Config{Source: "fixture.csv", Encoding: "UTF-8"}
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	return cfg
}

// LoadTable parses fixture rows into an enriched table
func LoadTable(t *testing.T, rows ...Row) *dataset.Table {
	t.Helper()

	table, err := dataset.Parse(context.Background(), Logger(), Config(), bytes.NewReader(CSV(rows...)))
	require.NoError(t, err)

	return table
}

// EndToEnd returns the three-row example table:
// (West,2017,Tech,100,10), (East,2017,Tech,200,-20), (West,2016,Tech,50,5)
func EndToEnd(t *testing.T) *dataset.Table {
	t.Helper()

	return LoadTable(t,
		Row{OrderID: "A-1", Region: "West", OrderDate: "3/1/2017", ShipDate: "3/4/2017", Sales: "100", Profit: "10"},
		Row{OrderID: "A-2", Region: "East", State: "New York", OrderDate: "5/2/2017", ShipDate: "5/6/2017", Sales: "200", Profit: "-20"},
		Row{OrderID: "A-3", Region: "West", OrderDate: "7/9/2016", ShipDate: "7/12/2016", Sales: "50", Profit: "5"},
	)
}

// Superstore returns a small multi-year table covering every dimension
func Superstore(t *testing.T) *dataset.Table {
	t.Helper()

	return LoadTable(t, SuperstoreRows()...)
}

// SuperstoreRows returns the rows behind Superstore
func SuperstoreRows() []Row {
	return []Row{
		{OrderID: "CA-2015-1", OrderDate: "1/3/2015", ShipDate: "1/7/2015", Customer: "Claire Gute", Region: "South", State: "Kentucky", Category: "Furniture", SubCategory: "Bookcases", Product: "Bush Somerset Bookcase", Segment: "Consumer", Sales: "261.96", Quantity: "2", Discount: "0", Profit: "41.9136"},
		{OrderID: "CA-2015-1", OrderDate: "1/3/2015", ShipDate: "1/7/2015", Customer: "Claire Gute", Region: "South", State: "Kentucky", Category: "Furniture", SubCategory: "Chairs", Product: "Hon Deluxe Chair", Segment: "Consumer", Sales: "731.94", Quantity: "3", Discount: "0", Profit: "219.582"},
		{OrderID: "CA-2015-2", OrderDate: "6/12/2015", ShipDate: "6/16/2015", Customer: "Darrin Van Huff", Region: "West", State: "California", Category: "Office Supplies", SubCategory: "Labels", Product: "Self-Adhesive Labels", Segment: "Corporate", Sales: "14.62", Quantity: "2", Discount: "0", Profit: "6.8714"},
		{OrderID: "US-2016-3", OrderDate: "10/11/2016", ShipDate: "10/18/2016", Customer: "Sean O'Donnell", Region: "South", State: "Florida", Category: "Furniture", SubCategory: "Tables", Product: "Bretford Table", Segment: "Consumer", Sales: "957.5775", Quantity: "5", Discount: "0.45", Profit: "-383.031"},
		{OrderID: "US-2016-3", OrderDate: "10/11/2016", ShipDate: "10/18/2016", Customer: "Sean O'Donnell", Region: "South", State: "Florida", Category: "Office Supplies", SubCategory: "Storage", Product: "Eldon Fold Cart", Segment: "Consumer", Sales: "22.368", Quantity: "2", Discount: "0.2", Profit: "2.5164"},
		{OrderID: "CA-2016-4", OrderDate: "6/9/2016", ShipDate: "6/14/2016", Customer: "Brosina Hoffman", Region: "West", State: "California", Category: "Technology", SubCategory: "Phones", Product: "Mitel Phone", Segment: "Consumer", Sales: "907.152", Quantity: "6", Discount: "0.2", Profit: "90.7152"},
		{OrderID: "CA-2017-5", OrderDate: "4/15/2017", ShipDate: "4/20/2017", Customer: "Andrew Allen", Region: "East", State: "New York", Category: "Technology", SubCategory: "Machines", Product: "Okidata Printer", Segment: "Home Office", Sales: "1200", Quantity: "4", Discount: "0.7", Profit: "-800"},
		{OrderID: "CA-2017-6", OrderDate: "11/22/2017", ShipDate: "11/26/2017", Customer: "Irene Maddox", Region: "Central", State: "Texas", Category: "Office Supplies", SubCategory: "Binders", Product: "GBC Binder", Segment: "Corporate", Sales: "22.72", Quantity: "4", Discount: "0.8", Profit: "-18.176"},
		{OrderID: "CA-2017-7", OrderDate: "12/5/2017", ShipDate: "12/9/2017", Customer: "Claire Gute", Region: "West", State: "Washington", Category: "Technology", SubCategory: "Phones", Product: "Apple iPhone", Segment: "Consumer", Sales: "500", Quantity: "2", Discount: "0", Profit: "150"},
		{OrderID: "CA-2017-8", OrderDate: "12/5/2017", ShipDate: "12/9/2017", Customer: "Pete Kriz", Region: "Central", State: "Atlantis", Category: "Furniture", SubCategory: "Chairs", Product: "Hon Deluxe Chair", Segment: "Home Office", Sales: "300", Quantity: "1", Discount: "0.1", Profit: "30"},
	}
}
