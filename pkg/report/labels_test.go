package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesdash/salesdash/pkg/dataset"
)

func TestLabels_CatalogsMatch(t *testing.T) {
	labels, err := NewLabels()
	require.NoError(t, err)

	en := labels.Keys(LocaleEN)
	require.NotEmpty(t, en)
	assert.Equal(t, en, labels.Keys(LocaleID))

	for _, id := range Sections() {
		assert.Contains(t, en, "section."+string(id))
		assert.Contains(t, en, "nav."+string(id))
	}

	for _, m := range dataset.Metrics() {
		assert.Contains(t, en, "metric."+string(m))
	}
}

func TestLabels_Text(t *testing.T) {
	labels, err := NewLabels()
	require.NoError(t, err)

	tests := []struct {
		name     string
		locale   Locale
		key      string
		data     map[string]interface{}
		expected string
	}{
		{name: "plain", locale: LocaleEN, key: "kpi.total_sales", expected: "Total Sales"},
		{name: "indonesian", locale: LocaleID, key: "kpi.total_sales", expected: "Total Penjualan"},
		{name: "templated", locale: LocaleEN, key: "chart.customers.top-customers", data: map[string]interface{}{"N": 10}, expected: "Top 10 Most Profitable Customers"},
		{name: "no comparison", locale: LocaleEN, key: "comparison", expected: "No comparison period"},
		{name: "plural states", locale: LocaleEN, key: "geo.unmapped", data: map[string]interface{}{"States": []string{"Atlantis", "Lemuria"}}, expected: "2 states without a postal code: Atlantis, Lemuria"},
		{name: "unknown locale falls back", locale: Locale("fr"), key: "nav.geo", expected: "Geographic Profit Map"},
		{name: "unknown key", locale: LocaleID, key: "missing.key", expected: "missing.key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, labels.Text(tt.locale, tt.key, tt.data))
		})
	}
}

func TestLabels_Helpers(t *testing.T) {
	labels, err := NewLabels()
	require.NoError(t, err)

	assert.Equal(t, "Margin Keuntungan", labels.Metric(LocaleID, dataset.MetricProfitMargin))
	assert.Equal(t, "High Discount", labels.DiscountLevel(LocaleEN, "high"))
	assert.Equal(t, "Tidak Diketahui", labels.DiscountLevel(LocaleID, dataset.UnknownValue))
	assert.Equal(t, "Ya", labels.Discounted(LocaleID, dataset.DiscountedYes))
	assert.Equal(t, "Time Series Analysis", labels.Section(LocaleEN, SectionTimeSeries))
}

func TestParseLocale(t *testing.T) {
	l, err := ParseLocale("")
	require.NoError(t, err)
	assert.Equal(t, LocaleEN, l)

	l, err = ParseLocale("ID")
	require.NoError(t, err)
	assert.Equal(t, LocaleID, l)

	_, err = ParseLocale("fr")
	assert.ErrorIs(t, err, ErrUnknownLocale)
}
