package dataset

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketDiscount(t *testing.T) {
	tests := []struct {
		discount float64
		expected DiscountLevel
	}{
		{-0.1, DiscountNone},
		{0, DiscountNone},
		{0.15, DiscountLow},
		{0.2, DiscountLow},
		{0.35, DiscountMedium},
		{0.5, DiscountMedium},
		{0.7, DiscountHigh},
		{1.0, DiscountHigh},
		{1.5, DiscountHigh},
		{math.NaN(), DiscountUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, BucketDiscount(tt.discount), "discount %v", tt.discount)
	}
}

func TestDiscountLevel_Text(t *testing.T) {
	for _, level := range DiscountLevels() {
		b, err := level.MarshalText()
		require.NoError(t, err)

		var decoded DiscountLevel
		require.NoError(t, decoded.UnmarshalText(b))
		assert.Equal(t, level, decoded)
	}

	var unknown DiscountLevel
	require.NoError(t, unknown.UnmarshalText([]byte("huge")))
	assert.Equal(t, DiscountUnknown, unknown)
}

func TestDimension_Compare(t *testing.T) {
	tests := []struct {
		name     string
		dim      Dimension
		input    []string
		expected []string
	}{
		{
			name:     "months use calendar order",
			dim:      DimOrderMonth,
			input:    []string{"December", "April", "January", "August"},
			expected: []string{"January", "April", "August", "December"},
		},
		{
			name:     "years sort numerically",
			dim:      DimOrderYear,
			input:    []string{"2017", "999", "2015"},
			expected: []string{"999", "2015", "2017"},
		},
		{
			name:     "discount levels use bucket order",
			dim:      DimDiscountLevel,
			input:    []string{"high", "none", "medium", "low"},
			expected: []string{"none", "low", "medium", "high"},
		},
		{
			name:     "unknown sorts last",
			dim:      DimRegion,
			input:    []string{UnknownValue, "West", "East"},
			expected: []string{"East", "West", UnknownValue},
		},
		{
			name:     "unknown sorts last for enums too",
			dim:      DimOrderMonth,
			input:    []string{"March", UnknownValue, "February"},
			expected: []string{"February", "March", UnknownValue},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := slices.Clone(tt.input)
			slices.SortFunc(got, tt.dim.Compare)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDimension_ValueNullIsUnknown(t *testing.T) {
	tx := &Transaction{DiscountLevel: DiscountUnknown}

	assert.Equal(t, UnknownValue, DimStateCode.Value(tx))
	assert.Equal(t, UnknownValue, DimOrderMonth.Value(tx))
	assert.Equal(t, UnknownValue, DimOrderYear.Value(tx))
	assert.Equal(t, UnknownValue, DimDiscountLevel.Value(tx))
	assert.Equal(t, DiscountedNo, DimDiscounted.Value(tx))
}

func TestParseMetric(t *testing.T) {
	tests := []struct {
		input    string
		expected Metric
		wantErr  bool
	}{
		{"sales", MetricSales, false},
		{"Profit", MetricProfit, false},
		{"profit-margin", MetricProfitMargin, false},
		{"profit_per_unit", MetricProfitPerUnit, false},
		{"revenue", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			m, err := ParseMetric(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownMetric)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, m)
			assert.NotEmpty(t, m.Column())
		})
	}
}

func TestMetric_NullValues(t *testing.T) {
	tx := &Transaction{Sales: math.NaN(), Profit: 4, Quantity: 2, quantityNull: true}

	_, ok := MetricSales.Value(tx)
	assert.False(t, ok)

	_, ok = MetricQuantity.Value(tx)
	assert.False(t, ok)

	v, ok := MetricProfit.Value(tx)
	assert.True(t, ok)
	assert.InDelta(t, 4.0, v, 1e-9)
}

func TestMonths(t *testing.T) {
	months := Months()
	require.Len(t, months, 12)

	for i := 1; i < len(months); i++ {
		assert.Less(t, months[i-1], months[i])
	}

	m, ok := MonthFromName("September")
	assert.True(t, ok)
	assert.Equal(t, months[8], m)

	_, ok = MonthFromName("Sept")
	assert.False(t, ok)
}
