package tasks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesdash/salesdash/internal/testutil"
	"github.com/salesdash/salesdash/pkg/dataset"
	"github.com/salesdash/salesdash/pkg/report"
)

func TestWarmPayload_UniqueID(t *testing.T) {
	tests := []struct {
		name     string
		payload  WarmPayload
		expected string
	}{
		{
			name:     "default years",
			payload:  WarmPayload{Section: "overview", Locale: "en"},
			expected: "warm:overview:en::all",
		},
		{
			name:     "single year with metric",
			payload:  WarmPayload{Section: "time-series", Locale: "id", Metric: "profit", Years: []int{2016}},
			expected: "warm:time-series:id:profit:2016",
		},
		{
			name:     "trigger does not affect identity",
			payload:  WarmPayload{Section: "geo", Locale: "en", Years: []int{2015, 2016}, Trigger: TriggerManual},
			expected: "warm:geo:en::2015-2016",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.payload.UniqueID())
		})
	}
}

func TestWarmPayload_Request(t *testing.T) {
	table := testutil.Superstore(t)

	req, err := WarmPayload{Section: "time-series", Locale: "id", Metric: "profit_margin", Years: []int{2016}}.Request(table)
	require.NoError(t, err)
	assert.Equal(t, report.SectionTimeSeries, req.Section)
	assert.Equal(t, report.LocaleID, req.Locale)
	assert.Equal(t, dataset.MetricProfitMargin, req.Metric)
	assert.Equal(t, []int{2016}, req.Selection.Years)
	assert.Equal(t, table.Regions(), req.Selection.Regions)

	req, err = WarmPayload{Section: "overview"}.Request(table)
	require.NoError(t, err)
	assert.Equal(t, report.LocaleEN, req.Locale)
	assert.Equal(t, table.Years(), req.Selection.Years)

	_, err = WarmPayload{Section: "finance"}.Request(table)
	assert.ErrorIs(t, err, report.ErrUnknownSection)

	_, err = WarmPayload{Section: "overview", Locale: "fr"}.Request(table)
	assert.ErrorIs(t, err, report.ErrUnknownLocale)
}
