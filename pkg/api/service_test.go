package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/salesdash/salesdash/internal/testutil"
	"github.com/salesdash/salesdash/pkg/report"
)

type fakeWarmer struct {
	n   int
	err error
}

func (f *fakeWarmer) Trigger(context.Context, string) (int, error) {
	return f.n, f.err
}

func newTestApp(t *testing.T, warmer *fakeWarmer, frontend http.Handler) *fiber.App {
	t.Helper()

	labels, err := report.NewLabels()
	require.NoError(t, err)

	cfg := &report.Config{}
	require.NoError(t, cfg.Validate())

	reports := report.NewService(testutil.Logger(), cfg, testutil.Superstore(t), report.NewBuilder(labels), nil)

	var app *fiber.App
	if warmer == nil {
		app, err = NewApp(context.Background(), reports, nil, frontend, testutil.Logger())
	} else {
		app, err = NewApp(context.Background(), reports, warmer, frontend, testutil.Logger())
	}

	require.NoError(t, err)

	return app
}

func do(t *testing.T, app *fiber.App, method, target string) (*http.Response, []byte) {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(method, target, nil), fiber.TestConfig{Timeout: 10 * time.Second})
	require.NoError(t, err)

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, body
}

func decodeError(t *testing.T, body []byte) (string, int) {
	t.Helper()

	var out struct {
		Error string `json:"error"`
		Code  int    `json:"code"`
	}

	require.NoError(t, json.Unmarshal(body, &out))

	return out.Error, out.Code
}

func TestOpenAPISectionEnum(t *testing.T) {
	doc, err := LoadOpenAPI(context.Background())
	require.NoError(t, err)

	expected := make([]string, 0, len(report.Sections()))
	for _, id := range report.Sections() {
		expected = append(expected, string(id))
	}

	assert.Equal(t, expected, SectionEnum(doc))
	assert.NoError(t, checkSections(doc))
	assert.NotNil(t, doc.Paths.Find("/sections/{section}"))
}

func TestListSections(t *testing.T) {
	app := newTestApp(t, nil, nil)

	resp, body := do(t, app, http.MethodGet, "/api/v1/sections?locale=id")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	var out struct {
		Sections []report.SectionInfo `json:"sections"`
		Total    int                  `json:"total"`
	}

	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, 6, out.Total)
	assert.Equal(t, report.SectionOverview, out.Sections[0].ID)

	resp, body = do(t, app, http.MethodGet, "/api/v1/sections?locale=fr")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, code := decodeError(t, body)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestGetFilters(t *testing.T) {
	app := newTestApp(t, nil, nil)

	resp, body := do(t, app, http.MethodGet, "/api/v1/filters")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out report.Filters
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, []int{2015, 2016, 2017}, out.Years)
	assert.Equal(t, []string{"Atlantis"}, out.Unmapped)
}

func TestGetSection(t *testing.T) {
	app := newTestApp(t, nil, nil)

	t.Run("filtered overview", func(t *testing.T) {
		resp, body := do(t, app, http.MethodGet, "/api/v1/sections/overview?year=2017")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var section report.Section
		require.NoError(t, json.Unmarshal(body, &section))
		assert.Equal(t, []int{2017}, section.Selection.Years)
		require.NotNil(t, section.Comparison)
		assert.Equal(t, 2016, section.Comparison.Year)
		assert.Len(t, section.Selection.Regions, 4, "absent filters use the defaults")
	})

	t.Run("explicit empty selection", func(t *testing.T) {
		resp, body := do(t, app, http.MethodGet, "/api/v1/sections/overview?region=")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var section report.Section
		require.NoError(t, json.Unmarshal(body, &section))
		assert.Zero(t, section.Rows)
		assert.Empty(t, section.Selection.Regions)
	})

	t.Run("repeated parameters", func(t *testing.T) {
		resp, body := do(t, app, http.MethodGet, "/api/v1/sections/geo?region=West&region=East")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var section report.Section
		require.NoError(t, json.Unmarshal(body, &section))
		assert.Equal(t, []string{"East", "West"}, section.Selection.Regions)
	})

	tests := []struct {
		name   string
		target string
		status int
	}{
		{"unknown section", "/api/v1/sections/forecast", http.StatusNotFound},
		{"bad year", "/api/v1/sections/overview?year=last", http.StatusBadRequest},
		{"bad locale", "/api/v1/sections/overview?locale=fr", http.StatusBadRequest},
		{"unsupported metric", "/api/v1/sections/time-series?metric=quantity", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, app, http.MethodGet, tt.target)
			assert.Equal(t, tt.status, resp.StatusCode)

			_, code := decodeError(t, body)
			assert.Equal(t, tt.status, code)
		})
	}
}

func TestGetSectionChart(t *testing.T) {
	app := newTestApp(t, nil, nil)

	resp, body := do(t, app, http.MethodGet, "/api/v1/sections/overview/charts/region.png?width=400&height=300")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(body, []byte("\x89PNG")))

	tests := []struct {
		name   string
		target string
		status int
	}{
		{"unknown chart", "/api/v1/sections/overview/charts/forecast.png", http.StatusNotFound},
		{"missing extension", "/api/v1/sections/overview/charts/region", http.StatusNotFound},
		{"unknown section", "/api/v1/sections/forecast/charts/region.png", http.StatusNotFound},
		{"no png renderer", "/api/v1/sections/category-product/charts/treemap.png", http.StatusUnprocessableEntity},
		{"empty chart", "/api/v1/sections/overview/charts/region.png?region=", http.StatusUnprocessableEntity},
		{"too small", "/api/v1/sections/overview/charts/region.png?width=10", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, app, http.MethodGet, tt.target)
			assert.Equal(t, tt.status, resp.StatusCode)

			_, code := decodeError(t, body)
			assert.Equal(t, tt.status, code)
		})
	}
}

func TestExportWorkbook(t *testing.T) {
	app := newTestApp(t, nil, nil)

	resp, body := do(t, app, http.MethodGet, "/api/v1/export.xlsx?year=2017&locale=id")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Export-ID"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(body))
	require.NoError(t, err)

	defer f.Close()

	assert.Len(t, f.GetSheetList(), len(report.Sections()))
}

func TestCacheEndpoints(t *testing.T) {
	t.Run("warm without warmer", func(t *testing.T) {
		app := newTestApp(t, nil, nil)

		resp, _ := do(t, app, http.MethodPost, "/api/v1/cache/warm")
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})

	t.Run("warm", func(t *testing.T) {
		app := newTestApp(t, &fakeWarmer{n: 48}, nil)

		resp, body := do(t, app, http.MethodPost, "/api/v1/cache/warm")
		require.Equal(t, http.StatusAccepted, resp.StatusCode)
		assert.JSONEq(t, `{"sections":48}`, string(body))
	})

	t.Run("warm failure", func(t *testing.T) {
		app := newTestApp(t, &fakeWarmer{err: errors.New("queue unavailable")}, nil)

		resp, body := do(t, app, http.MethodPost, "/api/v1/cache/warm")
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

		msg, _ := decodeError(t, body)
		assert.Equal(t, "Internal Server Error", msg)
	})

	t.Run("invalidate", func(t *testing.T) {
		app := newTestApp(t, nil, nil)

		resp, body := do(t, app, http.MethodDelete, "/api/v1/cache")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"deleted":0}`, string(body))
	})
}

func TestOpenAPIDocument(t *testing.T) {
	app := newTestApp(t, nil, nil)

	resp, body := do(t, app, http.MethodGet, "/api/v1/openapi.json")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &doc))
	assert.Equal(t, "3.0.3", doc["openapi"])
}

func TestFrontendFallback(t *testing.T) {
	frontend := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>salesdash</html>"))
	})

	app := newTestApp(t, nil, frontend)

	resp, body := do(t, app, http.MethodGet, "/sections/overview")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "<html>salesdash</html>", string(body))
}
