package frontend

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler(t *testing.T) {
	h, err := NewHandler(&Config{Enabled: true, Title: "Test Dashboard", Locale: "id"})
	require.NoError(t, err)

	tests := []struct {
		name        string
		path        string
		contains    string
		contentType string
	}{
		{"index", "/", "<title>Test Dashboard</title>", "text/html; charset=utf-8"},
		{"spa route", "/sections/geo", `data-section="geo"`, "text/html; charset=utf-8"},
		{"locale", "/", `lang="id"`, "text/html; charset=utf-8"},
		{"section nav label", "/", "Time Series", "text/html; charset=utf-8"},
		{"asset", "/app.js", "use strict", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			resp := rec.Result()
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Contains(t, string(body), tt.contains)

			if tt.contentType != "" {
				assert.Equal(t, tt.contentType, resp.Header.Get("Content-Type"))
			}
		})
	}
}

func TestNewHandler_InvalidLocale(t *testing.T) {
	_, err := NewHandler(&Config{Enabled: true, Title: "x", Locale: "fr"})
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, (&Config{Enabled: false}).Validate())
	assert.ErrorIs(t, (&Config{Enabled: true}).Validate(), ErrFrontendTitleRequired)
}
