package engine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/creasty/defaults"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesdash/salesdash/internal/testutil"
	"github.com/salesdash/salesdash/pkg/dataset"
	"github.com/salesdash/salesdash/pkg/scheduler"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	return log
}

// testConfig returns a defaulted config reading a fixture file, with every
// listener disabled
func testConfig(t *testing.T) *Config {
	t.Helper()

	path := filepath.Join(t.TempDir(), "superstore.csv")
	require.NoError(t, os.WriteFile(path, testutil.CSV(testutil.SuperstoreRows()...), 0o600))

	cfg := &Config{}
	require.NoError(t, defaults.Set(cfg))

	cfg.Dataset.Source = path
	cfg.Dataset.Encoding = "UTF-8"
	cfg.MetricsAddr = ""
	cfg.API.Enabled = false

	return cfg
}

func TestConfig_Validate(t *testing.T) {
	t.Run("defaults without redis", func(t *testing.T) {
		cfg := testConfig(t)
		require.NoError(t, cfg.Validate())
		assert.False(t, cfg.Redis.Enabled())
		assert.Equal(t, []string{"en", "id"}, cfg.Report.Locales)
	})

	t.Run("scheduler checked only with redis", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Scheduler.Mode = "remote"
		require.NoError(t, cfg.Validate())

		cfg.Redis.URL = "redis://localhost:6379/0"
		assert.ErrorIs(t, cfg.Validate(), scheduler.ErrInvalidMode)
	})

	t.Run("bad redis url", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Redis.URL = "http://localhost"
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing source", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Dataset.Source = ""
		assert.ErrorIs(t, cfg.Validate(), dataset.ErrSourceRequired)
	})
}

func TestNewReportService(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, cfg.Validate())

	source, err := dataset.NewSource(&cfg.Dataset)
	require.NoError(t, err)

	loader := dataset.NewLoader(testutil.Logger(), &cfg.Dataset, source)

	reports, err := NewReportService(context.Background(), testutil.Logger(), cfg, loader, nil)
	require.NoError(t, err)
	assert.Equal(t, len(testutil.SuperstoreRows()), reports.Table().Len())
}

func TestService_StartStop(t *testing.T) {
	svc, err := NewService(quietLogger(), testConfig(t))
	require.NoError(t, err)

	assert.False(t, svc.Ready())

	require.NoError(t, svc.Start(context.Background()))
	assert.True(t, svc.Ready())
	assert.Nil(t, svc.scheduler, "no scheduler without redis")
	assert.Nil(t, svc.worker, "no worker without redis")

	require.NoError(t, svc.Stop())
	assert.False(t, svc.Ready())
}

func TestService_StartFailsOnDataLoad(t *testing.T) {
	cfg := testConfig(t)
	cfg.Dataset.Source = filepath.Join(t.TempDir(), "missing.csv")

	svc, err := NewService(quietLogger(), cfg)
	require.NoError(t, err)

	err = svc.Start(context.Background())
	require.ErrorIs(t, err, dataset.ErrDataLoad)
	assert.False(t, svc.Ready())
}

func TestService_HealthHandler(t *testing.T) {
	svc, err := NewService(quietLogger(), testConfig(t))
	require.NoError(t, err)

	h := svc.healthHandler()

	get := func(path string) int {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

		return rec.Code
	}

	assert.Equal(t, http.StatusOK, get("/health"))
	assert.Equal(t, http.StatusServiceUnavailable, get("/ready"))

	svc.ready.Store(true)
	assert.Equal(t, http.StatusOK, get("/ready"))
}
