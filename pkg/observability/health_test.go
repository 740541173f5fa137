package observability

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(context.Context) error { return nil }

func failing(context.Context) error { return errors.New("connection refused") }

func TestHealthRegistry_Check(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]HealthChecker
		want   HealthStatus
	}{
		{"no checks", nil, HealthStatusHealthy},
		{"all healthy", map[string]HealthChecker{
			"store":  PingChecker("store", true, ok),
			"broker": PingChecker("broker", false, ok),
		}, HealthStatusHealthy},
		{"optional component down", map[string]HealthChecker{
			"store":  PingChecker("store", true, ok),
			"broker": PingChecker("broker", false, failing),
		}, HealthStatusDegraded},
		{"critical component down", map[string]HealthChecker{
			"store":  PingChecker("store", true, failing),
			"broker": PingChecker("broker", false, failing),
		}, HealthStatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewHealthRegistry()
			for name, checker := range tt.checks {
				registry.Register(name, checker)
			}

			report := registry.Check(context.Background())

			assert.Equal(t, tt.want, report.Status)
			assert.Len(t, report.Checks, len(tt.checks))
		})
	}
}

func TestHealthRegistry_Names(t *testing.T) {
	registry := NewHealthRegistry()
	registry.Register("store", PingChecker("store", true, ok))
	registry.Register("outbox", PingChecker("outbox", false, ok))
	assert.Equal(t, []string{"outbox", "store"}, registry.Names())
}

func TestHealthHandler(t *testing.T) {
	registry := NewHealthRegistry()
	registry.Register("store", PingChecker("store", true, ok))

	rec := httptest.NewRecorder()
	HealthHandler(registry).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var report OverallHealth
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, HealthStatusHealthy, report.Status)
	assert.Equal(t, "store healthy", report.Checks["store"].Message)

	registry.Register("store", PingChecker("store", true, failing))
	rec = httptest.NewRecorder()
	HealthHandler(registry).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
