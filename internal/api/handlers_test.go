package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/inventory-service/internal/domain"
	"github.com/user/inventory-service/internal/jsonvalue"
	"github.com/user/inventory-service/internal/monitoring"
	"go.uber.org/zap/zaptest"
)

type fakeInventory struct {
	result *domain.InventoryResult
	err    error
}

func (f *fakeInventory) Inventory(context.Context) (*domain.InventoryResult, error) {
	return f.result, f.err
}

func (f *fakeInventory) Source() string { return "test:menu" }

type fakeRunLog struct {
	status *domain.RunStatusResponse
	err    error
	health map[string]string
	source string
}

func (f *fakeRunLog) Status(_ context.Context, source string) (*domain.RunStatusResponse, error) {
	f.source = source
	return f.status, f.err
}

func (f *fakeRunLog) Health(context.Context) map[string]string {
	out := make(map[string]string)
	for k, v := range f.health {
		out[k] = v
	}
	return out
}

func newTestServer(t *testing.T, inv InventoryService, rl RunLog) http.Handler {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := monitoring.NewMetrics(reg)
	s := NewServer("0", inv, rl, m, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), zaptest.NewLogger(t))
	return s.Handler()
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestHandleInventory(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		inv := &fakeInventory{result: &domain.InventoryResult{
			Source:      "test:menu",
			LastUpdated: "2026-10-19T12:30:00.000Z",
			Count:       1,
			Inventory: []domain.Product{{
				Name:       jsonvalue.NewString("Blue Dream"),
				Brand:      jsonvalue.NewString("Acme"),
				StrainType: jsonvalue.NewString("Sativa"),
				Size:       jsonvalue.NewString("3.5g"),
			}},
		}}
		rr := get(t, newTestServer(t, inv, &fakeRunLog{}), "/api/inventory")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		assert.Contains(t, rr.Header().Get("Cache-Control"), "no-store")
		assert.JSONEq(t, `{
			"source":"test:menu","lastUpdated":"2026-10-19T12:30:00.000Z","count":1,
			"inventory":[{"name":"Blue Dream","brand":"Acme","strainType":"Sativa","size":"3.5g",
				"tac":null,"thc":null,"cbd":null,"slug":null}]
		}`, rr.Body.String())
	})

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{
			name:     "missing embedded data",
			err:      domain.ErrUpstreamShape,
			wantCode: http.StatusBadGateway,
			wantBody: `{"error":"Could not locate embedded data on Dutchie page."}`,
		},
		{
			name:     "no products",
			err:      fmt.Errorf("%w: 3 records without a name", domain.ErrNoProductsFound),
			wantCode: http.StatusBadGateway,
			wantBody: `{"error":"No products found in embedded data.","hint":"Page structure may have changed."}`,
		},
		{
			name:     "upstream status",
			err:      fmt.Errorf("%w: upstream status 403", domain.ErrUpstreamFetch),
			wantCode: http.StatusInternalServerError,
			wantBody: `{"error":"Fetch failed","details":"upstream fetch failed: upstream status 403"}`,
		},
		{
			name:     "unexpected error",
			err:      errors.New("boom"),
			wantCode: http.StatusInternalServerError,
			wantBody: `{"error":"Fetch failed","details":"boom"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := get(t, newTestServer(t, &fakeInventory{err: tt.err}, &fakeRunLog{}), "/api/inventory")

			assert.Equal(t, tt.wantCode, rr.Code)
			assert.JSONEq(t, tt.wantBody, rr.Body.String())
			assert.Contains(t, rr.Header().Get("Cache-Control"), "no-cache")
		})
	}
}

func TestHandleStatus(t *testing.T) {
	t.Run("returns last run and streak", func(t *testing.T) {
		rl := &fakeRunLog{status: &domain.RunStatusResponse{
			LastRun: &domain.RunRecord{
				Source:     "test:menu",
				Status:     domain.RunFetchFailed,
				FailReason: "upstream fetch failed: upstream status 503",
				DurationMS: 40,
				StartedAt:  time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
			},
			FailureStreak: 3,
		}}
		rr := get(t, newTestServer(t, &fakeInventory{}, rl), "/api/status")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "test:menu", rl.source)
		body := decode(t, rr)
		assert.EqualValues(t, 3, body["failure_streak"])
		assert.Equal(t, "fetch_failed", body["last_run"].(map[string]any)["status"])
	})

	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"disabled", domain.ErrRunLogDisabled, http.StatusNotFound},
		{"no runs", domain.ErrRunNotFound, http.StatusNotFound},
		{"store failure", errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := get(t, newTestServer(t, &fakeInventory{}, &fakeRunLog{err: tt.err}), "/api/status")
			assert.Equal(t, tt.wantCode, rr.Code)
			assert.NotEmpty(t, decode(t, rr)["error"])
		})
	}
}

func TestHandleHealthCheck(t *testing.T) {
	t.Run("no stores configured", func(t *testing.T) {
		rr := get(t, newTestServer(t, &fakeInventory{}, &fakeRunLog{}), "/api/health")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	})

	t.Run("unhealthy store", func(t *testing.T) {
		rl := &fakeRunLog{health: map[string]string{"postgres": "healthy", "redis": "unhealthy"}}
		rr := get(t, newTestServer(t, &fakeInventory{}, rl), "/api/health")
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.JSONEq(t, `{"status":"degraded","postgres":"healthy","redis":"unhealthy"}`, rr.Body.String())
	})
}

func TestRouter(t *testing.T) {
	h := newTestServer(t, &fakeInventory{err: domain.ErrUpstreamShape}, &fakeRunLog{})

	t.Run("serves the display page", func(t *testing.T) {
		rr := get(t, h, "/")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "/api/inventory")
	})

	t.Run("exposes http metrics by route pattern", func(t *testing.T) {
		get(t, h, "/api/inventory")
		rr := get(t, h, "/metrics")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, strings.Contains(rr.Body.String(), `http_requests_total{method="GET",path="/api/inventory",status="502"} 1`))
	})
}
