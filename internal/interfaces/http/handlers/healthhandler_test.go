package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/paypoint/internal/interfaces/http/handlers/testutil"
)

type healthBody struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Variant string            `json:"variant"`
	Checks  map[string]string `json:"checks"`
}

func TestHealthHandler_HealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		dbErr      error
		redisErr   error
		wantStatus int
		wantState  string
		wantChecks map[string]string
	}{
		{
			name:       "all healthy",
			wantStatus: http.StatusOK,
			wantState:  "healthy",
			wantChecks: map[string]string{"database": "ok", "redis": "ok"},
		},
		{
			name:       "database down",
			dbErr:      errors.New("connection refused"),
			wantStatus: http.StatusServiceUnavailable,
			wantState:  "unhealthy",
			wantChecks: map[string]string{"database": "connection refused", "redis": "ok"},
		},
		{
			name:       "redis down",
			redisErr:   errors.New("i/o timeout"),
			wantStatus: http.StatusServiceUnavailable,
			wantState:  "unhealthy",
			wantChecks: map[string]string{"database": "ok", "redis": "i/o timeout"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler("rest")
			h.AddCheck("database", func(ctx context.Context) error { return tt.dbErr })
			h.AddCheck("redis", func(ctx context.Context) error { return tt.redisErr })

			c, w := testutil.NewTestContext(http.MethodGet, "/health", nil)
			h.HealthCheck(c)

			assert.Equal(t, tt.wantStatus, w.Code)

			var body healthBody
			require.NoError(t, testutil.ParseResponse(w, &body))
			assert.Equal(t, tt.wantState, body.Status)
			assert.Equal(t, "paypoint", body.Service)
			assert.Equal(t, "rest", body.Variant)
			assert.Equal(t, tt.wantChecks, body.Checks)
		})
	}
}

func TestHealthHandler_NoChecks(t *testing.T) {
	h := NewHealthHandler("legacy")

	c, w := testutil.NewTestContext(http.MethodGet, "/health", nil)
	h.HealthCheck(c)

	assert.Equal(t, http.StatusOK, w.Code)
}
