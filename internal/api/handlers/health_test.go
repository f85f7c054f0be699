package handlers_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/unifiedui/typed-docdb/internal/api/dto"
	"github.com/unifiedui/typed-docdb/internal/api/handlers"
	"github.com/unifiedui/typed-docdb/internal/testutil"
)

func setupHealth(cacheErr, docDBErr error) (*handlers.HealthHandler, *testutil.MockPinger, *testutil.MockPinger) {
	cache := &testutil.MockPinger{}
	cache.On("Ping", mock.Anything).Return(cacheErr)
	docDB := &testutil.MockPinger{}
	docDB.On("Ping", mock.Anything).Return(docDBErr)
	return handlers.NewHealthHandler(cache, docDB), cache, docDB
}

func TestHealth_AllHealthy(t *testing.T) {
	h, cache, docDB := setupHealth(nil, nil)
	router := testutil.SetupTestRouter()
	router.GET("/health", h.Health)

	w := testutil.PerformRequest(router, http.MethodGet, "/health", nil)

	testutil.AssertStatusCode(t, http.StatusOK, w)
	var resp dto.HealthResponse
	testutil.ParseJSONResponse(t, w, &resp)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, map[string]string{"cache": "healthy", "docdb": "healthy"}, resp.Components)
	cache.AssertExpectations(t)
	docDB.AssertExpectations(t)
}

func TestHealth_ComponentDown(t *testing.T) {
	h, _, _ := setupHealth(errors.New("redis down"), nil)
	router := testutil.SetupTestRouter()
	router.GET("/health", h.Health)

	w := testutil.PerformRequest(router, http.MethodGet, "/health", nil)

	testutil.AssertStatusCode(t, http.StatusServiceUnavailable, w)
	var resp dto.HealthResponse
	testutil.ParseJSONResponse(t, w, &resp)
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Equal(t, "unhealthy", resp.Components["cache"])
	assert.Equal(t, "healthy", resp.Components["docdb"])
}

func TestReady(t *testing.T) {
	tests := []struct {
		name     string
		cacheErr error
		docDBErr error
		want     int
	}{
		{"all up", nil, nil, http.StatusOK},
		{"cache down still ready", errors.New("down"), nil, http.StatusOK},
		{"docdb down", nil, errors.New("down"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, _ := setupHealth(tt.cacheErr, tt.docDBErr)
			router := testutil.SetupTestRouter()
			router.GET("/ready", h.Ready)

			w := testutil.PerformRequest(router, http.MethodGet, "/ready", nil)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestLive(t *testing.T) {
	h, _, _ := setupHealth(nil, nil)
	router := testutil.SetupTestRouter()
	router.GET("/live", h.Live)

	w := testutil.PerformRequest(router, http.MethodGet, "/live", nil)

	testutil.AssertStatusCode(t, http.StatusOK, w)
	assert.JSONEq(t, `{"status":"alive"}`, w.Body.String())
}
