package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupHealthRouter() (*gin.Engine, *HealthHandler) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewHealthHandler(map[string]string{
		"auth":   "http://auth:3002",
		"bridge": "http://bridge:3003",
		"user":   "http://user:3004",
	}, zap.NewNop())
	return router, handler
}

func getJSON(t *testing.T, router *gin.Engine, path string) (int, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return w.Code, response
}

func TestHealthEndpoints(t *testing.T) {
	router, handler := setupHealthRouter()
	router.GET("/health", handler.Health)
	router.GET("/health/ready", handler.Ready)
	router.GET("/health/live", handler.Live)

	tests := []struct {
		path   string
		status string
	}{
		{"/health", "healthy"},
		{"/health/ready", "ready"},
		{"/health/live", "alive"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			code, response := getJSON(t, router, tt.path)
			assert.Equal(t, http.StatusOK, code)
			assert.Equal(t, tt.status, response["status"])
			assert.NotEmpty(t, response["timestamp"])
		})
	}
}

func TestStatus(t *testing.T) {
	router, handler := setupHealthRouter()
	router.GET("/api/public/status", handler.Status)

	code, response := getJSON(t, router, "/api/public/status")

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "api-gateway", response["service"])
	assert.Equal(t, "healthy", response["status"])
	assert.Equal(t, Version, response["version"])
	assert.NotEmpty(t, response["uptime"])

	services, ok := response["services"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "http://auth:3002", services["auth"])
	assert.Equal(t, "http://bridge:3003", services["bridge"])
	assert.Equal(t, "http://user:3004", services["user"])
}
