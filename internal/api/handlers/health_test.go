package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLiveness_AlwaysHealthy(t *testing.T) {
	checker := NewHealthChecker(nil, "test")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	checker.Liveness()(res, req)

	require.Equal(t, http.StatusOK, res.Code)

	var body healthResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.Equal(t, "healthy", body.Status)
	require.Equal(t, "test", body.Version)
}

func TestReadiness_FailsWithoutDatabase(t *testing.T) {
	checker := NewHealthChecker(nil, "test")

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	res := httptest.NewRecorder()
	checker.Readiness()(res, req)

	require.Equal(t, http.StatusServiceUnavailable, res.Code)

	var body healthResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.Equal(t, "unhealthy", body.Status)
	require.Equal(t, "fail", body.Checks["database"].Status)
}
