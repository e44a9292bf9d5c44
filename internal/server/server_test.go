package server

import (
	"net/http"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type healthBody struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func TestNewServerWithDeps_RequiresDatabase(t *testing.T) {
	_, err := NewServerWithDeps(testConfig(), nil, nil, nil)
	assert.Error(t, err)
}

func TestLivenessCheck(t *testing.T) {
	ts := newTestServer(t, testConfig(), nil)

	var body map[string]any
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/health/live", "", nil, &body))
	assert.Equal(t, "up", body["status"])
}

func TestReadinessCheck(t *testing.T) {
	t.Run("without redis", func(t *testing.T) {
		ts := newTestServer(t, testConfig(), nil)
		var body healthBody
		require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/health/ready", "", nil, &body))
		assert.Equal(t, "healthy", body.Status)
		assert.Equal(t, "unavailable", body.Checks["redis"])
		assert.Equal(t, "healthy", body.Checks["database"])
	})

	t.Run("redis healthy", func(t *testing.T) {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		ts := newTestServer(t, testConfig(), rdb)

		var body healthBody
		require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/health/ready", "", nil, &body))
		assert.Equal(t, "healthy", body.Checks["redis"])
	})

	t.Run("redis down", func(t *testing.T) {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		ts := newTestServer(t, testConfig(), rdb)
		mr.Close()

		var body healthBody
		require.Equal(t, http.StatusServiceUnavailable, ts.do(t, http.MethodGet, "/health/ready", "", nil, &body))
		assert.Equal(t, "unhealthy", body.Status)
		assert.Equal(t, "unhealthy", body.Checks["redis"])
	})
}

func TestUnknownRouteUsesErrorEnvelope(t *testing.T) {
	ts := newTestServer(t, testConfig(), nil)

	var body map[string]any
	require.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/nope", "", nil, &body))
	assert.NotEmpty(t, body["error"])
}

func TestShutdownClosesPublisher(t *testing.T) {
	ts := newTestServer(t, testConfig(), nil)
	ts.pub.On("Close").Return(nil)

	require.NoError(t, ts.srv.Shutdown(t.Context()))
	ts.pub.AssertCalled(t, "Close")
}
