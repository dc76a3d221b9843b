package rest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler(t *testing.T) {
	testServer := httptest.NewServer(Handler())
	t.Cleanup(testServer.Close)

	t.Run("ping answers pong", func(t *testing.T) {
		// When: probing the liveness endpoint
		resp, err := http.Get(testServer.URL + "/ping")
		require.NoError(t, err)
		defer resp.Body.Close()

		// Then: it answers pong
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "pong", string(body))
	})

	t.Run("metrics are exposed", func(t *testing.T) {
		// When: scraping the metrics endpoint
		resp, err := http.Get(testServer.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()

		// Then: it serves the Prometheus text format
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), "# HELP")
	})
}
