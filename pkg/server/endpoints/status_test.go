package endpoints

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server"
)

func TestHandleStatus(t *testing.T) {
	t.Run("reports ok without authentication", func(t *testing.T) {
		health := new(MockHealthStore)
		health.On("CheckConnectivity").Return(nil)
		ts := newTestServer(t, server.Stores{Health: health, Backend: "postgres"})

		w := ts.do("GET", "/status", "", nil)
		expectStatus(t, w, http.StatusOK)
		var body StatusResponse
		decodeBody(t, w, &body)
		assert.Equal(t, StatusResponse{Status: "ok", Backend: "postgres"}, body)
	})

	t.Run("reports unavailable backend", func(t *testing.T) {
		health := new(MockHealthStore)
		health.On("CheckConnectivity").Return(errors.New("dial tcp: connection refused"))
		ts := newTestServer(t, server.Stores{Health: health, Backend: "postgres"})

		w := ts.do("GET", "/status", "", nil)
		expectStatus(t, w, http.StatusServiceUnavailable)
		var body StatusResponse
		decodeBody(t, w, &body)
		assert.Equal(t, "error", body.Status)
		assert.NotContains(t, body.Error, "connection refused")
	})
}
