package endpoints

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/audit"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server/middleware"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server/store/memory"
)

var testTokenKey = []byte("0123456789abcdef0123456789abcdef")

func init() {
	audit.SetEnabled(false)
}

type testServer struct {
	*server.Server
	t *testing.T
}

func newTestServer(t *testing.T, stores server.Stores) *testServer {
	s := server.NewServer(stores, nil, middleware.NewTokenAuthenticator(testTokenKey), "127.0.0.1", "0")
	s.AccessLog = nil
	RegisterAll(s)
	return &testServer{Server: s, t: t}
}

func newMemoryServer(t *testing.T, maxNoteBytes int) *testServer {
	backend := memory.NewBackend(maxNoteBytes)
	return newTestServer(t, server.Stores{
		Devices: backend.Devices,
		Secrets: backend.Secrets,
		Notes:   backend.Notes,
		Health:  memory.HealthStore{},
		Backend: "memory",
	})
}

// do sends a request as principal. An empty principal sends no token.
func (ts *testServer) do(method, path, principal string, body interface{}) *httptest.ResponseRecorder {
	ts.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(ts.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if principal != "" {
		token, err := ts.Authenticator.Issue(principal, time.Minute)
		require.NoError(ts.t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.Handler().ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error ErrorBody `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error.Code
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, "body: %s", w.Body.String())
}
