package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/identity"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server/store"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server/store/memory"
)

type failingDevices struct {
	store.DevicesStore
}

func (failingDevices) IsRegistered(string) (bool, error) {
	return false, errors.New("db down")
}

func TestRequireRegistered(t *testing.T) {
	backend := memory.NewBackend(0)
	require.NoError(t, backend.Devices.RegisterDevice("alice", "A1", "pk1"))

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name       string
		devices    store.DevicesStore
		principal  identity.Principal
		set        bool
		wantStatus int
		wantCode   string
	}{
		{"registered", backend.Devices, "alice", true, http.StatusNoContent, ""},
		{"unregistered", backend.Devices, "bob", true, http.StatusForbidden, "DeviceNotRegistered"},
		{"anonymous", backend.Devices, identity.Anonymous, true, http.StatusUnauthorized, "AnonymousCaller"},
		{"no principal", backend.Devices, "", false, http.StatusUnauthorized, "AnonymousCaller"},
		{"store failure", failingDevices{}, "alice", true, http.StatusInternalServerError, "InternalError"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/notes", nil)
			if tt.set {
				req = req.WithContext(identity.Set(req.Context(), tt.principal))
			}
			w := httptest.NewRecorder()
			RequireRegistered(tt.devices)(ok).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				assert.Contains(t, w.Body.String(), `"code":"`+tt.wantCode+`"`)
			}
		})
	}
}
