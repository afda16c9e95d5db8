package middleware

import (
	"errors"
	"log"
	"net/http"

	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/identity"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server/store"
)

// RequireRegistered rejects anonymous callers with 401 and callers without a
// registered device with 403 before the handler touches any state.
func RequireRegistered(devices store.DevicesStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := identity.Resolve(r.Context())
			if errors.Is(err, identity.ErrAnonymousCaller) {
				writeError(w, http.StatusUnauthorized, "AnonymousCaller", err.Error())
				return
			}

			registered, err := devices.IsRegistered(principal.String())
			if err != nil {
				log.Printf("registration check for %s failed: %v", principal, err)
				writeError(w, http.StatusInternalServerError, "InternalError", "registration check failed")
				return
			}
			if !registered {
				writeError(w, http.StatusForbidden, "DeviceNotRegistered", store.ErrDeviceNotRegistered.Error())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
