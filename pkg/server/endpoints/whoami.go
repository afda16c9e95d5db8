package endpoints

import (
	"net/http"

	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/identity"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server"
)

// WhoamiResponse represents the response from the /whoami endpoint
type WhoamiResponse struct {
	Principal  string `json:"principal"`
	Registered bool   `json:"registered"`
}

// RegisterWhoamiEndpoint registers the /whoami endpoint
func RegisterWhoamiEndpoint(s *server.Server) {
	s.Router.Handle("/whoami", authenticated(s, handleWhoami(s))).Methods("GET")
}

func handleWhoami(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := identity.Resolve(r.Context())
		if err != nil {
			writeStoreError(w, err)
			return
		}
		ok, err := s.DevicesStore.IsRegistered(principal.String())
		if err != nil {
			writeStoreError(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, WhoamiResponse{Principal: principal.String(), Registered: ok})
	}
}
