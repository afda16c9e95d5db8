package endpoints

import (
	"log"
	"net/http"

	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server"
)

// StatusResponse is returned by GET /status
type StatusResponse struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
	Error   string `json:"error,omitempty"`
}

// RegisterStatusEndpoints registers the status endpoint (no auth required)
func RegisterStatusEndpoints(s *server.Server) {
	s.Router.HandleFunc("/status", handleStatus(s)).Methods("GET")
}

func handleStatus(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.HealthStore.CheckConnectivity(); err != nil {
			log.Printf("status: %s backend unreachable: %v", s.Backend, err)
			respondWithJSON(w, http.StatusServiceUnavailable, StatusResponse{
				Status:  "error",
				Backend: s.Backend,
				Error:   "backend connectivity check failed",
			})
			return
		}
		respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok", Backend: s.Backend})
	}
}
