package endpoints

import (
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server"
)

// RegisterAll registers all API endpoints on the server
func RegisterAll(srv *server.Server) {
	RegisterStatusEndpoints(srv)
	RegisterWhoamiEndpoint(srv)
	RegisterDevicesEndpoints(srv)
	RegisterSecretsEndpoints(srv)
	RegisterNotesEndpoints(srv)
}
