// Package server provides the HTTP server for the notes API.
//
// The server routes requests with gorilla/mux, writes an access log with
// gorilla/handlers and recovers panics (invariant violations raised by the
// stores) into 500 responses.
//
// # Server Setup
//
//	srv := server.NewServer(server.Stores{...}, cfg, authenticator, "0.0.0.0", "8080")
//	endpoints.RegisterAll(srv)
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Endpoints
//
// API endpoints are registered via the endpoints subpackage:
//
//   - /devices - device registry
//   - /secrets - secret distribution ledger
//   - /notes - encrypted notes
//   - /status, /whoami
package server
