package endpoints

import (
	"net/http"

	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/audit"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/identity"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server"
)

// RegisterDeviceRequest is the body of POST /devices
type RegisterDeviceRequest struct {
	Alias     string `json:"alias"`
	PublicKey string `json:"public_key"`
}

// RegisterDevicesEndpoints registers the device registry endpoints
func RegisterDevicesEndpoints(s *server.Server) {
	s.Router.Handle("/devices", authenticated(s, handleRegisterDevice(s))).Methods("POST")
	s.Router.Handle("/devices", registered(s, handleListDevices(s))).Methods("GET")
	s.Router.Handle("/devices/{alias}", registered(s, handleDeleteDevice(s))).Methods("DELETE")
}

func handleRegisterDevice(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := identity.Resolve(r.Context())
		if err != nil {
			writeStoreError(w, err)
			return
		}

		var req RegisterDeviceRequest
		if err := decodeJSON(r, &req); err != nil {
			writeStoreError(w, err)
			return
		}

		err = s.DevicesStore.RegisterDevice(principal.String(), req.Alias, req.PublicKey)
		event := audit.DeviceEvent{
			Principal: principal.String(),
			ClientIP:  clientIP(r, s.Config()),
			Alias:     req.Alias,
			Operation: "register",
			Success:   err == nil,
		}
		if err != nil {
			event.ErrorMessage = err.Error()
			audit.Log(event)
			writeStoreError(w, err)
			return
		}
		audit.Log(event)

		respondWithJSON(w, http.StatusCreated, req)
	}
}

func handleListDevices(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := identity.Resolve(r.Context())
		if err != nil {
			writeStoreError(w, err)
			return
		}

		if r.URL.Query().Get("detail") == "true" {
			devices, err := s.DevicesStore.Devices(principal.String())
			if err != nil {
				writeStoreError(w, err)
				return
			}
			respondWithJSON(w, http.StatusOK, devices)
			return
		}

		aliases, err := s.DevicesStore.DeviceAliases(principal.String())
		if err != nil {
			writeStoreError(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, aliases)
	}
}

func handleDeleteDevice(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := identity.Resolve(r.Context())
		if err != nil {
			writeStoreError(w, err)
			return
		}
		alias, err := pathParam(r, "alias")
		if err != nil {
			writeStoreError(w, err)
			return
		}

		err = s.DevicesStore.DeleteDevice(principal.String(), alias)
		event := audit.DeviceEvent{
			Principal: principal.String(),
			ClientIP:  clientIP(r, s.Config()),
			Alias:     alias,
			Operation: "delete",
			Success:   err == nil,
		}
		if err != nil {
			event.ErrorMessage = err.Error()
			audit.Log(event)
			writeStoreError(w, err)
			return
		}
		audit.Log(event)

		w.WriteHeader(http.StatusNoContent)
	}
}
