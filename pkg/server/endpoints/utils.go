package endpoints

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"

	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/config"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server/middleware"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server/store"
)

// ErrorBody is the payload of every error response.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondWithError(w http.ResponseWriter, code int, errorCode, message string) {
	respondWithJSON(w, code, map[string]interface{}{"error": ErrorBody{Code: errorCode, Message: message}})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// decodeJSON reads the request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", store.ErrInvalidArgument, err)
	}
	return nil
}

// authenticated wraps h with bearer token authentication.
func authenticated(s *server.Server, h http.HandlerFunc) http.Handler {
	return s.Authenticator.Middleware(h)
}

// registered wraps h with authentication and the device registration check.
func registered(s *server.Server, h http.HandlerFunc) http.Handler {
	return s.Authenticator.Middleware(middleware.RequireRegistered(s.DevicesStore)(h))
}

// clientIP returns the caller address, honoring X-Forwarded-For only when the
// direct peer is a trusted proxy.
func clientIP(r *http.Request, cfg *config.NotesConfig) string {
	remote, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		remote = r.RemoteAddr
	}
	if cfg == nil || !cfg.IsTrustedProxy(remote) {
		return remote
	}

	forwarded := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(forwarded) - 1; i >= 0; i-- {
		ip := strings.TrimSpace(forwarded[i])
		if ip == "" {
			continue
		}
		if !cfg.IsTrustedProxy(ip) {
			return ip
		}
	}
	return remote
}

// pathParam returns the unescaped mux variable name. The router keeps paths encoded.
func pathParam(r *http.Request, name string) (string, error) {
	value, err := url.PathUnescape(mux.Vars(r)[name])
	if err != nil {
		return "", fmt.Errorf("%w: %v", store.ErrInvalidArgument, err)
	}
	return value, nil
}
