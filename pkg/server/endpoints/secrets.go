package endpoints

import (
	"fmt"
	"net/http"

	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/audit"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/identity"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/model"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server/store"
)

// SeedResponse is returned by GET /secrets/seed
type SeedResponse struct {
	Seed bool `json:"seed"`
}

// SeedRequest is the body of POST /secrets/seed
type SeedRequest struct {
	PublicKey       string `json:"public_key"`
	EncryptedSecret string `json:"encrypted_secret"`
}

// UploadSecretsRequest is the body of POST /secrets
type UploadSecretsRequest struct {
	Entries []store.SecretEntry `json:"entries"`
}

// EncryptedSecretResponse is returned by GET /secrets?public_key=
type EncryptedSecretResponse struct {
	EncryptedSecret string `json:"encrypted_secret"`
}

// SyncStateResponse is returned by GET /secrets/state
type SyncStateResponse struct {
	State model.SyncState `json:"state"`
}

// RegisterSecretsEndpoints registers the secret distribution endpoints
func RegisterSecretsEndpoints(s *server.Server) {
	s.Router.Handle("/secrets/seed", registered(s, handleIsSeed(s))).Methods("GET")
	s.Router.Handle("/secrets/seed", registered(s, handleUploadSeed(s))).Methods("POST")
	s.Router.Handle("/secrets/unsynced", registered(s, handleUnsyncedKeys(s))).Methods("GET")
	s.Router.Handle("/secrets/state", registered(s, handleSyncState(s))).Methods("GET")
	s.Router.Handle("/secrets", registered(s, handleEncryptedSecret(s))).Methods("GET")
	s.Router.Handle("/secrets", registered(s, handleUploadSecrets(s))).Methods("POST")
}

func handleIsSeed(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := identity.Resolve(r.Context())
		if err != nil {
			writeStoreError(w, err)
			return
		}
		seed, err := s.SecretsStore.IsSeed(principal.String())
		if err != nil {
			writeStoreError(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, SeedResponse{Seed: seed})
	}
}

func handleUploadSeed(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := identity.Resolve(r.Context())
		if err != nil {
			writeStoreError(w, err)
			return
		}
		var req SeedRequest
		if err := decodeJSON(r, &req); err != nil {
			writeStoreError(w, err)
			return
		}

		err = s.SecretsStore.UploadSeedSecret(principal.String(), req.PublicKey, req.EncryptedSecret)
		logSecretEvent(r, s, principal, "seed", []string{req.PublicKey}, err)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}
}

func handleUploadSecrets(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := identity.Resolve(r.Context())
		if err != nil {
			writeStoreError(w, err)
			return
		}
		var req UploadSecretsRequest
		if err := decodeJSON(r, &req); err != nil {
			writeStoreError(w, err)
			return
		}

		err = s.SecretsStore.UploadEncryptedSecrets(principal.String(), req.Entries)
		keys := make([]string, 0, len(req.Entries))
		for _, e := range req.Entries {
			keys = append(keys, e.PublicKey)
		}
		logSecretEvent(r, s, principal, "upload", keys, err)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}
}

func handleUnsyncedKeys(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := identity.Resolve(r.Context())
		if err != nil {
			writeStoreError(w, err)
			return
		}
		keys, err := s.SecretsStore.UnsyncedPublicKeys(principal.String())
		if err != nil {
			writeStoreError(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, keys)
	}
}

func handleEncryptedSecret(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := identity.Resolve(r.Context())
		if err != nil {
			writeStoreError(w, err)
			return
		}
		publicKey := r.URL.Query().Get("public_key")
		if publicKey == "" {
			writeStoreError(w, fmt.Errorf("%w: public_key query parameter is required", store.ErrInvalidArgument))
			return
		}

		secret, err := s.SecretsStore.EncryptedSecret(principal.String(), publicKey)
		logSecretEvent(r, s, principal, "fetch", nil, err)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, EncryptedSecretResponse{EncryptedSecret: secret})
	}
}

func handleSyncState(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := identity.Resolve(r.Context())
		if err != nil {
			writeStoreError(w, err)
			return
		}
		state, err := s.SecretsStore.SyncState(principal.String())
		if err != nil {
			writeStoreError(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, SyncStateResponse{State: state})
	}
}

func logSecretEvent(r *http.Request, s *server.Server, principal identity.Principal, op string, keys []string, err error) {
	event := audit.SecretEvent{
		Principal:  principal.String(),
		ClientIP:   clientIP(r, s.Config()),
		PublicKeys: keys,
		Operation:  op,
		Success:    err == nil,
	}
	if err != nil {
		event.ErrorMessage = err.Error()
	}
	audit.Log(event)
}
