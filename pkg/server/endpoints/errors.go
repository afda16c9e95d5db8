package endpoints

import (
	"errors"
	"log"
	"net/http"

	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/identity"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server/store"
)

var errorStatuses = []struct {
	err    error
	status int
	code   string
}{
	{identity.ErrAnonymousCaller, http.StatusUnauthorized, "AnonymousCaller"},
	{store.ErrDeviceNotRegistered, http.StatusForbidden, "DeviceNotRegistered"},
	{store.ErrUnknownPublicKey, http.StatusNotFound, "UnknownPublicKey"},
	{store.ErrKeyNotSynchronized, http.StatusConflict, "KeyNotSynchronized"},
	{store.ErrAlreadyRegistered, http.StatusConflict, "AlreadyRegistered"},
	{store.ErrAliasAlreadyRegistered, http.StatusConflict, "AliasAlreadyRegistered"},
	{store.ErrInvalidArgument, http.StatusBadRequest, "InvalidArgument"},
	{store.ErrNoteNotFound, http.StatusNotFound, "NoteNotFound"},
	{store.ErrNoteTooLarge, http.StatusRequestEntityTooLarge, "NoteTooLarge"},
}

// writeStoreError maps err to its HTTP status and error code.
func writeStoreError(w http.ResponseWriter, err error) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			respondWithError(w, e.status, e.code, err.Error())
			return
		}
	}
	log.Printf("internal error: %v", err)
	respondWithError(w, http.StatusInternalServerError, "InternalError", "internal server error")
}
