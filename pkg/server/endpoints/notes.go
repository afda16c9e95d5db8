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

// NoteRequest is the body of POST /notes and PUT /notes/{id}
type NoteRequest struct {
	Ciphertext string `json:"ciphertext"`
}

// AddNoteResponse is returned by POST /notes
type AddNoteResponse struct {
	ID model.NoteID `json:"id"`
}

// RegisterNotesEndpoints registers the note endpoints
func RegisterNotesEndpoints(s *server.Server) {
	s.Router.Handle("/notes", registered(s, handleGetNotes(s))).Methods("GET")
	s.Router.Handle("/notes", registered(s, handleAddNote(s))).Methods("POST")
	s.Router.Handle("/notes/{id}", registered(s, handleGetNote(s))).Methods("GET")
	s.Router.Handle("/notes/{id}", registered(s, handleUpdateNote(s))).Methods("PUT")
	s.Router.Handle("/notes/{id}", registered(s, handleDeleteNote(s))).Methods("DELETE")
}

func handleGetNotes(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := identity.Resolve(r.Context())
		if err != nil {
			writeStoreError(w, err)
			return
		}
		notes, err := s.NotesStore.Notes(principal.String())
		if err != nil {
			writeStoreError(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, notes)
	}
}

func handleGetNote(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := identity.Resolve(r.Context())
		if err != nil {
			writeStoreError(w, err)
			return
		}
		id, err := noteIDParam(r)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		note, err := s.NotesStore.Note(principal.String(), id)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, note)
	}
}

func handleAddNote(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := identity.Resolve(r.Context())
		if err != nil {
			writeStoreError(w, err)
			return
		}
		var req NoteRequest
		if err := decodeJSON(r, &req); err != nil {
			writeStoreError(w, err)
			return
		}

		id, err := s.NotesStore.AddNote(principal.String(), req.Ciphertext)
		noteID := ""
		if err == nil {
			noteID = id.String()
		}
		logNoteEvent(r, s, principal, "add", noteID, err)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		respondWithJSON(w, http.StatusCreated, AddNoteResponse{ID: id})
	}
}

func handleUpdateNote(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := identity.Resolve(r.Context())
		if err != nil {
			writeStoreError(w, err)
			return
		}
		id, err := noteIDParam(r)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		var req NoteRequest
		if err := decodeJSON(r, &req); err != nil {
			writeStoreError(w, err)
			return
		}

		err = s.NotesStore.UpdateNote(principal.String(), id, req.Ciphertext)
		logNoteEvent(r, s, principal, "update", id.String(), err)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleDeleteNote(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := identity.Resolve(r.Context())
		if err != nil {
			writeStoreError(w, err)
			return
		}
		id, err := noteIDParam(r)
		if err != nil {
			writeStoreError(w, err)
			return
		}

		err = s.NotesStore.DeleteNote(principal.String(), id)
		logNoteEvent(r, s, principal, "delete", id.String(), err)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func noteIDParam(r *http.Request) (model.NoteID, error) {
	raw, err := pathParam(r, "id")
	if err != nil {
		return model.NoteID{}, err
	}
	id, err := model.ParseNoteID(raw)
	if err != nil {
		return model.NoteID{}, fmt.Errorf("%w: %v", store.ErrInvalidArgument, err)
	}
	return id, nil
}

func logNoteEvent(r *http.Request, s *server.Server, principal identity.Principal, op, noteID string, err error) {
	event := audit.NoteEvent{
		Principal: principal.String(),
		ClientIP:  clientIP(r, s.Config()),
		NoteID:    noteID,
		Operation: op,
		Success:   err == nil,
	}
	if err != nil {
		event.ErrorMessage = err.Error()
	}
	audit.Log(event)
}
