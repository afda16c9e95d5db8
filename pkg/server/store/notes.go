package store

import "github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/model"

// Note is an encrypted note as returned to its owner.
type Note struct {
	ID         model.NoteID `json:"id"`
	Ciphertext string       `json:"ciphertext"`
}

// NotesStore abstracts encrypted note storage
type NotesStore interface {
	FirstDeviceListener

	// Notes lists the principal's notes in insertion order.
	Notes(principal string) ([]Note, error)

	// Note returns note id, or ErrNoteNotFound when the principal does not own it.
	Note(principal string, id model.NoteID) (Note, error)

	// AddNote appends a note and returns its newly allocated id.
	AddNote(principal, ciphertext string) (model.NoteID, error)

	// UpdateNote replaces the ciphertext of note id. Missing ids are a no-op.
	UpdateNote(principal string, id model.NoteID, ciphertext string) error

	// DeleteNote removes note id. Missing ids are a no-op.
	DeleteNote(principal string, id model.NoteID) error
}
