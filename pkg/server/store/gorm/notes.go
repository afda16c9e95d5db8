package gorm

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/model"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server/store"
)

// Ensure NotesStore implements store.NotesStore
var _ store.NotesStore = (*NotesStore)(nil)

// NotesStore implements store.NotesStore using GORM
type NotesStore struct {
	db           *gorm.DB
	maxNoteBytes int
}

// NewNotesStore creates a new NotesStore. maxNoteBytes of zero means unlimited.
func NewNotesStore(db *gorm.DB, maxNoteBytes int) *NotesStore {
	return &NotesStore{db: db, maxNoteBytes: maxNoteBytes}
}

// OnFirstDeviceRegistered allocates the principal's note storage.
func (s *NotesStore) OnFirstDeviceRegistered(principal string) error {
	return s.onFirstDevice(s.db, principal)
}

func (s *NotesStore) onFirstDevice(tx *gorm.DB, principal string) error {
	return tx.Exec("INSERT INTO note_owners (principal) VALUES (?) ON CONFLICT DO NOTHING", principal).Error
}

// Notes lists notes by ascending id, which is insertion order.
func (s *NotesStore) Notes(principal string) ([]store.Note, error) {
	var rows []model.Note
	if err := s.db.Where("principal = ?", principal).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	notes := make([]store.Note, 0, len(rows))
	for _, n := range rows {
		notes = append(notes, store.Note{ID: n.ID, Ciphertext: n.Ciphertext})
	}
	return notes, nil
}

// Note fetches one of the principal's notes.
func (s *NotesStore) Note(principal string, id model.NoteID) (store.Note, error) {
	var row model.Note
	err := s.db.Where("principal = ? AND id = ?", principal, id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.Note{}, fmt.Errorf("%w: %s", store.ErrNoteNotFound, id)
	}
	if err != nil {
		return store.Note{}, err
	}
	return store.Note{ID: row.ID, Ciphertext: row.Ciphertext}, nil
}

// AddNote allocates the next id from note_counter and inserts the note.
func (s *NotesStore) AddNote(principal, ciphertext string) (model.NoteID, error) {
	if err := store.CheckNoteSize(ciphertext, s.maxNoteBytes); err != nil {
		return model.NoteID{}, err
	}

	var id model.NoteID
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var owners int64
		if err := tx.Model(&model.NoteOwner{}).Where("principal = ?", principal).Count(&owners).Error; err != nil {
			return err
		}
		if owners == 0 {
			store.Violate("AddNote", principal, "note storage was never allocated")
		}

		var counter model.NoteCounter
		if err := tx.Raw("SELECT id, next FROM note_counter WHERE id = 1 FOR UPDATE").Scan(&counter).Error; err != nil {
			return err
		}
		next, err := counter.Next.Next()
		if err != nil {
			return err
		}
		if err := tx.Exec("UPDATE note_counter SET next = ? WHERE id = 1", next).Error; err != nil {
			return err
		}

		id = counter.Next
		return tx.Exec(
			"INSERT INTO notes (id, principal, ciphertext) VALUES (?, ?, ?)",
			id, principal, ciphertext,
		).Error
	})
	if err != nil {
		return model.NoteID{}, err
	}
	return id, nil
}

// UpdateNote replaces the ciphertext; missing ids are ignored.
func (s *NotesStore) UpdateNote(principal string, id model.NoteID, ciphertext string) error {
	if err := store.CheckNoteSize(ciphertext, s.maxNoteBytes); err != nil {
		return err
	}
	return s.db.Exec(
		"UPDATE notes SET ciphertext = ? WHERE principal = ? AND id = ?",
		ciphertext, principal, id,
	).Error
}

// DeleteNote removes a note; missing ids are ignored.
func (s *NotesStore) DeleteNote(principal string, id model.NoteID) error {
	return s.db.Exec("DELETE FROM notes WHERE principal = ? AND id = ?", principal, id).Error
}
