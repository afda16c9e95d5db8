package memory

import (
	"fmt"
	"sync"

	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/model"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server/store"
)

var _ store.NotesStore = (*NoteStore)(nil)

// NoteStore holds each principal's notes in insertion order. Identifiers come
// from a single counter shared by all principals and are never reused.
type NoteStore struct {
	mu           sync.Mutex
	next         model.NoteID
	notes        map[string][]store.Note
	maxNoteBytes int
}

// NewNoteStore returns an empty note store.
func NewNoteStore(maxNoteBytes int) *NoteStore {
	return &NoteStore{
		notes:        map[string][]store.Note{},
		maxNoteBytes: maxNoteBytes,
	}
}

func (s *NoteStore) OnFirstDeviceRegistered(principal string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notes[principal]; !ok {
		s.notes[principal] = []store.Note{}
	}
	return nil
}

func (s *NoteStore) Notes(principal string) ([]store.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes := make([]store.Note, len(s.notes[principal]))
	copy(notes, s.notes[principal])
	return notes, nil
}

func (s *NoteStore) Note(principal string, id model.NoteID) (store.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.notes[principal] {
		if n.ID == id {
			return n, nil
		}
	}
	return store.Note{}, fmt.Errorf("%w: %s", store.ErrNoteNotFound, id)
}

func (s *NoteStore) AddNote(principal, ciphertext string) (model.NoteID, error) {
	if err := store.CheckNoteSize(ciphertext, s.maxNoteBytes); err != nil {
		return model.NoteID{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	notes, ok := s.notes[principal]
	if !ok {
		store.Violate("AddNote", principal, "note storage was never allocated")
	}
	id := s.next
	next, err := id.Next()
	if err != nil {
		return model.NoteID{}, err
	}
	s.next = next
	s.notes[principal] = append(notes, store.Note{ID: id, Ciphertext: ciphertext})
	return id, nil
}

func (s *NoteStore) UpdateNote(principal string, id model.NoteID, ciphertext string) error {
	if err := store.CheckNoteSize(ciphertext, s.maxNoteBytes); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	notes := s.notes[principal]
	for i := range notes {
		if notes[i].ID == id {
			notes[i].Ciphertext = ciphertext
			return nil
		}
	}
	return nil
}

func (s *NoteStore) DeleteNote(principal string, id model.NoteID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes, ok := s.notes[principal]
	if !ok {
		return nil
	}
	for i := range notes {
		if notes[i].ID == id {
			s.notes[principal] = append(notes[:i:i], notes[i+1:]...)
			return nil
		}
	}
	return nil
}
