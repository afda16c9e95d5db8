package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/model"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server/store"
)

func TestNotesLifecycle(t *testing.T) {
	b := registered(t, "A1", "pk1")

	id0, err := b.Notes.AddNote("alice", "c0")
	require.NoError(t, err)
	id1, err := b.Notes.AddNote("alice", "c1")
	require.NoError(t, err)
	assert.Equal(t, model.NoteIDFromUint64(0), id0)
	assert.Equal(t, model.NoteIDFromUint64(1), id1)

	notes, err := b.Notes.Notes("alice")
	require.NoError(t, err)
	assert.Equal(t, []store.Note{{ID: id0, Ciphertext: "c0"}, {ID: id1, Ciphertext: "c1"}}, notes)

	require.NoError(t, b.Notes.UpdateNote("alice", id0, "c0'"))
	require.NoError(t, b.Notes.UpdateNote("alice", model.NoteIDFromUint64(99), "x"))
	require.NoError(t, b.Notes.DeleteNote("alice", id1))
	require.NoError(t, b.Notes.DeleteNote("alice", id1))

	notes, err = b.Notes.Notes("alice")
	require.NoError(t, err)
	assert.Equal(t, []store.Note{{ID: id0, Ciphertext: "c0'"}}, notes)
}

func TestNoteFetch(t *testing.T) {
	b := NewBackend(0)
	require.NoError(t, b.Devices.RegisterDevice("alice", "A1", "pk1"))
	require.NoError(t, b.Devices.RegisterDevice("bob", "B1", "pk2"))

	id, err := b.Notes.AddNote("alice", "c0")
	require.NoError(t, err)

	note, err := b.Notes.Note("alice", id)
	require.NoError(t, err)
	assert.Equal(t, store.Note{ID: id, Ciphertext: "c0"}, note)

	_, err = b.Notes.Note("bob", id)
	assert.ErrorIs(t, err, store.ErrNoteNotFound)
	_, err = b.Notes.Note("carol", id)
	assert.ErrorIs(t, err, store.ErrNoteNotFound)

	require.NoError(t, b.Notes.DeleteNote("alice", id))
	_, err = b.Notes.Note("alice", id)
	assert.ErrorIs(t, err, store.ErrNoteNotFound)
}

func TestNoteIDsAreNeverReused(t *testing.T) {
	b := NewBackend(0)
	require.NoError(t, b.Devices.RegisterDevice("alice", "A1", "pk1"))
	require.NoError(t, b.Devices.RegisterDevice("bob", "B1", "pk2"))

	a, err := b.Notes.AddNote("alice", "a")
	require.NoError(t, err)
	require.NoError(t, b.Notes.DeleteNote("alice", a))
	c, err := b.Notes.AddNote("bob", "b")
	require.NoError(t, err)
	assert.Equal(t, 1, c.Cmp(a))
}

func TestNotesAreIsolatedByPrincipal(t *testing.T) {
	b := NewBackend(0)
	require.NoError(t, b.Devices.RegisterDevice("alice", "A1", "pk1"))
	require.NoError(t, b.Devices.RegisterDevice("bob", "B1", "pk2"))

	id, err := b.Notes.AddNote("alice", "secret")
	require.NoError(t, err)

	require.NoError(t, b.Notes.UpdateNote("bob", id, "hijack"))
	require.NoError(t, b.Notes.DeleteNote("bob", id))

	notes, err := b.Notes.Notes("alice")
	require.NoError(t, err)
	assert.Equal(t, []store.Note{{ID: id, Ciphertext: "secret"}}, notes)

	notes, err = b.Notes.Notes("bob")
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestNotesReturnsCopy(t *testing.T) {
	b := registered(t, "A1", "pk1")
	_, err := b.Notes.AddNote("alice", "c0")
	require.NoError(t, err)

	notes, err := b.Notes.Notes("alice")
	require.NoError(t, err)
	notes[0].Ciphertext = "mutated"

	notes, err = b.Notes.Notes("alice")
	require.NoError(t, err)
	assert.Equal(t, "c0", notes[0].Ciphertext)
}

func TestAddNoteWithoutStoragePanics(t *testing.T) {
	b := NewBackend(0)
	defer func() {
		assert.True(t, store.IsInvariantViolation(recover()))
		notes, err := b.Notes.Notes("ghost")
		require.NoError(t, err)
		assert.Empty(t, notes)
	}()
	_, _ = b.Notes.AddNote("ghost", "c")
	t.Fatal("expected panic")
}

func TestNoteSizeLimit(t *testing.T) {
	b := NewBackend(4)
	require.NoError(t, b.Devices.RegisterDevice("alice", "A1", "pk1"))

	_, err := b.Notes.AddNote("alice", "12345")
	assert.ErrorIs(t, err, store.ErrNoteTooLarge)

	id, err := b.Notes.AddNote("alice", "1234")
	require.NoError(t, err)
	assert.ErrorIs(t, b.Notes.UpdateNote("alice", id, "12345"), store.ErrNoteTooLarge)
}

func TestConcurrentAddNote(t *testing.T) {
	b := NewBackend(0)
	principals := []string{"alice", "bob", "carol", "dave"}
	for _, p := range principals {
		require.NoError(t, b.Devices.RegisterDevice(p, "d", "pk-"+p))
	}

	var wg sync.WaitGroup
	for _, p := range principals {
		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_, err := b.Notes.AddNote(p, "c")
				assert.NoError(t, err)
			}
		}(p)
	}
	wg.Wait()

	seen := map[model.NoteID]bool{}
	for _, p := range principals {
		notes, err := b.Notes.Notes(p)
		require.NoError(t, err)
		assert.Len(t, notes, 50)
		for _, n := range notes {
			assert.False(t, seen[n.ID], "duplicate id %s", n.ID)
			seen[n.ID] = true
		}
	}
	assert.Len(t, seen, 200)
}
