package memory

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/model"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server/store"
)

// SnapshotVersion is the current snapshot format version.
const SnapshotVersion = 1

// Snapshot is the complete state of a Backend.
type Snapshot struct {
	Version    int                 `json:"version"`
	NextNoteID string              `json:"next_note_id"`
	Principals []PrincipalSnapshot `json:"principals"`
}

// PrincipalSnapshot is everything owned by one principal.
type PrincipalSnapshot struct {
	Principal   string              `json:"principal"`
	Devices     []store.Device      `json:"devices"`
	Secrets     []store.SecretEntry `json:"secrets"`
	NoteStorage bool                `json:"note_storage"`
	Notes       []NoteSnapshot      `json:"notes"`
}

// NoteSnapshot is a note with its id as a decimal string.
type NoteSnapshot struct {
	ID         string `json:"id"`
	Ciphertext string `json:"ciphertext"`
}

// Snapshot captures the backend state. Principals, aliases and keys are
// sorted; notes keep insertion order.
func (b *Backend) Snapshot() Snapshot {
	b.Devices.mu.RLock()
	defer b.Devices.mu.RUnlock()
	b.Secrets.mu.Lock()
	defer b.Secrets.mu.Unlock()
	b.Notes.mu.Lock()
	defer b.Notes.mu.Unlock()

	seen := map[string]struct{}{}
	for p := range b.Devices.devices {
		seen[p] = struct{}{}
	}
	for p := range b.Notes.notes {
		seen[p] = struct{}{}
	}
	principals := make([]string, 0, len(seen))
	for p := range seen {
		principals = append(principals, p)
	}
	sort.Strings(principals)

	snap := Snapshot{
		Version:    SnapshotVersion,
		NextNoteID: b.Notes.next.String(),
		Principals: make([]PrincipalSnapshot, 0, len(principals)),
	}
	for _, p := range principals {
		ps := PrincipalSnapshot{
			Principal: p,
			Devices:   b.Devices.devicesLocked(p),
			Secrets:   []store.SecretEntry{},
			Notes:     []NoteSnapshot{},
		}
		for key, secret := range b.Secrets.entries[p] {
			ps.Secrets = append(ps.Secrets, store.SecretEntry{PublicKey: key, EncryptedSecret: secret})
		}
		sort.Slice(ps.Secrets, func(i, j int) bool { return ps.Secrets[i].PublicKey < ps.Secrets[j].PublicKey })

		notes, ok := b.Notes.notes[p]
		ps.NoteStorage = ok
		for _, n := range notes {
			ps.Notes = append(ps.Notes, NoteSnapshot{ID: n.ID.String(), Ciphertext: n.Ciphertext})
		}
		snap.Principals = append(snap.Principals, ps)
	}
	return snap
}

// Restore replaces the backend state with snap. The snapshot is validated
// first and the backend is left untouched when it is inconsistent.
func (b *Backend) Restore(snap Snapshot) error {
	if snap.Version != SnapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}
	next, err := model.ParseNoteID(snap.NextNoteID)
	if err != nil {
		return fmt.Errorf("snapshot counter: %w", err)
	}

	devices := map[string]map[string]string{}
	entries := map[string]map[string]string{}
	notes := map[string][]store.Note{}
	ids := map[model.NoteID]struct{}{}
	seen := map[string]struct{}{}

	for _, ps := range snap.Principals {
		if _, dup := seen[ps.Principal]; dup {
			return fmt.Errorf("snapshot lists principal %q twice", ps.Principal)
		}
		seen[ps.Principal] = struct{}{}
		keys := map[string]struct{}{}
		if len(ps.Devices) > 0 {
			aliases := map[string]string{}
			for _, d := range ps.Devices {
				if err := store.RequireNonEmpty("alias", d.Alias, "public_key", d.PublicKey); err != nil {
					return fmt.Errorf("snapshot principal %q: %w", ps.Principal, err)
				}
				if _, dup := aliases[d.Alias]; dup {
					return fmt.Errorf("snapshot principal %q lists alias %q twice", ps.Principal, d.Alias)
				}
				aliases[d.Alias] = d.PublicKey
				keys[d.PublicKey] = struct{}{}
			}
			devices[ps.Principal] = aliases
			if !ps.NoteStorage {
				return fmt.Errorf("snapshot principal %q has devices without note storage", ps.Principal)
			}
		}
		if len(ps.Secrets) > 0 {
			ledger := map[string]string{}
			for _, e := range ps.Secrets {
				if _, ok := keys[e.PublicKey]; !ok {
					return fmt.Errorf("snapshot principal %q: secret for unregistered key %q", ps.Principal, e.PublicKey)
				}
				ledger[e.PublicKey] = e.EncryptedSecret
			}
			entries[ps.Principal] = ledger
		}
		if ps.NoteStorage {
			list := make([]store.Note, 0, len(ps.Notes))
			for _, n := range ps.Notes {
				id, err := model.ParseNoteID(n.ID)
				if err != nil {
					return fmt.Errorf("snapshot principal %q: %w", ps.Principal, err)
				}
				if _, dup := ids[id]; dup {
					return fmt.Errorf("snapshot reuses note id %s", id)
				}
				if id.Cmp(next) >= 0 {
					return fmt.Errorf("snapshot note id %s is not below counter %s", id, next)
				}
				ids[id] = struct{}{}
				list = append(list, store.Note{ID: id, Ciphertext: n.Ciphertext})
			}
			notes[ps.Principal] = list
		} else if len(ps.Notes) > 0 {
			return fmt.Errorf("snapshot principal %q has notes without storage", ps.Principal)
		}
	}

	b.Devices.mu.Lock()
	defer b.Devices.mu.Unlock()
	b.Secrets.mu.Lock()
	defer b.Secrets.mu.Unlock()
	b.Notes.mu.Lock()
	defer b.Notes.mu.Unlock()

	b.Devices.devices = devices
	b.Secrets.entries = entries
	b.Notes.notes = notes
	b.Notes.next = next
	return nil
}

// MarshalSnapshot encodes snap as indented JSON.
func MarshalSnapshot(snap Snapshot) ([]byte, error) {
	return json.MarshalIndent(snap, "", "  ")
}

// UnmarshalSnapshot decodes JSON produced by MarshalSnapshot.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}
