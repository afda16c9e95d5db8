package memory

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/sealer"
)

// snapshotAAD binds sealed files to their purpose.
var snapshotAAD = []byte("snapshot")

// Persister saves a Backend to Path and loads it back. When Cipher is nil
// snapshots are stored as plain JSON.
type Persister struct {
	Backend  *Backend
	Path     string
	Interval time.Duration
	Cipher   sealer.Cipher
}

// Load restores the backend from Path. A missing file leaves the backend empty.
func (p *Persister) Load() error {
	snap, err := ReadSnapshot(p.Path, p.Cipher)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	return p.Backend.Restore(snap)
}

// Save writes the current state atomically.
func (p *Persister) Save() error {
	data, err := MarshalSnapshot(p.Backend.Snapshot())
	if err != nil {
		return err
	}
	if p.Cipher != nil {
		data, err = p.Cipher.Seal(snapshotAAD, data)
		if err != nil {
			return fmt.Errorf("seal snapshot: %w", err)
		}
	}

	dir := filepath.Dir(p.Path)
	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), p.Path)
}

// Run saves every Interval until ctx is done, then saves once more.
func (p *Persister) Run(ctx context.Context) error {
	var tick <-chan time.Time
	if p.Interval > 0 {
		ticker := time.NewTicker(p.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-tick:
			if err := p.Save(); err != nil {
				log.Printf("snapshot save failed: %v", err)
			}
		case <-ctx.Done():
			return p.Save()
		}
	}
}

// ReadSnapshot reads and, when c is set, opens the snapshot at path.
func ReadSnapshot(path string, c sealer.Cipher) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, err
	}
	if c != nil {
		data, err = c.Open(snapshotAAD, data)
		if err != nil {
			return Snapshot{}, fmt.Errorf("open snapshot: %w", err)
		}
	}
	return UnmarshalSnapshot(data)
}
