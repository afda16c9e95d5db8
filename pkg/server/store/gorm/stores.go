package gorm

import (
	"gorm.io/gorm"
)

// Stores bundles the Postgres-backed stores sharing one connection.
type Stores struct {
	Devices *DevicesStore
	Secrets *SecretsStore
	Notes   *NotesStore
	Health  *HealthStore
}

// NewStores wires the stores so device registration allocates note storage
// in the same transaction.
func NewStores(db *gorm.DB, maxNoteBytes int) *Stores {
	notes := NewNotesStore(db, maxNoteBytes)
	return &Stores{
		Devices: NewDevicesStore(db, notes),
		Secrets: NewSecretsStore(db),
		Notes:   notes,
		Health:  NewHealthStore(db),
	}
}
