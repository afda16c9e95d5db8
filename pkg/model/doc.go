// Package model defines the database models for the note server.
//
// The Postgres backend maps these GORM models onto the schema created by the
// migrations in db/migrations. The in-memory backend shares the value types
// (NoteID, SyncState) so both backends agree on identifiers and states.
//
// # Core Models
//
//   - Device: one (alias, public key) pair registered by a principal
//   - SecretEntry: the symmetric note key encrypted for one device public key
//   - NoteOwner: marks a principal whose note collection has been allocated
//   - Note: one encrypted note, identified by a process-wide NoteID
//   - NoteCounter: the single row holding the next NoteID
//
// # Database Schema
//
//   - devices: (principal, alias) -> public_key
//   - secret_entries: (principal, public_key) -> encrypted_secret
//   - note_owners: principals with allocated note storage
//   - notes: id -> (principal, ciphertext)
//   - note_counter: next note id
package model
