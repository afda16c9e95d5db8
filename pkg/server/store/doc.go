// Package store provides storage abstractions for the note server.
//
// This package defines the three components behind the REST API, allowing the
// endpoints to be decoupled from the backend that holds the state. Two
// backends implement them: memory (process-wide maps, optionally persisted as
// a snapshot) and gorm (Postgres).
//
// # Available Stores
//
//   - DevicesStore: the device registry (alias -> public key per principal)
//   - SecretsStore: the secret distribution ledger (public key -> encrypted secret)
//   - NotesStore: encrypted notes keyed by a process-wide NoteID
//   - HealthStore: backend connectivity
//
// # Errors
//
// Recoverable conditions are returned as sentinel errors and callers branch on
// them with errors.Is:
//
//	secret, err := secrets.EncryptedSecret(principal, publicKey)
//	if errors.Is(err, store.ErrKeyNotSynchronized) {
//	    // poll again later
//	}
//
// Protocol misuse that the boundary pre-checks make unreachable (deleting the
// last device, writing notes for a principal without storage) panics with an
// InvariantViolation instead.
package store
