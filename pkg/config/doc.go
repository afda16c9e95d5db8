// Package config provides configuration management for the notes server.
//
// Settings are read from notes.yml in the directory named by
// NOTES_CONFIG_PATH (default /etc/notes/config) and overridden by NOTES_*
// environment variables. Every attribute remembers whether its value came
// from the defaults, the file or the environment, which `notesctl
// configuration show` prints.
//
// # Key Configuration Options
//
//   - NOTES_STORE_BACKEND: memory or postgres
//   - NOTES_SNAPSHOT_PATH: where the memory backend persists its state
//   - NOTES_MAX_NOTE_BYTES: upper bound on a note's ciphertext
//   - NOTES_DATA_KEY: snapshot encryption key (read by pkg/sealer)
//   - NOTES_TOKEN_KEY: bearer token signing key
//   - DATABASE_URL: Postgres connection
package config
