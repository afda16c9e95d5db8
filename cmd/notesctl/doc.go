// Command notesctl runs the encrypted notes server and its maintenance tasks.
//
// # Quick Start
//
//	# Generate keys
//	export NOTES_DATA_KEY="$(notesctl data-key generate)"
//	export NOTES_TOKEN_KEY="$(notesctl data-key generate)"
//
//	# In-memory backend with an encrypted snapshot
//	NOTES_SNAPSHOT_PATH=/var/lib/notes/snapshot notesctl server
//
//	# Postgres backend
//	export DATABASE_URL=postgres://notes@localhost/notes?sslmode=disable
//	NOTES_STORE_BACKEND=postgres notesctl server
//
//	# Issue a bearer token for a principal
//	notesctl token issue alice
//
// # Environment Variables
//
//   - NOTES_TOKEN_KEY: Base64-encoded HMAC key for bearer tokens (required by server)
//   - NOTES_DATA_KEY: Base64-encoded 256-bit key sealing memory snapshots
//   - DATABASE_URL: PostgreSQL connection string for the postgres backend
//   - NOTES_CONFIG_PATH: Directory holding notes.yml
//   - NOTES_LOG_LEVEL: Set to "debug" for SQL query logging
//   - PORT, BIND_ADDRESS: Listen address
package main
