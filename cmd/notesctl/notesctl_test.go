package main

import (
	"bytes"
	"encoding/base64"
	"io/fs"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/encrypted-notes-in-go/db"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/audit"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server/middleware"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server/store"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server/store/memory"
)

func TestWithMigrationsTable(t *testing.T) {
	assert.Equal(t,
		"postgres://localhost/notes?x-migrations-table=notes_schema_migrations",
		withMigrationsTable("postgres://localhost/notes"))
	assert.Equal(t,
		"postgres://localhost/notes?sslmode=disable&x-migrations-table=notes_schema_migrations",
		withMigrationsTable("postgres://localhost/notes?sslmode=disable"))
}

func TestPendingMigrations(t *testing.T) {
	files := []string{
		"20260901000001_create_devices.up.sql",
		"20260901000002_create_secret_entries.up.sql",
		"20260901000003_create_notes.up.sql",
		"not_a_version.up.sql",
	}
	assert.Len(t, pendingMigrations(files, 0), 3)
	assert.Equal(t, []string{"20260901000003_create_notes.up.sql"}, pendingMigrations(files, 20260901000002))
	assert.Empty(t, pendingMigrations(files, 20260901000003))
}

func TestUpMigrationsFromEmbeddedSchema(t *testing.T) {
	entries, err := fs.ReadDir(db.Migrations, "migrations")
	require.NoError(t, err)

	files := upMigrations(entries)
	require.NotEmpty(t, files)
	assert.True(t, sort.StringsAreSorted(files))
	for _, f := range files {
		assert.True(t, strings.HasSuffix(f, ".up.sql"), f)
	}
}

func TestIssueToken(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	t.Setenv(middleware.TokenKeyEnv, base64.StdEncoding.EncodeToString(key))

	token, err := issueToken("alice", time.Minute)
	require.NoError(t, err)

	principal, err := middleware.NewTokenAuthenticator(key).Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", principal.String())

	_, err = issueToken("", time.Minute)
	assert.ErrorIs(t, err, store.ErrInvalidArgument)
}

func TestIssueTokenRequiresKey(t *testing.T) {
	t.Setenv(middleware.TokenKeyEnv, "")

	_, err := issueToken("alice", time.Minute)
	assert.ErrorIs(t, err, middleware.ErrNoTokenKey)
}

func TestRedactSnapshot(t *testing.T) {
	snap := memory.Snapshot{
		Version:    memory.SnapshotVersion,
		NextNoteID: "1",
		Principals: []memory.PrincipalSnapshot{{
			Principal: "alice",
			Devices:   []store.Device{{Alias: "A1", PublicKey: "pk1"}},
			Secrets:   []store.SecretEntry{{PublicKey: "pk1", EncryptedSecret: "s1"}},
			Notes:     []memory.NoteSnapshot{{ID: "0", Ciphertext: "c0"}},
		}},
	}

	out := redact(snap)
	assert.Equal(t, "<redacted>", out.Principals[0].Secrets[0].EncryptedSecret)
	assert.Equal(t, "pk1", out.Principals[0].Secrets[0].PublicKey)
	assert.Equal(t, "<redacted>", out.Principals[0].Notes[0].Ciphertext)
	assert.Equal(t, "0", out.Principals[0].Notes[0].ID)

	assert.Equal(t, "s1", snap.Principals[0].Secrets[0].EncryptedSecret)
	assert.Equal(t, "c0", snap.Principals[0].Notes[0].Ciphertext)
}

func TestPrintAudit(t *testing.T) {
	messages := []audit.Message{{
		Facility:  audit.FacilityAuthPriv,
		Severity:  int(audit.SeverityInfo),
		Timestamp: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
		Hostname:  "host",
		Appname:   audit.AppName,
		Procid:    "7",
		Msgid:     "note",
		Sdata:     map[string]map[string]string{audit.SDIDAuth: {"user": "alice"}},
		Message:   "alice added note 0",
	}}

	var text bytes.Buffer
	require.NoError(t, printAudit(&text, messages, "text"))
	assert.Equal(t, "<86>1 2026-09-01T12:00:00.000Z host notes 7 note [auth@32473 user=\"alice\"] alice added note 0\n", text.String())

	var js bytes.Buffer
	require.NoError(t, printAudit(&js, messages, "json"))
	assert.Contains(t, js.String(), `"msgid": "note"`)

	assert.Error(t, printAudit(&text, messages, "yaml"))
}
