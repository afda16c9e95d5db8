package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/audit"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/client"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/identity"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/model"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server/endpoints"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server/middleware"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server/store"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server/store/memory"
)

func init() {
	audit.SetEnabled(false)
}

func startServer(t *testing.T) (*httptest.Server, *middleware.TokenAuthenticator) {
	backend := memory.NewBackend(0)
	auth := middleware.NewTokenAuthenticator([]byte("0123456789abcdef0123456789abcdef"))
	s := server.NewServer(server.Stores{
		Devices: backend.Devices,
		Secrets: backend.Secrets,
		Notes:   backend.Notes,
		Health:  memory.HealthStore{},
		Backend: "memory",
	}, nil, auth, "127.0.0.1", "0")
	s.AccessLog = nil
	endpoints.RegisterAll(s)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts, auth
}

func clientFor(t *testing.T, ts *httptest.Server, auth *middleware.TokenAuthenticator, principal string) *client.Client {
	token, err := auth.Issue(principal, time.Minute)
	require.NoError(t, err)
	return client.New(ts.URL+"/", token)
}

func TestClientDeviceJoinFlow(t *testing.T) {
	ts, auth := startServer(t)
	ctx := context.Background()
	alice := clientFor(t, ts, auth, "alice")

	require.NoError(t, alice.RegisterDevice(ctx, "laptop", "pk1"))
	seed, err := alice.IsSeed(ctx)
	require.NoError(t, err)
	assert.True(t, seed)
	require.NoError(t, alice.UploadSeedSecret(ctx, "pk1", "s1"))

	require.NoError(t, alice.RegisterDevice(ctx, "phone 2", "pk2"))
	_, err = alice.EncryptedSecret(ctx, "pk2")
	assert.True(t, errors.Is(err, store.ErrKeyNotSynchronized))
	assert.Equal(t, "KeyNotSynchronized", client.Code(err))

	unsynced, err := alice.UnsyncedPublicKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"pk2"}, unsynced)

	require.NoError(t, alice.UploadEncryptedSecrets(ctx, []store.SecretEntry{{PublicKey: "pk2", EncryptedSecret: "s2"}}))
	secret, err := alice.EncryptedSecret(ctx, "pk2")
	require.NoError(t, err)
	assert.Equal(t, "s2", secret)

	state, err := alice.SyncState(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.SyncStateFullySynced, state)

	devices, err := alice.Devices(ctx)
	require.NoError(t, err)
	assert.Equal(t, []store.Device{{Alias: "laptop", PublicKey: "pk1"}, {Alias: "phone 2", PublicKey: "pk2"}}, devices)

	require.NoError(t, alice.DeleteDevice(ctx, "phone 2"))
	aliases, err := alice.DeviceAliases(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"laptop"}, aliases)
}

func TestClientNotes(t *testing.T) {
	ts, auth := startServer(t)
	ctx := context.Background()
	alice := clientFor(t, ts, auth, "alice")
	require.NoError(t, alice.RegisterDevice(ctx, "laptop", "pk1"))

	id, err := alice.AddNote(ctx, "c0")
	require.NoError(t, err)
	require.NoError(t, alice.UpdateNote(ctx, id, "c0'"))

	notes, err := alice.Notes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []store.Note{{ID: id, Ciphertext: "c0'"}}, notes)

	note, err := alice.Note(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, store.Note{ID: id, Ciphertext: "c0'"}, note)

	require.NoError(t, alice.DeleteNote(ctx, id))
	notes, err = alice.Notes(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)

	_, err = alice.Note(ctx, id)
	assert.ErrorIs(t, err, store.ErrNoteNotFound)
	assert.Equal(t, "NoteNotFound", client.Code(err))
}

func TestClientErrors(t *testing.T) {
	ts, auth := startServer(t)
	ctx := context.Background()

	anonymous := client.New(ts.URL, "")
	_, err := anonymous.Notes(ctx)
	assert.True(t, errors.Is(err, identity.ErrAnonymousCaller))

	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	bob := clientFor(t, ts, auth, "bob")
	_, err = bob.Notes(ctx)
	assert.True(t, errors.Is(err, store.ErrDeviceNotRegistered))

	who, err := bob.Whoami(ctx)
	require.NoError(t, err)
	assert.Equal(t, client.Whoami{Principal: "bob"}, who)

	status, err := anonymous.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "memory", status.Backend)

	assert.Equal(t, "", client.Code(errors.New("plain")))
}
