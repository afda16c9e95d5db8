package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server/store"
)

func TestRegisterDevice(t *testing.T) {
	b := NewBackend(0)

	require.NoError(t, b.Devices.RegisterDevice("alice", "A1", "pk1"))

	aliases, err := b.Devices.DeviceAliases("alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"A1"}, aliases)

	seed, err := b.Secrets.IsSeed("alice")
	require.NoError(t, err)
	assert.True(t, seed)

	notes, err := b.Notes.Notes("alice")
	require.NoError(t, err)
	assert.Empty(t, notes)
	_, err = b.Notes.AddNote("alice", "c")
	assert.NoError(t, err, "first registration allocates note storage")
}

func TestRegisterDeviceAliasPolicy(t *testing.T) {
	b := NewBackend(0)
	require.NoError(t, b.Devices.RegisterDevice("alice", "A1", "pk1"))

	t.Run("same key is idempotent", func(t *testing.T) {
		assert.NoError(t, b.Devices.RegisterDevice("alice", "A1", "pk1"))
	})

	t.Run("different key is rejected", func(t *testing.T) {
		err := b.Devices.RegisterDevice("alice", "A1", "pk2")
		assert.ErrorIs(t, err, store.ErrAliasAlreadyRegistered)

		devices, err := b.Devices.Devices("alice")
		require.NoError(t, err)
		assert.Equal(t, []store.Device{{Alias: "A1", PublicKey: "pk1"}}, devices)
	})

	t.Run("key reuse across aliases", func(t *testing.T) {
		assert.NoError(t, b.Devices.RegisterDevice("alice", "A2", "pk1"))
	})

	t.Run("empty arguments", func(t *testing.T) {
		assert.ErrorIs(t, b.Devices.RegisterDevice("alice", "", "pk"), store.ErrInvalidArgument)
		assert.ErrorIs(t, b.Devices.RegisterDevice("alice", "A3", ""), store.ErrInvalidArgument)
	})
}

func TestDeviceAliasesSorted(t *testing.T) {
	b := NewBackend(0)
	require.NoError(t, b.Devices.RegisterDevice("alice", "phone", "pk2"))
	require.NoError(t, b.Devices.RegisterDevice("alice", "laptop", "pk1"))
	require.NoError(t, b.Devices.RegisterDevice("alice", "tablet", "pk3"))

	aliases, err := b.Devices.DeviceAliases("alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"laptop", "phone", "tablet"}, aliases)

	aliases, err = b.Devices.DeviceAliases("bob")
	require.NoError(t, err)
	assert.Empty(t, aliases)
}

func TestDeleteDevice(t *testing.T) {
	b := NewBackend(0)
	require.NoError(t, b.Devices.RegisterDevice("alice", "A1", "pk1"))
	require.NoError(t, b.Devices.RegisterDevice("alice", "A2", "pk2"))
	require.NoError(t, b.Secrets.UploadSeedSecret("alice", "pk1", "s1"))
	require.NoError(t, b.Secrets.UploadEncryptedSecrets("alice", []store.SecretEntry{{PublicKey: "pk2", EncryptedSecret: "s2"}}))

	require.NoError(t, b.Devices.DeleteDevice("alice", "A2"))

	aliases, err := b.Devices.DeviceAliases("alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"A1"}, aliases)

	_, err = b.Secrets.EncryptedSecret("alice", "pk2")
	assert.ErrorIs(t, err, store.ErrUnknownPublicKey)
	secret, err := b.Secrets.EncryptedSecret("alice", "pk1")
	require.NoError(t, err)
	assert.Equal(t, "s1", secret)
}

func TestDeleteDeviceSharedKeyKeepsEntry(t *testing.T) {
	b := NewBackend(0)
	require.NoError(t, b.Devices.RegisterDevice("alice", "A1", "pk1"))
	require.NoError(t, b.Devices.RegisterDevice("alice", "A2", "pk1"))
	require.NoError(t, b.Secrets.UploadSeedSecret("alice", "pk1", "s1"))

	require.NoError(t, b.Devices.DeleteDevice("alice", "A2"))

	secret, err := b.Secrets.EncryptedSecret("alice", "pk1")
	require.NoError(t, err)
	assert.Equal(t, "s1", secret)
}

func TestDeleteDeviceNoops(t *testing.T) {
	b := NewBackend(0)
	assert.NoError(t, b.Devices.DeleteDevice("nobody", "A1"))

	require.NoError(t, b.Devices.RegisterDevice("alice", "A1", "pk1"))
	assert.NoError(t, b.Devices.DeleteDevice("alice", "missing"))
}

func TestDeleteLastDevicePanics(t *testing.T) {
	b := NewBackend(0)
	require.NoError(t, b.Devices.RegisterDevice("alice", "A1", "pk1"))
	require.NoError(t, b.Secrets.UploadSeedSecret("alice", "pk1", "s1"))
	before := b.Snapshot()

	func() {
		defer func() {
			assert.True(t, store.IsInvariantViolation(recover()))
		}()
		_ = b.Devices.DeleteDevice("alice", "A1")
		t.Fatal("expected panic")
	}()

	assert.Equal(t, before, b.Snapshot())

	// The lock must have been released by the panic.
	ok, err := b.Devices.IsRegistered("alice")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIsRegistered(t *testing.T) {
	b := NewBackend(0)
	ok, err := b.Devices.IsRegistered("alice")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, b.Devices.RegisterDevice("alice", "A1", "pk1"))
	ok, err = b.Devices.IsRegistered("alice")
	require.NoError(t, err)
	assert.True(t, ok)
}
