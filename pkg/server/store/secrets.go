package store

import "github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/model"

// SecretEntry is the note key encrypted for one device public key.
type SecretEntry struct {
	PublicKey       string `json:"public_key"`
	EncryptedSecret string `json:"encrypted_secret"`
}

// SecretsStore abstracts the secret distribution ledger
type SecretsStore interface {
	// IsSeed reports whether no device of principal holds the secret yet.
	// Returns ErrDeviceNotRegistered for unknown principals.
	IsSeed(principal string) (bool, error)

	// UploadSeedSecret stores the first ledger entry. It is valid exactly once
	// per principal; afterwards it returns ErrAlreadyRegistered.
	UploadSeedSecret(principal, publicKey, encryptedSecret string) error

	// UploadEncryptedSecrets pushes the secret to newly joined devices. The
	// batch is all-or-nothing: the first unknown key aborts it with
	// ErrUnknownPublicKey. Existing entries are never overwritten.
	UploadEncryptedSecrets(principal string, entries []SecretEntry) error

	// UnsyncedPublicKeys lists registered keys without a ledger entry, sorted.
	UnsyncedPublicKeys(principal string) ([]string, error)

	// EncryptedSecret returns the ledger entry for publicKey.
	// Returns ErrDeviceNotRegistered, ErrUnknownPublicKey or ErrKeyNotSynchronized.
	EncryptedSecret(principal, publicKey string) (string, error)

	// SyncState reports how far the secret has been distributed.
	SyncState(principal string) (model.SyncState, error)
}
