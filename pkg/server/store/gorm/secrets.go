package gorm

import (
	"errors"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/model"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server/store"
)

// Ensure SecretsStore implements store.SecretsStore
var _ store.SecretsStore = (*SecretsStore)(nil)

// SecretsStore implements store.SecretsStore using GORM
type SecretsStore struct {
	db *gorm.DB
}

// NewSecretsStore creates a new SecretsStore
func NewSecretsStore(db *gorm.DB) *SecretsStore {
	return &SecretsStore{db: db}
}

func countEntries(tx *gorm.DB, principal string) (int64, error) {
	var count int64
	err := tx.Model(&model.SecretEntry{}).Where("principal = ?", principal).Count(&count).Error
	return count, err
}

// IsSeed reports whether the ledger is empty.
func (s *SecretsStore) IsSeed(principal string) (bool, error) {
	var seed bool
	err := s.read(principal, func(tx *gorm.DB) error {
		keys, err := publicKeys(tx, principal)
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			return store.ErrDeviceNotRegistered
		}
		count, err := countEntries(tx, principal)
		seed = count == 0
		return err
	})
	return seed, err
}

// read runs fn in a transaction holding the principal's lock, so the device
// and ledger queries observe the same state.
func (s *SecretsStore) read(principal string, fn func(tx *gorm.DB) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockPrincipal(tx, principal); err != nil {
			return err
		}
		return fn(tx)
	})
}

// UploadSeedSecret stores the first ledger entry.
func (s *SecretsStore) UploadSeedSecret(principal, publicKey, encryptedSecret string) error {
	if err := store.RequireNonEmpty("public_key", publicKey, "encrypted_secret", encryptedSecret); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockPrincipal(tx, principal); err != nil {
			return err
		}
		keys, err := publicKeys(tx, principal)
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			return store.ErrDeviceNotRegistered
		}
		if _, ok := keys[publicKey]; !ok {
			return fmt.Errorf("%w: %q", store.ErrUnknownPublicKey, publicKey)
		}
		count, err := countEntries(tx, principal)
		if err != nil {
			return err
		}
		if count > 0 {
			return store.ErrAlreadyRegistered
		}
		return tx.Exec(
			"INSERT INTO secret_entries (principal, public_key, encrypted_secret) VALUES (?, ?, ?)",
			principal, publicKey, encryptedSecret,
		).Error
	})
}

// UploadEncryptedSecrets inserts entries for new keys; the whole batch fails on an unknown key.
func (s *SecretsStore) UploadEncryptedSecrets(principal string, entries []store.SecretEntry) error {
	for _, e := range entries {
		if err := store.RequireNonEmpty("public_key", e.PublicKey, "encrypted_secret", e.EncryptedSecret); err != nil {
			return err
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockPrincipal(tx, principal); err != nil {
			return err
		}
		keys, err := publicKeys(tx, principal)
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			return store.ErrDeviceNotRegistered
		}
		for _, e := range entries {
			if _, ok := keys[e.PublicKey]; !ok {
				return fmt.Errorf("%w: %q", store.ErrUnknownPublicKey, e.PublicKey)
			}
		}
		for _, e := range entries {
			err := tx.Exec(
				"INSERT INTO secret_entries (principal, public_key, encrypted_secret) VALUES (?, ?, ?) ON CONFLICT DO NOTHING",
				principal, e.PublicKey, e.EncryptedSecret,
			).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// UnsyncedPublicKeys lists registered keys without an entry.
func (s *SecretsStore) UnsyncedPublicKeys(principal string) ([]string, error) {
	unsynced := []string{}
	err := s.read(principal, func(tx *gorm.DB) error {
		keys, err := publicKeys(tx, principal)
		if err != nil {
			return err
		}
		var synced []string
		if err := tx.Table("secret_entries").Where("principal = ?", principal).Pluck("public_key", &synced).Error; err != nil {
			return err
		}
		for _, k := range synced {
			delete(keys, k)
		}
		for k := range keys {
			unsynced = append(unsynced, k)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(unsynced)
	return unsynced, nil
}

// EncryptedSecret fetches the entry for publicKey.
func (s *SecretsStore) EncryptedSecret(principal, publicKey string) (string, error) {
	var secret string
	err := s.read(principal, func(tx *gorm.DB) error {
		keys, err := publicKeys(tx, principal)
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			return store.ErrDeviceNotRegistered
		}
		if _, ok := keys[publicKey]; !ok {
			return fmt.Errorf("%w: %q", store.ErrUnknownPublicKey, publicKey)
		}

		var entry model.SecretEntry
		err = tx.Where("principal = ? AND public_key = ?", principal, publicKey).First(&entry).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return store.ErrKeyNotSynchronized
		}
		secret = entry.EncryptedSecret
		return err
	})
	if err != nil {
		return "", err
	}
	return secret, nil
}

// SyncState derives the distribution state from key and entry counts.
func (s *SecretsStore) SyncState(principal string) (model.SyncState, error) {
	state := model.SyncStateUnseeded
	err := s.read(principal, func(tx *gorm.DB) error {
		keys, err := publicKeys(tx, principal)
		if err != nil {
			return err
		}
		count, err := countEntries(tx, principal)
		if err != nil {
			return err
		}
		state = model.SyncStateOf(len(keys), int(count))
		return nil
	})
	if err != nil {
		return model.SyncStateUnseeded, err
	}
	return state, nil
}
