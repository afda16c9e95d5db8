package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/model"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server/store"
)

var _ store.SecretsStore = (*Ledger)(nil)

// Ledger is the secret distribution ledger: principal -> public key -> encrypted secret.
// Every operation holds the registry read lock so it sees a stable set of keys.
type Ledger struct {
	mu       sync.Mutex
	entries  map[string]map[string]string
	registry *Registry
}

// NewLedger returns an empty ledger validating keys against registry.
func NewLedger(registry *Registry) *Ledger {
	return &Ledger{
		entries:  map[string]map[string]string{},
		registry: registry,
	}
}

func (l *Ledger) lock() func() {
	l.registry.mu.RLock()
	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		l.registry.mu.RUnlock()
	}
}

func (l *Ledger) IsSeed(principal string) (bool, error) {
	defer l.lock()()

	if _, ok := l.registry.devices[principal]; !ok {
		return false, store.ErrDeviceNotRegistered
	}
	return len(l.entries[principal]) == 0, nil
}

func (l *Ledger) UploadSeedSecret(principal, publicKey, encryptedSecret string) error {
	if err := store.RequireNonEmpty("public_key", publicKey, "encrypted_secret", encryptedSecret); err != nil {
		return err
	}
	defer l.lock()()

	keys, ok := l.registry.keysLocked(principal)
	if !ok {
		return store.ErrDeviceNotRegistered
	}
	if _, ok := keys[publicKey]; !ok {
		return fmt.Errorf("%w: %q", store.ErrUnknownPublicKey, publicKey)
	}
	if len(l.entries[principal]) > 0 {
		return store.ErrAlreadyRegistered
	}
	l.entries[principal] = map[string]string{publicKey: encryptedSecret}
	return nil
}

func (l *Ledger) UploadEncryptedSecrets(principal string, entries []store.SecretEntry) error {
	for _, e := range entries {
		if err := store.RequireNonEmpty("public_key", e.PublicKey, "encrypted_secret", e.EncryptedSecret); err != nil {
			return err
		}
	}
	defer l.lock()()

	keys, ok := l.registry.keysLocked(principal)
	if !ok {
		return store.ErrDeviceNotRegistered
	}
	for _, e := range entries {
		if _, ok := keys[e.PublicKey]; !ok {
			return fmt.Errorf("%w: %q", store.ErrUnknownPublicKey, e.PublicKey)
		}
	}
	if len(entries) == 0 {
		return nil
	}

	ledger, ok := l.entries[principal]
	if !ok {
		ledger = map[string]string{}
		l.entries[principal] = ledger
	}
	for _, e := range entries {
		if _, exists := ledger[e.PublicKey]; exists {
			continue
		}
		ledger[e.PublicKey] = e.EncryptedSecret
	}
	return nil
}

func (l *Ledger) UnsyncedPublicKeys(principal string) ([]string, error) {
	defer l.lock()()

	keys, _ := l.registry.keysLocked(principal)
	unsynced := make([]string, 0, len(keys))
	for key := range keys {
		if _, ok := l.entries[principal][key]; !ok {
			unsynced = append(unsynced, key)
		}
	}
	sort.Strings(unsynced)
	return unsynced, nil
}

func (l *Ledger) EncryptedSecret(principal, publicKey string) (string, error) {
	defer l.lock()()

	keys, ok := l.registry.keysLocked(principal)
	if !ok {
		return "", store.ErrDeviceNotRegistered
	}
	if _, ok := keys[publicKey]; !ok {
		return "", fmt.Errorf("%w: %q", store.ErrUnknownPublicKey, publicKey)
	}
	secret, ok := l.entries[principal][publicKey]
	if !ok {
		return "", store.ErrKeyNotSynchronized
	}
	return secret, nil
}

func (l *Ledger) SyncState(principal string) (model.SyncState, error) {
	defer l.lock()()

	keys, _ := l.registry.keysLocked(principal)
	return model.SyncStateOf(len(keys), len(l.entries[principal])), nil
}

// drop removes the entry for publicKey. The caller holds the registry write lock.
func (l *Ledger) drop(principal, publicKey string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ledger, ok := l.entries[principal]
	if !ok {
		return
	}
	delete(ledger, publicKey)
	if len(ledger) == 0 {
		delete(l.entries, principal)
	}
}
