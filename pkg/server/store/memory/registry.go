package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server/store"
)

var _ store.DevicesStore = (*Registry)(nil)

// Registry is the device registry: principal -> alias -> public key.
type Registry struct {
	mu       sync.RWMutex
	devices  map[string]map[string]string
	ledger   *Ledger
	listener store.FirstDeviceListener
}

// NewRegistry returns an empty registry that reports first registrations to listener.
func NewRegistry(listener store.FirstDeviceListener) *Registry {
	return &Registry{
		devices:  map[string]map[string]string{},
		listener: listener,
	}
}

func (r *Registry) RegisterDevice(principal, alias, publicKey string) error {
	if err := store.RequireNonEmpty("alias", alias, "public_key", publicKey); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	aliases, ok := r.devices[principal]
	if !ok {
		if r.listener != nil {
			if err := r.listener.OnFirstDeviceRegistered(principal); err != nil {
				return fmt.Errorf("allocate note storage: %w", err)
			}
		}
		r.devices[principal] = map[string]string{alias: publicKey}
		return nil
	}

	if existing, taken := aliases[alias]; taken {
		if existing == publicKey {
			return nil
		}
		return fmt.Errorf("%w: %q", store.ErrAliasAlreadyRegistered, alias)
	}
	aliases[alias] = publicKey
	return nil
}

func (r *Registry) DeviceAliases(principal string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	aliases := make([]string, 0, len(r.devices[principal]))
	for alias := range r.devices[principal] {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	return aliases, nil
}

func (r *Registry) Devices(principal string) ([]store.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.devicesLocked(principal), nil
}

func (r *Registry) devicesLocked(principal string) []store.Device {
	devices := make([]store.Device, 0, len(r.devices[principal]))
	for alias, key := range r.devices[principal] {
		devices = append(devices, store.Device{Alias: alias, PublicKey: key})
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].Alias < devices[j].Alias })
	return devices
}

func (r *Registry) DeleteDevice(principal, alias string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	aliases, ok := r.devices[principal]
	if !ok {
		return nil
	}
	key, ok := aliases[alias]
	if !ok {
		return nil
	}
	if len(aliases) == 1 {
		store.Violate("DeleteDevice", principal, "cannot delete the last registered device")
	}

	delete(aliases, alias)
	for _, other := range aliases {
		if other == key {
			return nil
		}
	}
	if r.ledger != nil {
		r.ledger.drop(principal, key)
	}
	return nil
}

func (r *Registry) IsRegistered(principal string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.devices[principal]
	return ok, nil
}

// keysLocked returns the principal's distinct public keys. Callers hold r.mu.
func (r *Registry) keysLocked(principal string) (map[string]struct{}, bool) {
	aliases, ok := r.devices[principal]
	if !ok {
		return nil, false
	}
	keys := make(map[string]struct{}, len(aliases))
	for _, key := range aliases {
		keys[key] = struct{}{}
	}
	return keys, true
}
