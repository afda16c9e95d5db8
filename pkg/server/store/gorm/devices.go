package gorm

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/model"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server/store"
)

// Ensure DevicesStore implements store.DevicesStore
var _ store.DevicesStore = (*DevicesStore)(nil)

// txListener is a FirstDeviceListener that can join the registering transaction.
type txListener interface {
	onFirstDevice(tx *gorm.DB, principal string) error
}

// DevicesStore implements store.DevicesStore using GORM
type DevicesStore struct {
	db       *gorm.DB
	listener store.FirstDeviceListener
}

// NewDevicesStore creates a new DevicesStore. listener is told about first registrations.
func NewDevicesStore(db *gorm.DB, listener store.FirstDeviceListener) *DevicesStore {
	return &DevicesStore{db: db, listener: listener}
}

// RegisterDevice adds an alias, allocating note storage on the first one.
func (s *DevicesStore) RegisterDevice(principal, alias, publicKey string) error {
	if err := store.RequireNonEmpty("alias", alias, "public_key", publicKey); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockPrincipal(tx, principal); err != nil {
			return err
		}

		var devices []model.Device
		if err := tx.Where("principal = ?", principal).Find(&devices).Error; err != nil {
			return err
		}

		if len(devices) == 0 {
			if err := s.notifyFirstDevice(tx, principal); err != nil {
				return fmt.Errorf("allocate note storage: %w", err)
			}
		}
		for _, d := range devices {
			if d.Alias != alias {
				continue
			}
			if d.PublicKey == publicKey {
				return nil
			}
			return fmt.Errorf("%w: %q", store.ErrAliasAlreadyRegistered, alias)
		}

		return tx.Exec(
			"INSERT INTO devices (principal, alias, public_key) VALUES (?, ?, ?)",
			principal, alias, publicKey,
		).Error
	})
}

func (s *DevicesStore) notifyFirstDevice(tx *gorm.DB, principal string) error {
	switch l := s.listener.(type) {
	case nil:
		return nil
	case txListener:
		return l.onFirstDevice(tx, principal)
	default:
		return l.OnFirstDeviceRegistered(principal)
	}
}

// DeviceAliases lists aliases in sorted order.
func (s *DevicesStore) DeviceAliases(principal string) ([]string, error) {
	aliases := []string{}
	err := s.db.Table("devices").Where("principal = ?", principal).Order("alias").Pluck("alias", &aliases).Error
	if err != nil {
		return nil, err
	}
	return aliases, nil
}

// Devices lists (alias, public key) pairs sorted by alias.
func (s *DevicesStore) Devices(principal string) ([]store.Device, error) {
	var rows []model.Device
	if err := s.db.Where("principal = ?", principal).Order("alias").Find(&rows).Error; err != nil {
		return nil, err
	}
	devices := make([]store.Device, 0, len(rows))
	for _, d := range rows {
		devices = append(devices, store.Device{Alias: d.Alias, PublicKey: d.PublicKey})
	}
	return devices, nil
}

// DeleteDevice removes an alias and its unshared ledger entry.
func (s *DevicesStore) DeleteDevice(principal, alias string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockPrincipal(tx, principal); err != nil {
			return err
		}

		var devices []model.Device
		if err := tx.Where("principal = ?", principal).Find(&devices).Error; err != nil {
			return err
		}

		key, found, shared := "", false, false
		for _, d := range devices {
			if d.Alias == alias {
				key, found = d.PublicKey, true
			}
		}
		if !found {
			return nil
		}
		if len(devices) == 1 {
			store.Violate("DeleteDevice", principal, "cannot delete the last registered device")
		}
		for _, d := range devices {
			if d.Alias != alias && d.PublicKey == key {
				shared = true
			}
		}

		if err := tx.Exec("DELETE FROM devices WHERE principal = ? AND alias = ?", principal, alias).Error; err != nil {
			return err
		}
		if shared {
			return nil
		}
		return tx.Exec("DELETE FROM secret_entries WHERE principal = ? AND public_key = ?", principal, key).Error
	})
}

// IsRegistered reports whether the principal has any device.
func (s *DevicesStore) IsRegistered(principal string) (bool, error) {
	var count int64
	if err := s.db.Model(&model.Device{}).Where("principal = ?", principal).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
