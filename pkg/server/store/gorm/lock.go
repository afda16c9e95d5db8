package gorm

import (
	"gorm.io/gorm"
)

// lockPrincipal serializes transactions touching the same principal until tx ends.
func lockPrincipal(tx *gorm.DB, principal string) error {
	return tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", principal).Error
}

// publicKeys returns the principal's distinct registered keys.
func publicKeys(tx *gorm.DB, principal string) (map[string]struct{}, error) {
	var keys []string
	if err := tx.Table("devices").Where("principal = ?", principal).Pluck("public_key", &keys).Error; err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set, nil
}
