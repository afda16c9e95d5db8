package model

import "time"

// Device is a device alias registered by a principal together with the
// public key the device generated.
type Device struct {
	Principal string    `gorm:"column:principal;primaryKey"`
	Alias     string    `gorm:"column:alias;primaryKey"`
	PublicKey string    `gorm:"column:public_key"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Device) TableName() string {
	return "devices"
}

// SecretEntry holds the note key encrypted under one of a principal's
// device public keys.
type SecretEntry struct {
	Principal       string    `gorm:"column:principal;primaryKey"`
	PublicKey       string    `gorm:"column:public_key;primaryKey"`
	EncryptedSecret string    `gorm:"column:encrypted_secret"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (SecretEntry) TableName() string {
	return "secret_entries"
}
