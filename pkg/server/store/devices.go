package store

// Device is a registered (alias, public key) pair.
type Device struct {
	Alias     string `json:"alias"`
	PublicKey string `json:"public_key"`
}

// FirstDeviceListener is told when a principal registers its first device.
// It is the only coupling between the device registry and the note store.
type FirstDeviceListener interface {
	OnFirstDeviceRegistered(principal string) error
}

// DevicesStore abstracts the device registry
type DevicesStore interface {
	// RegisterDevice adds alias for principal. Re-registering an alias with the
	// same public key is a no-op; with a different key it returns
	// ErrAliasAlreadyRegistered and leaves the existing key in place.
	RegisterDevice(principal, alias, publicKey string) error

	// DeviceAliases lists the principal's aliases in sorted order.
	// Unknown principals yield an empty slice.
	DeviceAliases(principal string) ([]string, error)

	// Devices lists the principal's (alias, public key) pairs sorted by alias.
	Devices(principal string) ([]Device, error)

	// DeleteDevice removes alias and, unless another alias shares its key,
	// the ledger entry for its public key. Unknown principals or aliases are a
	// no-op. Deleting the last alias panics with an InvariantViolation.
	DeleteDevice(principal, alias string) error

	// IsRegistered reports whether principal has a device record.
	IsRegistered(principal string) (bool, error)
}
