package store

import (
	"errors"
	"fmt"
)

// ErrDeviceNotRegistered is returned when the principal has no device record.
var ErrDeviceNotRegistered = errors.New("device not registered")

// ErrUnknownPublicKey is returned when a public key is not one of the principal's registered keys.
var ErrUnknownPublicKey = errors.New("unknown public key")

// ErrKeyNotSynchronized is returned when a registered key has no encrypted secret yet.
var ErrKeyNotSynchronized = errors.New("key not synchronized")

// ErrAlreadyRegistered is returned when a seed secret is uploaded for a seeded ledger.
var ErrAlreadyRegistered = errors.New("secret already registered")

// ErrAliasAlreadyRegistered is returned when an alias is re-registered with a different public key.
var ErrAliasAlreadyRegistered = errors.New("device alias already registered")

// ErrInvalidArgument is returned for empty aliases, keys or secrets.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrNoteNotFound is returned when the principal owns no note with the requested id.
var ErrNoteNotFound = errors.New("note not found")

// ErrNoteTooLarge is returned when a note exceeds the configured size limit.
var ErrNoteTooLarge = errors.New("note too large")

// InvariantViolation is the panic value raised when a caller bypassed a
// required pre-check. It is never returned as an error.
type InvariantViolation struct {
	Op        string
	Principal string
	Reason    string
}

func (v InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation in %s for %q: %s", v.Op, v.Principal, v.Reason)
}

// Violate panics with an InvariantViolation.
func Violate(op, principal, reason string) {
	panic(InvariantViolation{Op: op, Principal: principal, Reason: reason})
}

// IsInvariantViolation reports whether a recovered panic value is an InvariantViolation.
func IsInvariantViolation(recovered interface{}) bool {
	_, ok := recovered.(InvariantViolation)
	return ok
}

// RequireNonEmpty returns ErrInvalidArgument naming the first empty field.
// Fields are given as name, value pairs.
func RequireNonEmpty(fields ...string) error {
	for i := 0; i+1 < len(fields); i += 2 {
		if fields[i+1] == "" {
			return fmt.Errorf("%w: %s must not be empty", ErrInvalidArgument, fields[i])
		}
	}
	return nil
}

// CheckNoteSize returns ErrNoteTooLarge when ciphertext exceeds limit bytes.
// A limit of zero disables the check.
func CheckNoteSize(ciphertext string, limit int) error {
	if limit > 0 && len(ciphertext) > limit {
		return fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrNoteTooLarge, len(ciphertext), limit)
	}
	return nil
}
