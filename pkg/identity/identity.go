package identity

import (
	"context"
	"errors"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// Key is the context key for the caller's Principal.
	Key ContextKey = "principal"
)

// Anonymous is the principal assigned to callers that did not authenticate.
const Anonymous Principal = "2vxsx-fae"

// ErrAnonymousCaller is returned when the caller is missing or anonymous.
var ErrAnonymousCaller = errors.New("anonymous caller is not allowed")

// Principal is the opaque, already-verified identity of a caller. It is the
// unit of ownership for devices, secrets and notes.
type Principal string

func (p Principal) String() string {
	return string(p)
}

// IsAnonymous reports whether p is empty or the anonymous sentinel.
func (p Principal) IsAnonymous() bool {
	return p == "" || p == Anonymous
}

// Resolve returns the caller stored on ctx. It fails with
// ErrAnonymousCaller when no principal was set or the principal is Anonymous.
func Resolve(ctx context.Context) (Principal, error) {
	p, ok := Get(ctx)
	if !ok || p.IsAnonymous() {
		return "", ErrAnonymousCaller
	}
	return p, nil
}

// Get retrieves the Principal from context.
func Get(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(Key).(Principal)
	return p, ok
}

// Set stores the Principal in context.
func Set(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, Key, p)
}
