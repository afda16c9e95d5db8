// Package identity is the gate every request passes before it may touch
// device, secret or note state.
//
// The transport layer authenticates the caller and stores the resulting
// principal on the request context. The core only asks one question of it:
// is there a principal, and is it someone other than the anonymous caller?
//
// # Basic Usage
//
//	// Transport, after verifying a token
//	ctx = identity.Set(ctx, identity.Principal(claims.Subject))
//
//	// Core entry point
//	principal, err := identity.Resolve(ctx)
//	if errors.Is(err, identity.ErrAnonymousCaller) {
//	    // reject before reading any state
//	}
//
// # Anonymous Principal
//
// Anonymous is the reserved textual principal that an unauthenticated
// caller is assigned by the hosting platform. It is a valid token for the
// transport but never a valid owner of devices or notes.
package identity
