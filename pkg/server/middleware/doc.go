// Package middleware provides HTTP middleware for the notes API.
//
// TokenAuthenticator turns an `Authorization: Bearer <jwt>` header into a
// principal on the request context. Requests without a header proceed as the
// anonymous principal and are rejected by identity.Resolve further down.
// RequireRegistered rejects principals that have not registered a device.
package middleware
