// Package endpoints registers the REST handlers of the notes API.
//
// Every route authenticates the bearer token. All routes except device
// registration additionally require the caller to have registered a device.
// Store errors map to HTTP statuses in one place (writeStoreError), and the
// error body is always {"error":{"code":"...","message":"..."}}.
package endpoints
