// Package gorm provides GORM-based implementations of the store interfaces
// defined in the parent store package.
//
// This package contains concrete implementations that use GORM for database
// operations against Postgres. The interfaces they implement are defined in
// pkg/server/store.
//
// Every mutating operation runs in one transaction that first takes a
// transaction-scoped advisory lock on the principal, so concurrent calls for
// the same principal are serialized while different principals proceed in
// parallel.
package gorm
