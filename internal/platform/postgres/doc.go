// Package postgres provides PostgreSQL implementations of the persistence
// interfaces defined in internal/store.
package postgres
