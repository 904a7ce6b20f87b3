// Package store defines the persistence interfaces for the editorial
// back office and shared helpers (transactions, common errors) used by
// their PostgreSQL implementations in internal/platform/postgres.
package store
