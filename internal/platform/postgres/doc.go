// Package postgres contains the PostgreSQL implementations of the store
// interfaces defined in internal/store. Every store accepts a store.DBTX
// so it can run against a plain connection or a transaction.
package postgres
