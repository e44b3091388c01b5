// Package postgres provides the PostgreSQL implementation of the storage
// interfaces defined in internal/store. It handles query execution, data
// mapping between store records and database rows, and translation of
// driver errors into the store package's sentinel errors.
package postgres
