// Package catalog is the entry point to save catalog backends. Callers
// depend on catalog.Catalog and open a backend with Open.
package catalog

import "extframe/internal/catalog/core"

type (
	// Entry describes one stored save.
	Entry = core.Entry
	// Catalog indexes saves.
	Catalog = core.Catalog
	// Driver identifies a catalog backend.
	Driver = core.Driver
)

const (
	// DriverMemory keeps entries in process memory.
	DriverMemory = core.DriverMemory
	// DriverSQLite snapshots entries into SQLite.
	DriverSQLite = core.DriverSQLite
	// DriverPostgres snapshots entries into Postgres.
	DriverPostgres = core.DriverPostgres
)

var (
	// ErrNotFound reports an unknown entry.
	ErrNotFound = core.ErrNotFound
	// ErrExists reports a duplicate entry ID.
	ErrExists = core.ErrExists
)
