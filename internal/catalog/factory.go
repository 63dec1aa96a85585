package catalog

import (
	"context"
	"fmt"

	"extframe/internal/infra/catalog/memory"
	"extframe/internal/infra/catalog/postgres"
	"extframe/internal/infra/catalog/sqlite"
	"extframe/internal/platform/config"
)

// Open selects a Catalog from the catalog section of the process
// configuration.
func Open(ctx context.Context, cfg config.Catalog) (Catalog, error) {
	switch Driver(cfg.Driver) {
	case DriverMemory, "":
		return memory.New(), nil
	case DriverSQLite:
		return sqlite.New(ctx, cfg.DSN)
	case DriverPostgres:
		return postgres.New(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown catalog driver %q", cfg.Driver)
	}
}
