package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"extframe/internal/platform/config"
)

func TestOpenDrivers(t *testing.T) {
	ctx := context.Background()
	mem, err := Open(ctx, config.Catalog{})
	if err != nil || mem.Driver() != DriverMemory {
		t.Fatalf("expected memory catalog, got %v", err)
	}
	db, err := Open(ctx, config.Catalog{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "c.db")})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer func() { _ = db.Close() }()
	if db.Driver() != DriverSQLite {
		t.Fatalf("unexpected driver %s", db.Driver())
	}
	if _, err := Open(ctx, config.Catalog{Driver: "csv"}); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
