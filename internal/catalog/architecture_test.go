package catalog

import (
	"sort"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// TestOnlyCatalogPackageImportsInfra keeps the catalog drivers behind catalog.Open.
func TestOnlyCatalogPackageImportsInfra(t *testing.T) {
	const infraPrefix = "extframe/internal/infra/catalog"

	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports, Tests: true}
	pkgs, err := packages.Load(cfg, "extframe/...")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}

	var violations []string
	for _, pkg := range pkgs {
		if underPrefix(pkg.PkgPath, "extframe/internal/catalog") || underPrefix(pkg.PkgPath, infraPrefix) {
			continue
		}
		for importPath := range pkg.Imports {
			if underPrefix(importPath, infraPrefix) {
				violations = append(violations, pkg.PkgPath+": "+importPath)
			}
		}
	}
	sort.Strings(violations)
	for _, v := range violations {
		t.Errorf("forbidden import of infra catalog package: %s", v)
	}
	if len(violations) > 0 {
		t.Fatalf("found %d forbidden imports of infra catalog packages", len(violations))
	}
}

func underPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
