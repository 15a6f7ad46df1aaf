package testsupport

import (
	"testing"

	"reelcat/internal/catalog"
	"reelcat/internal/config"
)

// MustOpenCatalog opens a catalog for tests and registers cleanup.
func MustOpenCatalog(t testing.TB, cfg *config.Config) *catalog.Catalog {
	t.Helper()

	cat, err := catalog.Open(cfg.DatabasePath())
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		cat.Close()
	})
	return cat
}
