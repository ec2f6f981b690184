package sqlite

import (
	"strings"
	"testing"

	"traitcore/testutil"
)

// The sqlite wrapper may reach the domain contract, the in-memory store it
// decorates, and the embedded DDL bundle. Anything further is drift.
func TestStoreDependencySurface(t *testing.T) {
	allowed := map[string]bool{
		"traitcore/pkg/domain":                        true,
		"traitcore/internal/infra/persistence/memory": true,
		"traitcore/docs/schema/sql":                   true,
	}
	testutil.AssertNoDirectImports(t, ".", func(path string) bool {
		return strings.HasPrefix(path, "traitcore/") && !allowed[path]
	}, "sqlite store dependency surface is fixed")
}
