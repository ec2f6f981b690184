package memory

import (
	"strings"
	"testing"

	"traitcore/testutil"
)

// The in-memory store depends on the domain contract alone; heavier wiring
// belongs to the sqlite and postgres wrappers.
func TestStoreDependsOnDomainOnly(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", func(path string) bool {
		return strings.HasPrefix(path, "traitcore/") && path != "traitcore/pkg/domain"
	}, "memory store stays on the domain contract")
}
