package blob

import (
	"traitcore/internal/infra/blob/fs"
)

// NewFilesystem builds a Store rooted at the given directory. It returns the
// interface so call sites never touch the concrete backend.
func NewFilesystem(root string) (Store, error) {
	return fs.New(root)
}
