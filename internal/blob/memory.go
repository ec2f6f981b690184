package blob

import (
	memorystore "traitcore/internal/infra/blob/memory"
)

// NewMemory returns a Store holding objects in process memory.
func NewMemory() Store { return memorystore.New() }
