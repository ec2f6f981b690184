// Package blob re-exports core blob abstractions for stable internal imports.
// Call sites depend on blob.Store; the infra-backed constructors live behind
// this facade so backends can evolve without touching consumers.
package blob

import (
	"traitcore/internal/blob/core"
)

type (
	// Driver names a blob backend.
	Driver = core.Driver
	// PutOptions carries optional metadata for a blob write.
	PutOptions = core.PutOptions
	// SignedURLOptions controls pre-signed URL generation.
	SignedURLOptions = core.SignedURLOptions
	// Info is the metadata returned for a stored object.
	Info = core.Info
	// Store is the backend-neutral blob interface.
	Store = core.Store
)

const (
	// DriverFilesystem selects the local filesystem backend.
	DriverFilesystem = core.DriverFilesystem
	// DriverS3 selects the S3-compatible backend.
	DriverS3 = core.DriverS3
	// DriverMemory selects the in-memory backend used in tests.
	DriverMemory = core.DriverMemory
)

// ErrUnsupported reports that a backend does not implement an operation.
var ErrUnsupported = core.ErrUnsupported
