package blob

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Environment keys consulted by Open.
const (
	envDriver = "TRAITCORE_BLOB_DRIVER"
	envFSRoot = "TRAITCORE_BLOB_FS_ROOT"
)

// Open builds the Store named by TRAITCORE_BLOB_DRIVER (fs, s3 or memory).
// An unset driver falls back to fs rooted at TRAITCORE_BLOB_FS_ROOT. The s3
// backend documents its own variables.
func Open(ctx context.Context) (Store, error) {
	name := strings.TrimSpace(os.Getenv(envDriver))
	if name == "" {
		name = string(DriverFilesystem)
	}
	switch Driver(name) {
	case DriverFilesystem:
		return NewFilesystem(os.Getenv(envFSRoot))
	case DriverS3:
		return OpenFromEnv(ctx)
	case DriverMemory:
		return NewMemory(), nil
	}
	return nil, fmt.Errorf("blob driver %q is not known", name)
}
