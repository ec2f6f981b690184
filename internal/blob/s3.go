package blob

import (
	"context"

	infraS3 "traitcore/internal/infra/blob/s3"
)

// S3Config aliases the infra S3 configuration so callers stay on the facade.
type S3Config = infraS3.Config

// NewS3 builds an S3-backed Store from cfg.
func NewS3(ctx context.Context, cfg S3Config) (Store, error) {
	return infraS3.New(ctx, cfg)
}

// OpenFromEnv builds an S3 store from the TRAITCORE_BLOB_S3_* environment variables.
func OpenFromEnv(ctx context.Context) (Store, error) {
	return infraS3.OpenFromEnv(ctx)
}

// NewMockS3ForTests exposes the in-memory S3 mock to cross-package tests.
func NewMockS3ForTests() Store { return infraS3.NewMockForTests() }
