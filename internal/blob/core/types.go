// Package core defines the abstractions shared by blob storage backends.
// Higher layers depend on these types through the internal/blob facade.
package core

import (
	"context"
	"errors"
	"io"
	"time"
)

// Driver names a blob backend selectable at runtime.
type Driver string

const (
	// DriverFilesystem keeps blobs under a local directory. Default in dev.
	DriverFilesystem Driver = "fs"
	// DriverS3 targets S3 or any MinIO-compatible endpoint.
	DriverS3 Driver = "s3"
	// DriverMemory holds blobs in process memory for tests.
	DriverMemory Driver = "memory"
)

// PutOptions carries the optional attributes of a write.
type PutOptions struct {
	ContentType string            // MIME type, may be empty
	Metadata    map[string]string // small flat key-value pairs stored with the blob
}

// SignedURLOptions controls presigned URL generation.
type SignedURLOptions struct {
	Method  string        // GET or PUT; only GET is issued internally
	Expiry  time.Duration // zero means 15m
	Headers map[string]string
}

// Info is the backend-independent description of a stored blob.
type Info struct {
	Key          string            `json:"key"`
	Size         int64             `json:"size_bytes"`
	ContentType  string            `json:"content_type,omitempty"`
	ETag         string            `json:"etag,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	LastModified time.Time         `json:"last_modified"`
	URL          string            `json:"url,omitempty"`
}

// Store is the write-once artifact contract every backend implements. Put
// rejects writes to an existing key so exported artifacts stay immutable.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	Head(ctx context.Context, key string) (Info, error)
	Delete(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]Info, error)
	PresignURL(ctx context.Context, key string, opts SignedURLOptions) (string, error)
	Driver() Driver
}

// ErrUnsupported reports an operation the active backend cannot perform.
var ErrUnsupported = errors.New("blobstore: unsupported operation")
