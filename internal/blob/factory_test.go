package blob

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"testing"
)

func TestOpenDefaultsToFilesystem(t *testing.T) {
	t.Setenv("TRAITCORE_BLOB_DRIVER", "")
	t.Setenv("TRAITCORE_BLOB_FS_ROOT", filepath.Join(t.TempDir(), "blobs"))

	store, err := Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if store.Driver() != DriverFilesystem {
		t.Fatalf("driver = %s, want %s", store.Driver(), DriverFilesystem)
	}
}

func TestOpenMemoryDriverRoundTrip(t *testing.T) {
	t.Setenv("TRAITCORE_BLOB_DRIVER", "memory")

	store, err := Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if store.Driver() != DriverMemory {
		t.Fatalf("driver = %s, want %s", store.Driver(), DriverMemory)
	}

	ctx := context.Background()
	if _, err := store.Put(ctx, "probe.txt", bytes.NewReader([]byte("ok")), PutOptions{ContentType: "text/plain"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	_, rc, err := store.Get(ctx, "probe.txt")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(data) != "ok" {
		t.Fatalf("read back %q, want %q", data, "ok")
	}
}

func TestOpenS3RequiresBucket(t *testing.T) {
	t.Setenv("TRAITCORE_BLOB_DRIVER", "s3")
	t.Setenv("TRAITCORE_BLOB_S3_BUCKET", "")

	if _, err := Open(context.Background()); err == nil {
		t.Fatalf("Open succeeded without a bucket")
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	t.Setenv("TRAITCORE_BLOB_DRIVER", "carrier-pigeon")

	if _, err := Open(context.Background()); err == nil {
		t.Fatalf("Open accepted an unknown driver")
	}
}

func TestMockS3FacadeRoundTrip(t *testing.T) {
	store := NewMockS3ForTests()
	if store.Driver() != DriverS3 {
		t.Fatalf("driver = %s, want %s", store.Driver(), DriverS3)
	}
	ctx := context.Background()
	if _, err := store.Put(ctx, "facade/mock.txt", bytes.NewReader([]byte("payload")), PutOptions{ContentType: "text/plain"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	info, err := store.Head(ctx, "facade/mock.txt")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if info.Size != int64(len("payload")) {
		t.Fatalf("head size = %d, want %d", info.Size, len("payload"))
	}
}
