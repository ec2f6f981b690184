// Package schema embeds the canonical record model documents and exposes
// their version and metadata at runtime.
package schema

import (
	_ "embed"
	"encoding/json"
	"sync"
)

type fingerprintDoc struct {
	Version string `json:"version"`
}

// Metadata is the metadata block of the record model document.
type Metadata struct {
	Source string `json:"source"`
	Status string `json:"status"`
}

type metadataDoc struct {
	Metadata Metadata `json:"metadata"`
}

// The fingerprint carries the version and digest served to clients.
//
//go:embed record-model.fingerprint.json
var recordModelFingerprint []byte

// The full record model backs the metadata accessors.
//
//go:embed record-model.json
var recordModelSchema []byte

// cachedDoc decodes an embedded JSON document at most once.
type cachedDoc[T any] struct {
	once sync.Once
	doc  T
	err  error
}

func (c *cachedDoc[T]) decode(raw []byte) (T, error) {
	c.once.Do(func() {
		c.err = json.Unmarshal(raw, &c.doc)
	})
	return c.doc, c.err
}

var (
	fingerprintCache cachedDoc[fingerprintDoc]
	schemaCache      cachedDoc[metadataDoc]
)

// RecordModelVersion returns the canonical schema version declared in the
// fingerprint (source of truth: docs/schema/record-model.json).
func RecordModelVersion() (string, error) {
	fp, err := fingerprintCache.decode(recordModelFingerprint)
	return fp.Version, err
}

// RecordModelMetadata returns the schema metadata (status, source) declared in
// the canonical record-model JSON.
func RecordModelMetadata() (Metadata, error) {
	doc, err := schemaCache.decode(recordModelSchema)
	return doc.Metadata, err
}
