// Package openapi embeds the record model OpenAPI components for runtime
// distribution.
package openapi

import _ "embed"

// RecordModelSpec contains the OpenAPI components for the record model.
//
//go:embed record-model.yaml
var RecordModelSpec []byte

// Spec returns a defensive copy of the embedded record model OpenAPI YAML.
func Spec() []byte {
	return append([]byte(nil), RecordModelSpec...)
}
