// Package apispec embeds the OpenAPI description of the dashboard API and of the
// upstream inference response it consumes.
package apispec

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var document []byte

const InferenceResponseSchema = "InferenceResponse"

// Document returns a copy of the raw YAML document.
func Document() []byte {
	out := make([]byte, len(document))
	copy(out, document)
	return out
}

// Load parses and validates the embedded document.
func Load(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(document)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}
	return doc, nil
}

// Schema returns the named component schema from a loaded document.
func Schema(doc *openapi3.T, name string) (*openapi3.Schema, error) {
	if doc == nil || doc.Components == nil {
		return nil, fmt.Errorf("openapi document has no components")
	}
	ref, ok := doc.Components.Schemas[name]
	if !ok || ref == nil || ref.Value == nil {
		return nil, fmt.Errorf("openapi schema %q not found", name)
	}
	return ref.Value, nil
}
