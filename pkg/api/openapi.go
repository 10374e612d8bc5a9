package api

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var openAPIDocument []byte

// LoadOpenAPI parses and validates the embedded OpenAPI document
func LoadOpenAPI(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromData(openAPIDocument)
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi document: %w", err)
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}

	return doc, nil
}

// SectionEnum returns the section IDs the document accepts in paths
func SectionEnum(doc *openapi3.T) []string {
	param, ok := doc.Components.Parameters["section"]
	if !ok || param.Value == nil || param.Value.Schema == nil || param.Value.Schema.Value == nil {
		return nil
	}

	out := make([]string, 0, len(param.Value.Schema.Value.Enum))
	for _, v := range param.Value.Schema.Value.Enum {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}

	return out
}
