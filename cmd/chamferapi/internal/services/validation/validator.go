// Package validation checks JSON documents against JSON Schemas with a cache of compiled schemas.
package validation

import (
	"errors"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrInvalidSchema wraps schema text that does not compile.
var ErrInvalidSchema = errors.New("invalid schema")

// ErrInvalidDocument wraps documents that are not JSON or violate their schema.
var ErrInvalidDocument = errors.New("invalid document")

// SchemaValidator implements document validation using santhosh-tekuri/jsonschema/v6
type SchemaValidator struct {
	schemaCache *lru.Cache[string, *jsonschema.Schema]
}

// NewSchemaValidator creates a new validator with LRU caching for compiled schemas
func NewSchemaValidator(cacheSize int) (*SchemaValidator, error) {
	cache, err := lru.New[string, *jsonschema.Schema](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create schema cache: %w", err)
	}
	return &SchemaValidator{schemaCache: cache}, nil
}

// CheckSchema reports whether schemaJSON compiles, caching the result.
func (v *SchemaValidator) CheckSchema(schemaJSON string) error {
	_, err := v.schema(schemaJSON)
	return err
}

// Validate checks documentJSON against schemaJSON.
func (v *SchemaValidator) Validate(schemaJSON, documentJSON string) error {
	schema, err := v.schema(schemaJSON)
	if err != nil {
		return err
	}

	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(documentJSON))
	if err != nil {
		return fmt.Errorf("%w: parse document: %v", ErrInvalidDocument, err)
	}

	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDocument, formatValidationError(err))
	}
	return nil
}

func (v *SchemaValidator) schema(schemaJSON string) (*jsonschema.Schema, error) {
	// schema text is its own cache key
	if cached, ok := v.schemaCache.Get(schemaJSON); ok {
		return cached, nil
	}

	schema, err := compileSchema(schemaJSON)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	v.schemaCache.Add(schemaJSON, schema)
	return schema, nil
}

// CacheLen returns how many compiled schemas are cached
func (v *SchemaValidator) CacheLen() int {
	return v.schemaCache.Len()
}

func compileSchema(schemaJSON string) (*jsonschema.Schema, error) {
	parsed, err := jsonschema.UnmarshalJSON(strings.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("parse schema JSON: %w", err)
	}

	// fresh compiler per schema so resources never collide
	compiler := jsonschema.NewCompiler()
	compiler.DefaultDraft(jsonschema.Draft7)

	schemaURL := "schema.json"
	if err := compiler.AddResource(schemaURL, parsed); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}

	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// formatValidationError renders "at '$.path': message", truncating long library output.
func formatValidationError(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	// the root error only wraps; report the first leaf
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}

	path := "$"
	var parts []string
	for _, part := range ve.InstanceLocation {
		if part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) > 0 {
		path = "$." + strings.Join(parts, ".")
	}

	msg := ve.Error()
	if len(msg) > 200 {
		msg = msg[:200] + "... (truncated)"
	}
	return fmt.Sprintf("at '%s': %s", path, msg)
}
