// Package inference derives a JSON Schema from a sample document.
package inference

import (
	"fmt"

	"github.com/JLugagne/jsonschema-infer"
)

// Inferrer derives schemas using JLugagne/jsonschema-infer
type Inferrer struct{}

// NewInferrer creates a new Inferrer
func NewInferrer() *Inferrer {
	return &Inferrer{}
}

// Infer returns a schema for which every given sample is valid.
func (i *Inferrer) Infer(samples ...string) (string, error) {
	if len(samples) == 0 {
		return "", fmt.Errorf("infer schema: no samples")
	}

	generator := jsonschema.New()
	for n, sample := range samples {
		if err := generator.AddSample(sample); err != nil {
			return "", fmt.Errorf("add sample %d: %w", n, err)
		}
	}

	// Generate returns the schema JSON directly
	schema, err := generator.Generate()
	if err != nil {
		return "", fmt.Errorf("generate schema: %w", err)
	}
	return string(schema), nil
}
