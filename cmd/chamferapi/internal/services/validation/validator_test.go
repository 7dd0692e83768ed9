package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const settingsSchema = `{
	"type": "object",
	"properties": {
		"theme": {"type": "string", "enum": ["dark", "light"]},
		"columns": {"type": "integer", "minimum": 1}
	},
	"required": ["theme"]
}`

func TestSchemaValidator_Validate(t *testing.T) {
	v, err := NewSchemaValidator(8)
	require.NoError(t, err)

	tests := []struct {
		name    string
		doc     string
		wantErr bool
		wantAt  string
	}{
		{name: "valid", doc: `{"theme":"dark","columns":3}`},
		{name: "missing required", doc: `{"columns":3}`, wantErr: true, wantAt: "'$'"},
		{name: "bad enum", doc: `{"theme":"neon"}`, wantErr: true, wantAt: "'$.theme'"},
		{name: "bad nested type", doc: `{"theme":"dark","columns":0}`, wantErr: true, wantAt: "'$.columns'"},
		{name: "not json", doc: `{theme}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(settingsSchema, tt.doc)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidDocument)
			if tt.wantAt != "" {
				assert.Contains(t, err.Error(), tt.wantAt)
			}
		})
	}

	assert.Equal(t, 1, v.CacheLen(), "schema compiled once")
}

func TestSchemaValidator_CheckSchema(t *testing.T) {
	v, err := NewSchemaValidator(8)
	require.NoError(t, err)

	assert.NoError(t, v.CheckSchema(`{"type":"array","items":{"type":"string"}}`))
	assert.ErrorIs(t, v.CheckSchema(`{"type":`), ErrInvalidSchema)
	assert.ErrorIs(t, v.CheckSchema(`{"type":"nonsense"}`), ErrInvalidSchema)
	assert.ErrorIs(t, v.Validate(`{"type":`, `{}`), ErrInvalidSchema)
}

func TestNewSchemaValidator_RejectsZeroCache(t *testing.T) {
	_, err := NewSchemaValidator(0)
	assert.Error(t, err)
}
