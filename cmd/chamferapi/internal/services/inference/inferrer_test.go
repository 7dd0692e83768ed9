package inference

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferrer_Infer(t *testing.T) {
	i := NewInferrer()

	schemaJSON, err := i.Infer(`{"theme":"dark","columns":3,"tags":["a"]}`)
	require.NoError(t, err)

	var schema map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(schemaJSON), &schema))
	assert.Equal(t, "object", schema["type"])

	props, ok := schema["properties"].(map[string]interface{})
	require.True(t, ok)
	theme, ok := props["theme"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "string", theme["type"])
}

func TestInferrer_Errors(t *testing.T) {
	i := NewInferrer()

	_, err := i.Infer()
	assert.Error(t, err)

	_, err = i.Infer(`{not json`)
	assert.Error(t, err)
}
