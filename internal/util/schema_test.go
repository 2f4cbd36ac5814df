package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type searchArgs struct {
	Query string `json:"query" description:"Search query"`
	Limit *int   `json:"limit,omitempty" description:"Maximum number of results"`
	skip  string
}

func TestCreateSchema(t *testing.T) {
	schema := CreateSchema(searchArgs{})

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "query")
	assert.Contains(t, props, "limit")
	assert.NotContains(t, props, "skip")
	assert.Equal(t, []string{"query"}, schema["required"])

	limit := props["limit"].(map[string]any)
	assert.Equal(t, "integer", limit["type"])
}

func TestValidateParametersRequiredStringSlice(t *testing.T) {
	schema := CreateSchema(searchArgs{})

	err := ValidateParameters(map[string]any{}, schema)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "query", ve.Field)

	assert.NoError(t, ValidateParameters(map[string]any{"query": "go"}, schema))
}

func TestValidateParametersRequiredFromJSON(t *testing.T) {
	schema := map[string]any{
		"type":     "object",
		"required": []any{"location"},
	}
	assert.Error(t, ValidateParameters(map[string]any{}, schema))
	assert.NoError(t, ValidateParameters(map[string]any{"location": "Tokyo"}, schema))
}

func TestValidateParametersTypesAndEnum(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"limit": map[string]any{"type": "integer"},
			"unit":  map[string]any{"type": "string", "enum": []string{"celsius", "fahrenheit"}},
		},
	}

	assert.NoError(t, ValidateParameters(map[string]any{"limit": float64(3), "unit": "celsius"}, schema))
	assert.Error(t, ValidateParameters(map[string]any{"limit": 2.5}, schema))
	assert.Error(t, ValidateParameters(map[string]any{"unit": "kelvin"}, schema))
	assert.NoError(t, ValidateParameters(map[string]any{"extra": true}, schema))
}

func TestRenderTemplate(t *testing.T) {
	out, err := RenderTemplate("plain text", nil)
	require.NoError(t, err)
	assert.Equal(t, "plain text", out)

	out, err = RenderTemplate(`Chat {{.chat_id}} has {{.message_count}} messages, {{upper .name}}`, map[string]any{
		"chat_id":       "c1",
		"message_count": 2,
		"name":          "go",
	})
	require.NoError(t, err)
	assert.Equal(t, "Chat c1 has 2 messages, GO", out)

	_, err = RenderTemplate("{{.broken", nil)
	assert.Error(t, err)
}
