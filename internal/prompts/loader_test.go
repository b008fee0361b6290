package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	tmpl, err := Get(GenerationFile, KeyNegativePrompt)
	require.NoError(t, err)
	assert.Contains(t, tmpl, "{{.NegativePrompt}}")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get(GenerationFile, "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestFormat(t *testing.T) {
	result, err := Format("Hello {{.Name}}, {{.Name}}!", map[string]string{"Name": "banana"})
	require.NoError(t, err)
	assert.Equal(t, "Hello banana, banana!", result)

	_, err = Format("Hello {{.Missing}}", map[string]string{"Name": "banana"})
	assert.Error(t, err)

	_, err = Format("Hello {{.Name", nil)
	assert.Error(t, err)
}

func TestCompose_PlaceholdersInValuesStayLiteral(t *testing.T) {
	for i := 0; i < 20; i++ {
		got := Compose("a {{.NegativePrompt}} banana", "stars {{.Prompt}}", false)
		assert.Equal(t, "a {{.NegativePrompt}} banana\n\nAvoid the following in the image: stars {{.Prompt}}", got)
	}
}

func TestCompose(t *testing.T) {
	assert.Equal(t, "a cosmic banana", Compose("  a cosmic banana ", "", false))

	withNegative := Compose("a cosmic banana", "stars", false)
	assert.Equal(t, "a cosmic banana\n\nAvoid the following in the image: stars", withNegative)

	edit := Compose("make it blue", "", true)
	assert.Equal(t, "Edit the provided image: make it blue", edit)
}
