// Package prompts provides embedded text templates used to compose the
// prompt sent to the image service.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"text/template"
)

//go:embed *.json
var promptFiles embed.FS

// GenerationFile holds the generation prompt templates
const GenerationFile = "generation.json"

// Template keys in GenerationFile
const (
	KeyNegativePrompt  = "negative-prompt"
	KeyEditInstruction = "edit-instruction"
)

var (
	cache   = make(map[string]map[string]string)
	cacheMu sync.RWMutex
)

// Get retrieves a template by filename and key.
func Get(filename, key string) (string, error) {
	templates, err := loadFile(filename)
	if err != nil {
		return "", err
	}

	tmpl, exists := templates[key]
	if !exists {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}

	return tmpl, nil
}

// MustGet retrieves a template, panicking if not found.
func MustGet(filename, key string) string {
	tmpl, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return tmpl
}

// Format executes tmpl as a text/template against data. Values are
// inserted verbatim, so placeholder syntax inside a value is never expanded.
func Format(tmpl string, data map[string]string) (string, error) {
	t, err := template.New("prompt").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse prompt template: %w", err)
	}
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to render prompt template: %w", err)
	}
	return sb.String(), nil
}

// mustFormat is Format for the embedded templates, which are known to parse
func mustFormat(tmpl string, data map[string]string) string {
	out, err := Format(tmpl, data)
	if err != nil {
		panic(err)
	}
	return out
}

// Compose builds the text part for a request. A negative prompt is folded
// into the text because the service has no separate field for it; edit
// requests are phrased as an instruction against the attached image.
func Compose(prompt, negativePrompt string, edit bool) string {
	text := strings.TrimSpace(prompt)
	if edit {
		text = mustFormat(MustGet(GenerationFile, KeyEditInstruction), map[string]string{"Prompt": text})
	}
	negativePrompt = strings.TrimSpace(negativePrompt)
	if negativePrompt == "" {
		return text
	}
	return mustFormat(MustGet(GenerationFile, KeyNegativePrompt), map[string]string{
		"Prompt":         text,
		"NegativePrompt": negativePrompt,
	})
}

func loadFile(filename string) (map[string]string, error) {
	cacheMu.RLock()
	if templates, exists := cache[filename]; exists {
		cacheMu.RUnlock()
		return templates, nil
	}
	cacheMu.RUnlock()

	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}

	var templates map[string]string
	if err := json.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}

	cacheMu.Lock()
	cache[filename] = templates
	cacheMu.Unlock()

	return templates, nil
}

// ClearCache clears the template cache. Useful for testing.
func ClearCache() {
	cacheMu.Lock()
	cache = make(map[string]map[string]string)
	cacheMu.Unlock()
}
