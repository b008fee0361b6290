package job

import (
	"fmt"
	"strings"
)

// Default generation parameters
const (
	DefaultModel       = "gemini-3-pro-image-preview"
	DefaultAspectRatio = AspectRatio("1:1")
	DefaultSize        = SizeLow
)

// AspectRatio is a width:height ratio accepted by the service
type AspectRatio string

// AspectRatios lists the supported ratios
var AspectRatios = []AspectRatio{"1:1", "2:3", "3:2", "3:4", "4:3", "4:5", "5:4", "9:16", "16:9", "21:9"}

// ParseAspectRatio validates a ratio string
func ParseAspectRatio(s string) (AspectRatio, error) {
	for _, ar := range AspectRatios {
		if string(ar) == s {
			return ar, nil
		}
	}
	return "", fmt.Errorf("invalid aspect ratio %q", s)
}

// Size is the output resolution class. Its value is the label users type.
type Size string

// Size classes
const (
	SizeLow  Size = "1K"
	SizeMid  Size = "2K"
	SizeHigh Size = "4K"
)

// Sizes lists the size classes from smallest to largest
var Sizes = []Size{SizeLow, SizeMid, SizeHigh}

// ParseSize accepts either the resolution label (1K, 2K, 4K) or the class
// name (low, mid, high).
func ParseSize(s string) (Size, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1k", "low":
		return SizeLow, nil
	case "2k", "mid":
		return SizeMid, nil
	case "4k", "high":
		return SizeHigh, nil
	}
	return "", fmt.Errorf("invalid size %q (expected 1K, 2K or 4K)", s)
}

// Reference is an inline image the service should edit.
type Reference struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"` // base64
}

// Params are the generation parameters of a job.
type Params struct {
	Prompt         string      `json:"prompt"`
	AspectRatio    AspectRatio `json:"aspect_ratio"`
	Size           Size        `json:"size"`
	Model          string      `json:"model"`
	Seed           *int64      `json:"seed,omitempty"`
	NegativePrompt string      `json:"negative_prompt,omitempty"`

	// Reference is only used by edit actions and is never persisted; the
	// action keeps the source path instead.
	Reference *Reference `json:"-"`
}

func (p Params) withDefaults() Params {
	if p.AspectRatio == "" {
		p.AspectRatio = DefaultAspectRatio
	}
	if p.Size == "" {
		p.Size = DefaultSize
	}
	if p.Model == "" {
		p.Model = DefaultModel
	}
	return p
}

// ActionKind distinguishes generation from editing
type ActionKind string

// Action kinds
const (
	ActionGenerate ActionKind = "generate"
	ActionEdit     ActionKind = "edit"
)

// Action is what the job asked the service to do.
type Action struct {
	Kind        ActionKind `json:"type"`
	SourceImage string     `json:"source_image,omitempty"` // edit only
}

// Generate returns the generate action
func Generate() Action {
	return Action{Kind: ActionGenerate}
}

// Edit returns an edit action for the image at source
func Edit(source string) Action {
	return Action{Kind: ActionEdit, SourceImage: source}
}

func (a Action) String() string {
	return string(a.Kind)
}
