package config

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/banana-cli/internal/job"
	"github.com/jonathan/banana-cli/internal/llm"
)

// Key names one settable configuration value
type Key string

// Configuration keys
const (
	KeyAPIKey              Key = "api.key"
	KeyAPIModel            Key = "api.model"
	KeyAPIBaseURL          Key = "api.base_url"
	KeyAPITransport        Key = "api.transport"
	KeyDefaultsAspectRatio Key = "defaults.aspect_ratio"
	KeyDefaultsSize        Key = "defaults.size"
	KeyOutputDirectory     Key = "output.directory"
	KeyOutputAutoDownload  Key = "output.auto_download"
	KeyOutputDisplay       Key = "output.display"
	KeyTUIShowImages       Key = "tui.show_images"
	KeyTUITheme            Key = "tui.theme"
	KeyStoreDatabaseURL    Key = "store.database_url"
)

// Keys lists every key in display order
var Keys = []Key{
	KeyAPIKey, KeyAPIModel, KeyAPIBaseURL, KeyAPITransport,
	KeyDefaultsAspectRatio, KeyDefaultsSize,
	KeyOutputDirectory, KeyOutputAutoDownload, KeyOutputDisplay,
	KeyTUIShowImages, KeyTUITheme,
	KeyStoreDatabaseURL,
}

// maskedValue replaces secrets in Get
const maskedValue = "****"

// KeyError reports an unknown key
type KeyError struct {
	Key string
}

func (e *KeyError) Error() string {
	names := make([]string, len(Keys))
	for i, k := range Keys {
		names[i] = string(k)
	}
	return fmt.Sprintf("unknown config key %q (valid keys: %s)", e.Key, strings.Join(names, ", "))
}

// ValueError reports a value rejected for a key
type ValueError struct {
	Key   Key
	Value string
	Cause error
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("invalid value %q for %s: %v", e.Value, e.Key, e.Cause)
}

func (e *ValueError) Unwrap() error {
	return e.Cause
}

// ParseKey converts a user-supplied key into a Key
func ParseKey(s string) (Key, error) {
	for _, k := range Keys {
		if string(k) == s {
			return k, nil
		}
	}
	return "", &KeyError{Key: s}
}

// Secret reports whether the value of k is masked on display
func (k Key) Secret() bool {
	return k == KeyAPIKey || k == KeyStoreDatabaseURL
}

// Options returns the closed set of values for k, or nil for free text
func Options(k Key) []string {
	switch k {
	case KeyAPIModel:
		return llm.ModelNames()
	case KeyAPITransport:
		return []string{string(llm.TransportREST), string(llm.TransportSDK)}
	case KeyDefaultsAspectRatio:
		out := make([]string, len(job.AspectRatios))
		for i, ar := range job.AspectRatios {
			out[i] = string(ar)
		}
		return out
	case KeyDefaultsSize:
		out := make([]string, len(job.Sizes))
		for i, s := range job.Sizes {
			out[i] = string(s)
		}
		return out
	case KeyOutputAutoDownload, KeyTUIShowImages:
		return []string{"true", "false"}
	case KeyOutputDisplay:
		return []string{string(DisplayTerminal), string(DisplayViewer), string(DisplayNone)}
	case KeyTUITheme:
		return []string{string(ThemeDark), string(ThemeLight)}
	default:
		return nil
	}
}

// Get returns the current value of k as text. Secrets are masked.
func (c *Config) Get(k Key) string {
	v := c.raw(k)
	if k.Secret() && v != "" {
		return maskedValue
	}
	return v
}

// Value returns the unmasked value of k
func (c *Config) Value(k Key) string {
	return c.raw(k)
}

func (c *Config) raw(k Key) string {
	switch k {
	case KeyAPIKey:
		return c.APIKey()
	case KeyAPIModel:
		return c.API.Model
	case KeyAPIBaseURL:
		return c.API.BaseURL
	case KeyAPITransport:
		return c.API.Transport
	case KeyDefaultsAspectRatio:
		return c.Defaults.AspectRatio
	case KeyDefaultsSize:
		return c.Defaults.Size
	case KeyOutputDirectory:
		return c.Output.Directory
	case KeyOutputAutoDownload:
		return strconv.FormatBool(c.Output.AutoDownload)
	case KeyOutputDisplay:
		return string(c.Output.Display)
	case KeyTUIShowImages:
		return strconv.FormatBool(c.TUI.ShowImages)
	case KeyTUITheme:
		return string(c.TUI.Theme)
	case KeyStoreDatabaseURL:
		return c.DatabaseURL()
	default:
		return ""
	}
}

// Set validates value for k and applies it. On error c is unchanged.
func (c *Config) Set(k Key, value string) error {
	next := *c
	value = strings.TrimSpace(value)

	switch k {
	case KeyAPIKey:
		next.API.Key = value
	case KeyAPIModel:
		next.API.Model = value
	case KeyAPIBaseURL:
		next.API.BaseURL = value
	case KeyAPITransport:
		next.API.Transport = value
	case KeyDefaultsAspectRatio:
		next.Defaults.AspectRatio = value
	case KeyDefaultsSize:
		size, err := job.ParseSize(value)
		if err != nil {
			return &ValueError{Key: k, Value: value, Cause: err}
		}
		next.Defaults.Size = string(size)
	case KeyOutputDirectory:
		next.Output.Directory = value
	case KeyOutputAutoDownload, KeyTUIShowImages:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return &ValueError{Key: k, Value: value, Cause: errors.New("expected true or false")}
		}
		if k == KeyOutputAutoDownload {
			next.Output.AutoDownload = b
		} else {
			next.TUI.ShowImages = b
		}
	case KeyOutputDisplay:
		next.Output.Display = Display(value)
	case KeyTUITheme:
		next.TUI.Theme = Theme(value)
	case KeyStoreDatabaseURL:
		next.Store.DatabaseURL = value
	default:
		return &KeyError{Key: string(k)}
	}

	if err := next.Validate(); err != nil {
		return &ValueError{Key: k, Value: value, Cause: err}
	}
	*c = next
	return nil
}

// Cycle advances an enumerable key to its next option, wrapping around,
// and returns the new value.
func (c *Config) Cycle(k Key) (string, error) {
	opts := Options(k)
	if len(opts) == 0 {
		return "", fmt.Errorf("%s is not an enumerable setting", k)
	}
	cur := c.raw(k)
	next := opts[0]
	for i, o := range opts {
		if o == cur {
			next = opts[(i+1)%len(opts)]
			break
		}
	}
	if err := c.Set(k, next); err != nil {
		return "", err
	}
	return next, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names, e.g. defaults.aspect_ratio
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks every field against its constraints
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config error: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("'%s' is required", field))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("'%s' must be one of: %s", field, fe.Param()))
		case "url":
			msgs = append(msgs, fmt.Sprintf("'%s' must be a URL", field))
		default:
			msgs = append(msgs, fmt.Sprintf("'%s' failed %s", field, fe.Tag()))
		}
	}
	return fmt.Errorf("config error: %s", strings.Join(msgs, "; "))
}
