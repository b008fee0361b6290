package session

import (
	"fmt"

	"github.com/jonathan/banana-cli/internal/config"
)

// Field is one row of the settings screen
type Field struct {
	Label string
	Key   config.Key
}

// FreeText reports whether the field is edited as text instead of cycled
func (f Field) FreeText() bool {
	return config.Options(f.Key) == nil
}

// Fields lists the settings rows in display order
var Fields = []Field{
	{Label: "Model", Key: config.KeyAPIModel},
	{Label: "Aspect ratio", Key: config.KeyDefaultsAspectRatio},
	{Label: "Size", Key: config.KeyDefaultsSize},
	{Label: "Output directory", Key: config.KeyOutputDirectory},
	{Label: "Auto download", Key: config.KeyOutputAutoDownload},
	{Label: "Display", Key: config.KeyOutputDisplay},
	{Label: "Show images", Key: config.KeyTUIShowImages},
	{Label: "Theme", Key: config.KeyTUITheme},
}

func (c *Controller) SettingsCursor() int { return c.settingsCursor }

// Editing reports whether a free-text field is being edited
func (c *Controller) Editing() bool { return c.editing }

// EditBuffer returns the text of the field being edited
func (c *Controller) EditBuffer() string { return c.edit.String() }

func (c *Controller) EditCursor() int { return c.edit.Cursor() }

// FieldValue returns the current value shown for Fields[i]
func (c *Controller) FieldValue(i int) string {
	if i < 0 || i >= len(Fields) {
		return ""
	}
	return c.cfg.Get(Fields[i].Key)
}

// EnterSettings opens the settings screen at the first field
func (c *Controller) EnterSettings() {
	c.setMode(ModeSettings)
	c.settingsCursor = 0
	c.editing = false
	c.edit.reset()
}

// ExitSettings returns to the list. It is ignored while editing.
func (c *Controller) ExitSettings() {
	if c.mode != ModeSettings || c.editing {
		return
	}
	c.setMode(ModeMain)
}

// MoveSettingsCursor moves between fields while browsing
func (c *Controller) MoveSettingsCursor(delta int) {
	if c.editing {
		return
	}
	c.settingsCursor += delta
	if c.settingsCursor < 0 {
		c.settingsCursor = 0
	}
	if c.settingsCursor >= len(Fields) {
		c.settingsCursor = len(Fields) - 1
	}
}

// ActivateField cycles an enumerable field to its next option, or starts
// editing a free-text field seeded with its current value.
func (c *Controller) ActivateField() error {
	if c.mode != ModeSettings || c.editing {
		return nil
	}
	f := Fields[c.settingsCursor]
	if f.FreeText() {
		c.editing = true
		c.edit.set(c.cfg.Value(f.Key))
		c.status, c.err = "", ""
		return nil
	}

	v, err := c.cfg.Cycle(f.Key)
	if err != nil {
		c.setError(err)
		return err
	}
	c.dirty = true
	c.status = fmt.Sprintf("%s: %s", f.Label, v)
	c.err = ""
	return nil
}

// SubmitEdit applies the edit buffer. A rejected value keeps the editor
// open with the error shown.
func (c *Controller) SubmitEdit() error {
	if !c.editing {
		return nil
	}
	f := Fields[c.settingsCursor]
	if err := c.cfg.Set(f.Key, c.edit.String()); err != nil {
		c.setError(err)
		return err
	}
	c.editing = false
	c.edit.reset()
	c.dirty = true
	c.status = fmt.Sprintf("%s: %s", f.Label, c.cfg.Get(f.Key))
	c.err = ""
	return nil
}

// CancelEdit discards the edit buffer
func (c *Controller) CancelEdit() {
	if !c.editing {
		return
	}
	c.editing = false
	c.edit.reset()
	c.status, c.err = "", ""
}

// Save writes the configuration now
func (c *Controller) Save() error {
	if err := c.cfg.Save(); err != nil {
		c.setError(fmt.Errorf("save config: %w", err))
		return err
	}
	c.dirty = false
	c.status = "Settings saved to " + c.cfg.Path()
	c.logger.Info().Str("path", c.cfg.Path()).Msg("session: config saved")
	return nil
}
