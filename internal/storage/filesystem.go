// Package storage saves downloaded images into the output directory.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ImageDir is an output directory for decoded images. Files appear under
// their final name only once fully written.
type ImageDir struct {
	root string
}

// OpenImageDir resolves dir to an absolute path and creates it when
// missing, so the paths recorded on jobs survive a change of working
// directory.
func OpenImageDir(dir string) (*ImageDir, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("storage: output directory is required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve output directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create output directory: %w", err)
	}
	return &ImageDir{root: abs}, nil
}

// Root returns the absolute output directory
func (d *ImageDir) Root() string {
	return d.root
}

// Save writes data as name inside the directory and returns the absolute
// path. An existing file with that name is replaced.
func (d *ImageDir) Save(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := checkName(name); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(d.root, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("storage: create %s: %w", name, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("storage: write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("storage: write %s: %w", name, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("storage: write %s: %w", name, err)
	}

	path := filepath.Join(d.root, name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("storage: save %s: %w", name, err)
	}
	return path, nil
}

// checkName accepts plain file names only
func checkName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return errors.New("storage: file name is required")
	case name == "." || name == "..":
		return fmt.Errorf("storage: invalid file name %q", name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("storage: file name %q must not contain a path", name)
	}
	return nil
}
