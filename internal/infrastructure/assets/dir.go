// Package assets serves the static letter images (logos, signatures) from disk.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/policy-letter-api/internal/domain"
)

// DirSource reads assets from a local directory.
type DirSource struct {
	root string
}

func NewDirSource(root string) *DirSource {
	return &DirSource{root: root}
}

// Load returns the bytes of the named asset. Names must be bare file names.
func (s *DirSource) Load(_ context.Context, name string) ([]byte, error) {
	if !IsBareName(name) {
		return nil, fmt.Errorf("asset %q: %w", name, domain.ErrBadRequest)
	}
	b, err := os.ReadFile(filepath.Join(s.root, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("asset %q: %w", name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("read asset %q: %w", name, err)
	}
	return b, nil
}

// IsBareName reports whether name has no directory component.
func IsBareName(name string) bool {
	return name != "" && name != "." && name != ".." && filepath.Base(name) == name && filepath.IsLocal(name)
}
