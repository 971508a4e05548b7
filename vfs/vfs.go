// Package vfs resolves logical paths to loadable guest source. Embedders
// get an in-memory filesystem they can register source blobs into; the CLI
// swaps in an OS-backed one.
package vfs

import (
	"fmt"
	"path"

	"github.com/spf13/afero"
)

// FS is a virtual filesystem of guest source.
type FS struct {
	fs afero.Fs
}

// NewMem creates an empty in-memory filesystem.
func NewMem() *FS {
	return &FS{fs: afero.NewMemMapFs()}
}

// NewOS creates a read-only view of the host filesystem.
func NewOS() *FS {
	return &FS{fs: afero.NewReadOnlyFs(afero.NewOsFs())}
}

// Wrap adapts an arbitrary afero filesystem.
func Wrap(fs afero.Fs) *FS {
	return &FS{fs: fs}
}

// Register stores a source blob under a logical path, creating parent
// directories as needed.
func (f *FS) Register(p string, src []byte) error {
	p = normalize(p)
	if dir := path.Dir(p); dir != "." && dir != "/" {
		if err := f.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("vfs: register %s: %w", p, err)
		}
	}
	if err := afero.WriteFile(f.fs, p, src, 0o644); err != nil {
		return fmt.Errorf("vfs: register %s: %w", p, err)
	}
	return nil
}

// Source reads the blob registered under a logical path.
func (f *FS) Source(p string) ([]byte, error) {
	src, err := afero.ReadFile(f.fs, normalize(p))
	if err != nil {
		return nil, fmt.Errorf("vfs: read %s: %w", p, err)
	}
	return src, nil
}

// Exists reports whether a logical path resolves to source.
func (f *FS) Exists(p string) bool {
	ok, err := afero.Exists(f.fs, normalize(p))
	return err == nil && ok
}

func normalize(p string) string {
	return path.Clean(p)
}
