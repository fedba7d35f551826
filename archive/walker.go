// Package archive reads zip archives of HTML chapters.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"

	"github.com/maruel/natural"
)

// ErrNotFound is returned for names archive does not contain.
var ErrNotFound = errors.New("file not found in archive")

// WalkFunc is called for each file visited by Walk. If an error is returned,
// processing stops.
type WalkFunc func(file *zip.File) error

// Archive is opened zip archive.
type Archive struct {
	name  string
	r     *zip.ReadCloser
	index map[string]*zip.File
}

// Open opens archive and checks names of all its entries. Entries with path
// traversal components ("..") or absolute paths make archive unusable.
func Open(name string) (*Archive, error) {
	r, err := zip.OpenReader(name)
	if err != nil {
		// insecure path error comes with opened reader
		if r != nil {
			r.Close()
		}
		return nil, err
	}
	a := &Archive{name: name, r: r, index: make(map[string]*zip.File, len(r.File))}
	for _, f := range r.File {
		if !isSafePath(f.Name) {
			r.Close()
			return nil, fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", f.Name)
		}
		if _, ok := a.index[f.Name]; !ok {
			a.index[f.Name] = f
		}
	}
	return a, nil
}

// Name returns path archive was opened from.
func (a *Archive) Name() string {
	return a.name
}

// Walk calls walkFn for every file whose name starts with prefix.
func (a *Archive) Walk(prefix string, walkFn WalkFunc) error {
	for _, f := range a.r.File {
		if !f.FileInfo().IsDir() && strings.HasPrefix(f.Name, prefix) {
			if err := walkFn(f); err != nil {
				return err
			}
		}
	}
	return nil
}

// Chapters returns names of HTML files in natural order.
func (a *Archive) Chapters() []string {
	var names []string
	_ = a.Walk("", func(f *zip.File) error {
		switch strings.ToLower(path.Ext(f.Name)) {
		case ".html", ".htm", ".xhtml":
			names = append(names, f.Name)
		}
		return nil
	})
	slices.SortFunc(names, func(x, y string) int {
		switch {
		case natural.Less(x, y):
			return -1
		case natural.Less(y, x):
			return 1
		}
		return 0
	})
	return names
}

// ReadFile returns content of the named file.
func (a *Archive) ReadFile(name string) ([]byte, error) {
	f, ok := a.index[strings.TrimPrefix(path.Clean(name), "/")]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Close closes archive.
func (a *Archive) Close() error {
	return a.r.Close()
}

// isSafePath returns false for absolute paths and those containing ".."
// components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return false
	}
	for part := range strings.SplitSeq(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
