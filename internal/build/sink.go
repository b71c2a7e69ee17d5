package build

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DirSink writes generated files below an output directory.
type DirSink struct {
	Root string
}

// Write stores data at rel (slash separated), creating parent directories as
// needed. Creating an existing directory is not an error.
func (s DirSink) Write(rel string, data []byte) error {
	path := filepath.Join(s.Root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Clean removes previously generated pages (files at the output root named
// prefix*ext) and the file at bibliographyRel. It returns the removed paths.
func (s DirSink) Clean(prefix, ext, bibliographyRel string) ([]string, error) {
	entries, err := os.ReadDir(s.Root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var removed []string
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ext) {
			continue
		}
		if err := os.Remove(filepath.Join(s.Root, name)); err != nil {
			return removed, err
		}
		removed = append(removed, name)
	}

	err = os.Remove(filepath.Join(s.Root, filepath.FromSlash(bibliographyRel)))
	switch {
	case err == nil:
		removed = append(removed, bibliographyRel)
	case !errors.Is(err, fs.ErrNotExist):
		return removed, err
	}
	return removed, nil
}
