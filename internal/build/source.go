package build

import (
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
)

// SourceFile is one discovered source file.
type SourceFile struct {
	// Path is the file's location on disk.
	Path string
	// Rel is the path relative to the search directory, slash separated.
	Rel string
}

// DirSource discovers source files below a directory.
type DirSource struct {
	Root      string
	Extension string
}

// Files yields every regular file with the configured extension, in lexical
// order. Hidden directories are not entered. Walk errors are yielded and end
// the sequence.
func (s DirSource) Files() iter.Seq2[SourceFile, error] {
	return func(yield func(SourceFile, error) bool) {
		err := filepath.WalkDir(s.Root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != s.Root && d.Name()[0] == '.' {
					return fs.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() || filepath.Ext(path) != s.Extension {
				return nil
			}
			rel, err := filepath.Rel(s.Root, path)
			if err != nil {
				return err
			}
			if !yield(SourceFile{Path: path, Rel: filepath.ToSlash(rel)}, nil) {
				return filepath.SkipAll
			}
			return nil
		})
		if err != nil {
			yield(SourceFile{}, fmt.Errorf("%w: %w", ErrSearchDir, err))
		}
	}
}

// Read returns the text of f.
func (s DirSource) Read(f SourceFile) (string, error) {
	// #nosec G304 -- f.Path comes from walking the search directory.
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
