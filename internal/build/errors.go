package build

import "errors"

// Sentinel domain errors. They are wrapped in classified errors carrying the
// file and page involved.
var (
	// ErrPageCollision indicates two source files map to the same page name.
	ErrPageCollision = errors.New("page name collision")

	// ErrSearchDir indicates the search directory could not be walked.
	ErrSearchDir = errors.New("search directory walk failed")
)
