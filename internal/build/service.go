package build

import (
	"time"

	"git.home.luguber.info/inful/annodoc/internal/config"
	ferrors "git.home.luguber.info/inful/annodoc/internal/foundation/errors"
)

// Request contains all inputs of one build.
type Request struct {
	// SearchDir is walked recursively for source files.
	SearchDir string
	// OutputDir receives the pages and the bibliography; created if absent.
	OutputDir string
	// Config is the loaded configuration for this build.
	Config *config.Config
}

// Status represents the outcome of a build.
type Status string

const (
	StatusSuccess  Status = "success"
	StatusFailed   Status = "failed"
	StatusCanceled Status = "canceled"
)

// Report summarizes a build.
type Report struct {
	Status Status

	// Files is the number of source files discovered.
	Files        int
	Documented   int
	Undocumented int
	Skipped      int

	// Pages lists the written pages relative to the output directory, sorted.
	Pages []string
	// BibliographyPath is the bibliography page relative to the output directory.
	BibliographyPath string
	// Sources is the number of distinct URLs in the bibliography.
	Sources int
	// Commit is the provenance commit, empty when not recorded.
	Commit string
	// Warnings lists non-fatal problems: skipped files and overwritten pages.
	Warnings []*ferrors.ClassifiedError

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}
