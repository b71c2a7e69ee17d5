package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Validate checks cfg for values the build cannot work with.
func Validate(cfg *Config) error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if err := validateExtension(cfg.Source.Extension); err != nil {
		add("source.extension: %v", err)
	}
	if err := validateExtension(cfg.Output.PageExtension); err != nil {
		add("output.page_extension: %v", err)
	}
	if strings.ContainsAny(cfg.Output.PagePrefix, `/\`) {
		add("output.page_prefix %q must not contain path separators", cfg.Output.PagePrefix)
	}
	if strings.ContainsAny(cfg.Output.BibliographyFile, `/\`) {
		add("output.bibliography_file %q must be a plain file name", cfg.Output.BibliographyFile)
	}
	if dir := cfg.Output.BibliographyDir; dir != "" {
		clean := filepath.Clean(dir)
		if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
			add("output.bibliography_dir %q must stay inside the output directory", dir)
		}
	}
	if cfg.Build.Workers < 1 {
		add("build.workers must be at least 1, got %d", cfg.Build.Workers)
	}
	switch cfg.Build.OnMissingMethod {
	case MissingMethodFail, MissingMethodSkip:
	default:
		add("build.on_missing_method %q must be %q or %q", cfg.Build.OnMissingMethod, MissingMethodFail, MissingMethodSkip)
	}
	switch cfg.Build.OnPageCollision {
	case PageCollisionFail, PageCollisionOverwrite:
	default:
		add("build.on_page_collision %q must be %q or %q", cfg.Build.OnPageCollision, PageCollisionFail, PageCollisionOverwrite)
	}

	return errors.Join(errs...)
}

func validateExtension(ext string) error {
	switch {
	case ext == "":
		return errors.New("must not be empty")
	case !strings.HasPrefix(ext, "."):
		return fmt.Errorf("%q must start with a dot", ext)
	case ext == ".":
		return errors.New("must name an extension after the dot")
	}
	return nil
}
