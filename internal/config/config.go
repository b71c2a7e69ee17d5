package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file consulted when none is given explicitly.
const DefaultPath = "annodoc.yaml"

// Config represents the application configuration.
type Config struct {
	Source  SourceConfig  `yaml:"source"`
	Output  OutputConfig  `yaml:"output"`
	Pages   PagesConfig   `yaml:"pages"`
	Build   BuildConfig   `yaml:"build"`
	Logging LoggingConfig `yaml:"logging"`
}

// SourceConfig selects which files are scanned and how methods are registered.
type SourceConfig struct {
	Extension        string `yaml:"extension"`         // e.g. ".cpp"
	RegistrationCall string `yaml:"registration_call"` // e.g. "register_method"
}

// OutputConfig controls page naming and layout in the output directory.
type OutputConfig struct {
	PagePrefix       string `yaml:"page_prefix"`
	PageExtension    string `yaml:"page_extension"`
	BibliographyDir  string `yaml:"bibliography_dir"`
	BibliographyFile string `yaml:"bibliography_file"`
	FrontMatter      bool   `yaml:"front_matter"`
	Clean            bool   `yaml:"clean"` // remove previously generated pages first
}

// PagesConfig controls fixed page text.
type PagesConfig struct {
	TitleSuffix       string `yaml:"title_suffix,omitempty"`
	BibliographyTitle string `yaml:"bibliography_title"`
}

// BuildConfig controls how the build runs.
type BuildConfig struct {
	Workers          int                 `yaml:"workers"`
	OnMissingMethod  MissingMethodPolicy `yaml:"on_missing_method"`
	OnPageCollision  PageCollisionPolicy `yaml:"on_page_collision"`
	ProvenanceCommit bool                `yaml:"provenance_commit"`
}

// LoggingConfig selects log verbosity and encoding.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// Load reads configuration from path and applies defaults to unset fields.
//
// When optional is true, a missing file yields the defaults instead of an error.
func Load(path string, optional bool) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := Parse(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML onto cfg, which should already hold defaults, then
// normalizes and validates the result. Unknown keys are rejected.
func Parse(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.normalize()
	return Validate(cfg)
}
