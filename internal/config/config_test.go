package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingOptionalFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), true)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_MissingRequiredFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoad_OverridesAndNormalizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "annodoc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
source:
  extension: .cc
output:
  page_prefix: doc_
  front_matter: false
pages:
  title_suffix: " ICP"
build:
  workers: 4
  on_missing_method: SKIP
  on_page_collision: " Overwrite "
logging:
  level: Debug
  format: json
`), 0o644))

	cfg, err := Load(path, false)
	require.NoError(t, err)
	assert.Equal(t, ".cc", cfg.Source.Extension)
	assert.Equal(t, "register_method", cfg.Source.RegistrationCall)
	assert.Equal(t, "doc_", cfg.Output.PagePrefix)
	assert.Equal(t, ".md", cfg.Output.PageExtension)
	assert.False(t, cfg.Output.FrontMatter)
	assert.Equal(t, " ICP", cfg.Pages.TitleSuffix)
	assert.Equal(t, "Sources", cfg.Pages.BibliographyTitle)
	assert.Equal(t, 4, cfg.Build.Workers)
	assert.Equal(t, MissingMethodSkip, cfg.Build.OnMissingMethod)
	assert.Equal(t, PageCollisionOverwrite, cfg.Build.OnPageCollision)
	assert.Equal(t, LogLevelDebug, cfg.Logging.Level)
	assert.Equal(t, LogFormatJSON, cfg.Logging.Format)
}

func TestParse_EmptyDocumentKeepsDefaults(t *testing.T) {
	cfg := Default()
	require.NoError(t, Parse([]byte(""), cfg))
	assert.Equal(t, Default(), cfg)
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	err := Parse([]byte("output:\n  directory: ./site\n"), Default())
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "empty source extension", mutate: func(c *Config) { c.Source.Extension = "" }, want: "source.extension"},
		{name: "extension without dot", mutate: func(c *Config) { c.Output.PageExtension = "md" }, want: "output.page_extension"},
		{name: "prefix with separator", mutate: func(c *Config) { c.Output.PagePrefix = "a/b" }, want: "output.page_prefix"},
		{name: "escaping bibliography dir", mutate: func(c *Config) { c.Output.BibliographyDir = "../up" }, want: "output.bibliography_dir"},
		{name: "zero workers", mutate: func(c *Config) { c.Build.Workers = 0 }, want: "build.workers"},
		{name: "unknown policy", mutate: func(c *Config) { c.Build.OnMissingMethod = "ignore" }, want: "build.on_missing_method"},
		{name: "unknown collision policy", mutate: func(c *Config) { c.Build.OnPageCollision = "rename" }, want: "build.on_page_collision"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
	require.NoError(t, Validate(Default()))
}

func TestNormalizeLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelWarn, NormalizeLogLevel(" WARNING "))
	assert.Equal(t, LogLevelInfo, NormalizeLogLevel("verbose"))
	assert.Equal(t, LogFormatText, NormalizeLogFormat("xml"))
}

func TestInit_WritesLoadableDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "annodoc.yaml")
	require.NoError(t, Init(path, false))

	cfg, err := Load(path, false)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	require.Error(t, Init(path, false))
	require.NoError(t, Init(path, true))
}
