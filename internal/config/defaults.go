package config

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			Extension:        ".cpp",
			RegistrationCall: "register_method",
		},
		Output: OutputConfig{
			PagePrefix:       "icp_",
			PageExtension:    ".md",
			BibliographyDir:  "extra",
			BibliographyFile: "sources.md",
			FrontMatter:      true,
		},
		Pages: PagesConfig{
			BibliographyTitle: "Sources",
		},
		Build: BuildConfig{
			Workers:         1,
			OnMissingMethod: MissingMethodFail,
			OnPageCollision: PageCollisionFail,
		},
		Logging: LoggingConfig{
			Level:  LogLevelInfo,
			Format: LogFormatText,
		},
	}
}

// normalize canonicalizes enum-like fields and fills blanks left by an explicit
// empty value in the file.
func (c *Config) normalize() {
	d := Default()
	if c.Source.RegistrationCall == "" {
		c.Source.RegistrationCall = d.Source.RegistrationCall
	}
	if c.Output.BibliographyFile == "" {
		c.Output.BibliographyFile = d.Output.BibliographyFile
	}
	if c.Pages.BibliographyTitle == "" {
		c.Pages.BibliographyTitle = d.Pages.BibliographyTitle
	}
	c.Build.OnMissingMethod = NormalizeMissingMethodPolicy(string(c.Build.OnMissingMethod))
	c.Build.OnPageCollision = NormalizePageCollisionPolicy(string(c.Build.OnPageCollision))
	c.Logging.Level = NormalizeLogLevel(string(c.Logging.Level))
	c.Logging.Format = NormalizeLogFormat(string(c.Logging.Format))
}
