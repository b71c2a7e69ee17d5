package commands

import (
	"fmt"
	"io"

	"git.home.luguber.info/inful/annodoc/internal/check"
	ferrors "git.home.luguber.info/inful/annodoc/internal/foundation/errors"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	OutputDir string `arg:"" name:"output-dir" help:"Generated output directory to check"`
	Format    string `short:"f" default:"text" help:"Output format (text or json)" enum:"text,json"`

	out io.Writer
}

func (c *CheckCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}

	result, err := check.NewChecker(check.OptionsFromConfig(cfg)).Check(c.OutputDir)
	if err != nil {
		return ferrors.FileSystemError("cannot check output directory").
			WithCause(err).
			WithContext("path", c.OutputDir).
			Build()
	}

	if err := check.NewFormatter(c.Format).Format(outWriter(c.out), result, c.OutputDir); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if result.HasErrors() {
		return ferrors.BuildError(fmt.Sprintf("output check found %d error(s)", result.ErrorCount())).
			WithContext("path", c.OutputDir).
			Build()
	}
	return nil
}
