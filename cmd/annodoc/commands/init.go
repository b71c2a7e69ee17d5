package commands

import (
	"fmt"
	"io"

	"git.home.luguber.info/inful/annodoc/internal/config"
	ferrors "git.home.luguber.info/inful/annodoc/internal/foundation/errors"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`

	out io.Writer
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	if err := config.Init(root.Config, i.Force); err != nil {
		return ferrors.ConfigError("cannot write configuration").
			WithCause(err).
			WithContext("path", root.Config).
			Build()
	}
	_, _ = fmt.Fprintf(outWriter(i.out), "Wrote configuration to %s\n", root.Config)
	return nil
}
