package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/annodoc/internal/config"
	ferrors "git.home.luguber.info/inful/annodoc/internal/foundation/errors"
	"git.home.luguber.info/inful/annodoc/internal/logfields"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"annodoc.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build BuildCmd `cmd:"" default:"withargs" help:"Generate documentation pages from annotated sources (default command; a search directory named check, watch, init or build must be written as ./check etc.)"`
	Check CheckCmd `cmd:"" help:"Check a generated output directory for consistency"`
	Watch WatchCmd `cmd:"" help:"Build, then rebuild whenever sources change"`
	Init  InitCmd  `cmd:"" help:"Write a default configuration file"`
}

// AfterApply runs after flag parsing; sets up logging before any config is read.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := config.LogLevelInfo
	if c.Verbose {
		level = config.LogLevelDebug
	}
	slog.SetDefault(newLogger(os.Stderr, level, config.LogFormatText))
	return nil
}

// LoadConfig reads the configuration file and applies its logging settings.
// The default path may be absent; an explicitly named file must exist.
func (c *CLI) LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.Config, c.Config == config.DefaultPath)
	if err != nil {
		return nil, ferrors.ConfigError("cannot load configuration").
			WithCause(err).
			WithContext("path", c.Config).
			Build()
	}
	level := cfg.Logging.Level
	if c.Verbose {
		level = config.LogLevelDebug
	}
	slog.SetDefault(newLogger(os.Stderr, level, cfg.Logging.Format))
	slog.Debug("Configuration loaded", logfields.Path(c.Config))
	return cfg, nil
}

func newLogger(w io.Writer, level config.LogLevel, format config.LogFormat) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level.SlogLevel()}
	if format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func outWriter(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}
