package commands

import (
	"context"
	"time"

	"git.home.luguber.info/inful/annodoc/internal/build"
	ferrors "git.home.luguber.info/inful/annodoc/internal/foundation/errors"
	"git.home.luguber.info/inful/annodoc/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	SearchDir string        `arg:"" name:"search-dir" help:"Directory searched recursively for source files"`
	OutputDir string        `arg:"" name:"output-dir" help:"Directory receiving the generated pages"`
	Interval  time.Duration `help:"Additionally rebuild on this interval (0 disables)" default:"0s"`
	Debounce  time.Duration `help:"Quiet period after the last change before rebuilding" default:"300ms"`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	if w.Interval < 0 || w.Debounce < 0 {
		return ferrors.UsageError("--interval and --debounce must not be negative").Build()
	}
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}

	watcher, err := watch.New(watch.Options{
		SearchDir: w.SearchDir,
		Extension: cfg.Source.Extension,
		Debounce:  w.Debounce,
		Interval:  w.Interval,
	}, func(ctx context.Context) error {
		_, err := build.NewBuilder().Run(ctx, build.Request{
			SearchDir: w.SearchDir,
			OutputDir: w.OutputDir,
			Config:    cfg,
		})
		return err
	})
	if err != nil {
		return ferrors.UsageError(err.Error()).Build()
	}

	ctx, stop := signalContext()
	defer stop()
	if err := watcher.Run(ctx); err != nil {
		return ferrors.FileSystemError("cannot watch search directory").
			WithCause(err).
			WithContext("path", w.SearchDir).
			Build()
	}
	return nil
}
