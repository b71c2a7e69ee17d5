package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"git.home.luguber.info/inful/annodoc/internal/build"
	"git.home.luguber.info/inful/annodoc/internal/config"
	ferrors "git.home.luguber.info/inful/annodoc/internal/foundation/errors"
	"git.home.luguber.info/inful/annodoc/internal/logfields"
	"git.home.luguber.info/inful/annodoc/internal/metrics"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	SearchDir   string `arg:"" name:"search-dir" help:"Directory searched recursively for source files"`
	OutputDir   string `arg:"" name:"output-dir" help:"Directory receiving the generated pages (created if absent)"`
	Workers     int    `short:"w" help:"Override build.workers"`
	Clean       bool   `help:"Remove previously generated pages before building"`
	MetricsFile string `name:"metrics-file" help:"Write build metrics in Prometheus text format to this file"`

	out io.Writer
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	if err := b.applyOverrides(cfg); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	report, err := RunBuild(ctx, cfg, b.SearchDir, b.OutputDir, b.MetricsFile)
	if err != nil {
		return err
	}
	w := outWriter(b.out)
	for _, warning := range report.Warnings {
		file, _ := warning.Context().GetString("file")
		_, _ = fmt.Fprintf(w, "Warning: %s: %s\n", file, warning.Message())
	}
	_, _ = fmt.Fprintf(w, "Wrote %d page%s and %d source%s to %s\n",
		len(report.Pages), plural(len(report.Pages)), report.Sources, plural(report.Sources), b.OutputDir)
	return nil
}

func (b *BuildCmd) applyOverrides(cfg *config.Config) error {
	if b.Workers != 0 {
		cfg.Build.Workers = b.Workers
	}
	if b.Clean {
		cfg.Output.Clean = true
	}
	if err := config.Validate(cfg); err != nil {
		return ferrors.ConfigError("invalid command-line override").WithCause(err).Build()
	}
	return nil
}

// RunBuild runs one build and, when metricsFile is set, exports its metrics
// even if the build failed.
func RunBuild(ctx context.Context, cfg *config.Config, searchDir, outputDir, metricsFile string) (*build.Report, error) {
	builder := build.NewBuilder()
	var recorder *metrics.PrometheusRecorder
	if metricsFile != "" {
		recorder = metrics.NewPrometheusRecorder(nil)
		builder.WithRecorder(recorder)
	}

	report, err := builder.Run(ctx, build.Request{
		SearchDir: searchDir,
		OutputDir: outputDir,
		Config:    cfg,
	})

	if recorder != nil {
		if werr := recorder.WriteTextfile(metricsFile); werr != nil {
			if err == nil {
				return report, ferrors.FileSystemError("cannot write metrics file").
					WithCause(werr).
					WithContext("path", metricsFile).
					Build()
			}
			slog.Warn("Metrics file not written", logfields.Path(metricsFile), logfields.Error(werr))
		}
	}
	return report, err
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
