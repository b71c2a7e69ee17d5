package main

import (
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/annodoc/cmd/annodoc/commands"
	ferrors "git.home.luguber.info/inful/annodoc/internal/foundation/errors"
	"git.home.luguber.info/inful/annodoc/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cli := &commands.CLI{}
	parser, err := kong.New(cli,
		kong.Name("annodoc"),
		kong.Description("Generate documentation pages and a bibliography from annotated source files."),
		kong.Vars{"version": version.String()},
		kong.Writers(stdout, stderr),
	)
	if err != nil {
		return ferrors.NewCLIErrorAdapter(true, slog.Default()).WithOutput(stderr).
			HandleError(ferrors.InternalError("invalid command definition").WithCause(err).Build())
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		var perr *kong.ParseError
		if errors.As(err, &perr) && perr.Context != nil {
			_ = perr.Context.PrintUsage(true)
		}
		return ferrors.NewCLIErrorAdapter(false, slog.Default()).WithOutput(stderr).
			HandleError(ferrors.UsageError(err.Error()).Build())
	}

	err = kctx.Run(&commands.Global{Logger: slog.Default()}, cli)
	return ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).WithOutput(stderr).HandleError(err)
}
