package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/annodoc/internal/annotation"
	"git.home.luguber.info/inful/annodoc/internal/bibliography"
	"git.home.luguber.info/inful/annodoc/internal/config"
	"git.home.luguber.info/inful/annodoc/internal/fingerprint"
	ferrors "git.home.luguber.info/inful/annodoc/internal/foundation/errors"
	"git.home.luguber.info/inful/annodoc/internal/frontmatter"
	"git.home.luguber.info/inful/annodoc/internal/logfields"
	"git.home.luguber.info/inful/annodoc/internal/metrics"
	"git.home.luguber.info/inful/annodoc/internal/page"
	"git.home.luguber.info/inful/annodoc/internal/provenance"
)

// Builder executes documentation builds.
type Builder struct {
	recorder metrics.Recorder
}

// NewBuilder creates a Builder that records no metrics.
func NewBuilder() *Builder {
	return &Builder{recorder: metrics.NoopRecorder{}}
}

// WithRecorder sets the metrics recorder.
func (b *Builder) WithRecorder(r metrics.Recorder) *Builder {
	if r == nil {
		r = metrics.NoopRecorder{}
	}
	b.recorder = r
	return b
}

// run is the state of one build. Fields below mu are shared between workers.
type run struct {
	cfg       *config.Config
	source    DirSource
	sink      DirSink
	locator   *annotation.Locator
	assembler *page.Assembler
	agg       *bibliography.Aggregator
	commit    string
	recorder  metrics.Recorder

	// pageMu serializes claim and write under the overwrite policy, so the
	// file latest in discovery order is the one left on disk.
	pageMu sync.Mutex

	mu      sync.Mutex
	claimed map[string]pageClaim
	report  *Report
}

// pageClaim records which source file owns a page.
type pageClaim struct {
	rel   string
	order int
}

// Run executes a complete build: discover, assemble every documented file and
// write the bibliography. The first fatal error cancels the remaining work.
func (b *Builder) Run(ctx context.Context, req Request) (*Report, error) {
	start := time.Now()
	report := &Report{StartTime: start}

	err := b.run(ctx, req, report)

	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(start)
	b.recorder.ObserveBuildDuration(report.Duration)
	switch {
	case err == nil:
		report.Status = StatusSuccess
		b.recorder.IncBuildOutcome(metrics.BuildSuccess)
	case errors.Is(err, context.Canceled):
		report.Status = StatusCanceled
		b.recorder.IncBuildOutcome(metrics.BuildCanceled)
	default:
		report.Status = StatusFailed
		b.recorder.IncBuildOutcome(metrics.BuildFailed)
		slog.Debug("Build failed",
			slog.String("category", string(ferrors.GetCategory(err))),
			logfields.Error(err))
	}
	return report, err
}

func (b *Builder) run(ctx context.Context, req Request, report *Report) error {
	cfg := req.Config
	if cfg == nil {
		return ferrors.ConfigError("config required").Build()
	}
	if req.SearchDir == "" || req.OutputDir == "" {
		return ferrors.UsageError("search directory and output directory are required").Build()
	}

	bibRel := path.Join(cfg.Output.BibliographyDir, cfg.Output.BibliographyFile)
	report.BibliographyPath = bibRel

	r := &run{
		cfg:     cfg,
		source:  DirSource{Root: req.SearchDir, Extension: cfg.Source.Extension},
		sink:    DirSink{Root: req.OutputDir},
		locator: annotation.NewLocator(cfg.Source.RegistrationCall),
		assembler: page.NewAssembler(page.Options{
			TitleSuffix:      cfg.Pages.TitleSuffix,
			BibliographyLink: bibRel,
		}),
		agg:      bibliography.NewAggregator(),
		recorder: b.recorder,
		claimed:  make(map[string]pageClaim),
		report:   report,
	}

	if cfg.Build.ProvenanceCommit {
		r.commit = resolveCommit(req.SearchDir)
		report.Commit = r.commit
	}

	if cfg.Output.Clean {
		removed, err := r.sink.Clean(cfg.Output.PagePrefix, cfg.Output.PageExtension, bibRel)
		if err != nil {
			return ferrors.FileSystemError("cannot clean output directory").
				WithCause(err).
				WithContext("path", req.OutputDir).
				Build()
		}
		slog.Debug("Cleaned output directory", logfields.Path(req.OutputDir), logfields.Count(len(removed)))
	}

	files, err := r.discover(ctx)
	if err != nil {
		return err
	}
	report.Files = len(files)

	if err := r.assembleAll(ctx, files); err != nil {
		return err
	}

	if err := r.writeBibliography(bibRel); err != nil {
		return err
	}

	slices.Sort(report.Pages)
	slices.SortFunc(report.Warnings, func(a, b *ferrors.ClassifiedError) int {
		return strings.Compare(a.ContextString(), b.ContextString())
	})
	slog.Info("Build completed",
		logfields.Path(req.OutputDir),
		slog.Int("files", report.Files),
		slog.Int("documented", report.Documented),
		slog.Int("skipped", report.Skipped),
		logfields.Sources(report.Sources))
	return nil
}

func resolveCommit(dir string) string {
	commit, err := provenance.Commit(dir)
	if err != nil {
		if errors.Is(err, provenance.ErrNoCommit) {
			slog.Debug("No provenance commit", logfields.Path(dir), logfields.Error(err))
		} else {
			slog.Warn("Failed to resolve provenance commit", logfields.Path(dir), logfields.Error(err))
		}
		return ""
	}
	slog.Debug("Resolved provenance commit", logfields.Commit(commit))
	return commit
}

func (r *run) observeStage(stage metrics.Stage, start time.Time) {
	d := time.Since(start)
	r.recorder.ObserveStageDuration(stage, d)
	slog.Debug("Stage finished", logfields.Stage(string(stage)), logfields.DurationMS(float64(d.Microseconds())/1000))
}

func (r *run) discover(ctx context.Context) ([]SourceFile, error) {
	start := time.Now()
	defer r.observeStage(metrics.StageDiscover, start)

	var files []SourceFile
	for f, err := range r.source.Files() {
		if err != nil {
			return nil, ferrors.FileSystemError("cannot search for source files").
				WithCause(err).
				WithContext("path", r.source.Root).
				Build()
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	slog.Debug("Discovered source files", logfields.Path(r.source.Root), logfields.Count(len(files)))
	return files, nil
}

// assembleAll processes files with at most build.workers in flight. With one
// worker, files are processed strictly in discovery order.
func (r *run) assembleAll(ctx context.Context, files []SourceFile) error {
	start := time.Now()
	defer r.observeStage(metrics.StageAssemble, start)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.cfg.Build.Workers, 1))
	for i, f := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			return r.processFile(gctx, i, f)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (r *run) processFile(ctx context.Context, order int, f SourceFile) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	outcome, err := r.documentFile(order, f)
	if err != nil {
		r.recorder.IncFileOutcome(metrics.FileFailed)
		return err
	}
	r.recorder.IncFileOutcome(outcome)

	r.mu.Lock()
	defer r.mu.Unlock()
	switch outcome {
	case metrics.FileDocumented:
		r.report.Documented++
	case metrics.FileUndocumented:
		r.report.Undocumented++
	case metrics.FileSkipped:
		r.report.Skipped++
	}
	return nil
}

// documentFile runs scan, parse, assemble and write for one file. order is the
// file's position in discovery order.
func (r *run) documentFile(order int, f SourceFile) (metrics.FileOutcome, error) {
	text, err := r.source.Read(f)
	if err != nil {
		return "", ferrors.FileSystemError("cannot read source file").
			WithCause(err).
			WithContext("file", f.Rel).
			Build()
	}

	blocks, err := annotation.Scan(text)
	if err != nil {
		return "", ferrors.AnnotationError("invalid annotation").
			WithCause(err).
			WithContext("file", f.Rel).
			Build()
	}
	if len(blocks) == 0 {
		slog.Debug("No annotations", logfields.File(f.Rel))
		return metrics.FileUndocumented, nil
	}

	parsed := make([]annotation.Parsed, len(blocks))
	for i, blk := range blocks {
		parsed[i] = annotation.Parse(blk)
	}

	p, err := r.assembler.Assemble(page.Input{
		SourcePath: f.Rel,
		Blocks:     parsed,
		Method:     func() (string, error) { return r.locator.Locate(text) },
		Commit:     r.commit,
		OnMalformedConf: func(b annotation.Parsed, err error) {
			slog.Debug("Omitting malformed conf block",
				logfields.File(f.Rel), logfields.Line(b.Line), logfields.Error(err))
		},
	})
	if err != nil {
		if errors.Is(err, annotation.ErrMissingMethodIdentifier) && r.cfg.Build.OnMissingMethod == config.MissingMethodSkip {
			r.warn(ferrors.WrapError(err, ferrors.CategoryAnnotation, "skipped file without registration call").
				Warning().
				WithContext("file", f.Rel).
				Build())
			return metrics.FileSkipped, nil
		}
		return "", ferrors.AnnotationError("cannot document file").
			WithCause(err).
			WithContext("file", f.Rel).
			Build()
	}

	if err := r.agg.Add(p.Sources...); err != nil {
		return "", ferrors.InternalError("cannot record sources").WithCause(err).Build()
	}

	fields := map[string]any{
		"uid":    fingerprint.UID(f.Rel),
		"source": f.Rel,
	}
	if p.Title != "" {
		fields["title"] = p.Title
	}
	name := r.pageName(f)
	written, err := r.publish(name, order, f.Rel, fields, p.Text)
	if err != nil {
		return "", err
	}
	if !written {
		return metrics.FileDocumented, nil
	}

	slog.Debug("Wrote page",
		logfields.File(f.Rel),
		logfields.Page(name),
		logfields.Method(p.Method),
		logfields.Sources(len(p.Sources)))
	return metrics.FileDocumented, nil
}

// pageName maps a source file to its page: the prefix plus the base name with
// the page extension replacing the source extension.
func (r *run) pageName(f SourceFile) string {
	base := path.Base(f.Rel)
	return r.cfg.Output.PagePrefix + strings.TrimSuffix(base, path.Ext(base)) + r.cfg.Output.PageExtension
}

// publish claims name for the file at order and writes its page. It reports
// false when a file later in discovery order already owns the page.
func (r *run) publish(name string, order int, rel string, fields map[string]any, body string) (bool, error) {
	if r.cfg.Build.OnPageCollision == config.PageCollisionOverwrite {
		r.pageMu.Lock()
		defer r.pageMu.Unlock()
	}
	owned, err := r.claim(name, order, rel)
	if err != nil || !owned {
		return false, err
	}
	return true, r.write(name, fields, body)
}

func (r *run) claim(name string, order int, rel string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, taken := r.claimed[name]
	if !taken {
		r.claimed[name] = pageClaim{rel: rel, order: order}
		r.report.Pages = append(r.report.Pages, name)
		return true, nil
	}
	if r.cfg.Build.OnPageCollision != config.PageCollisionOverwrite {
		return false, ferrors.BuildError("two source files map to the same page").
			WithCause(fmt.Errorf("%w: %s and %s", ErrPageCollision, prev.rel, rel)).
			WithContext("page", name).
			WithContext("file", rel).
			Build()
	}

	winner, loser := rel, prev.rel
	if prev.order > order {
		winner, loser = prev.rel, rel
	} else {
		r.claimed[name] = pageClaim{rel: rel, order: order}
	}
	r.warnLocked(ferrors.WrapError(ErrPageCollision, ferrors.CategoryBuild, "page overwritten by a later file").
		Warning().
		WithContext("page", name).
		WithContext("file", loser).
		WithContext("kept", winner).
		Build())
	return winner == rel, nil
}

// warn records a non-fatal problem in the report and logs it.
func (r *run) warn(w *ferrors.ClassifiedError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnLocked(w)
}

func (r *run) warnLocked(w *ferrors.ClassifiedError) {
	r.report.Warnings = append(r.report.Warnings, w)
	file, _ := w.Context().GetString("file")
	slog.Warn(w.Message(), logfields.File(file), logfields.Error(w.Unwrap()))
}

// write renders optional front matter and stores the page.
func (r *run) write(rel string, fields map[string]any, body string) error {
	data := []byte(body)
	if r.cfg.Output.FrontMatter {
		if _, err := fingerprint.Stamp(fields, data); err != nil {
			return ferrors.InternalError("cannot fingerprint page").WithCause(err).WithContext("page", rel).Build()
		}
		fm, err := frontmatter.SerializeYAML(fields)
		if err != nil {
			return ferrors.InternalError("cannot serialize front matter").WithCause(err).WithContext("page", rel).Build()
		}
		data = frontmatter.Join(fm, data)
	}

	if err := r.sink.Write(rel, data); err != nil {
		return ferrors.FileSystemError("cannot write page").
			WithCause(err).
			WithContext("page", rel).
			Build()
	}
	r.recorder.IncPagesWritten()
	return nil
}

func (r *run) writeBibliography(rel string) error {
	start := time.Now()
	defer r.observeStage(metrics.StageBibliography, start)

	bib := r.agg.Finalize()
	title := r.cfg.Pages.BibliographyTitle
	if title == "" {
		title = bibliography.DefaultTitle
	}
	fields := map[string]any{
		"title": title,
		"uid":   fingerprint.UID(rel),
	}
	if err := r.write(rel, fields, bib.Render(title)); err != nil {
		return err
	}

	r.report.Sources = len(bib.URLs)
	r.recorder.SetBibliographySize(len(bib.URLs))
	slog.Debug("Wrote bibliography", logfields.Page(rel), logfields.Sources(len(bib.URLs)))
	return nil
}
