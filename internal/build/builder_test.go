package build

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/annodoc/internal/annotation"
	"git.home.luguber.info/inful/annodoc/internal/check"
	"git.home.luguber.info/inful/annodoc/internal/config"
	ferrors "git.home.luguber.info/inful/annodoc/internal/foundation/errors"
	"git.home.luguber.info/inful/annodoc/internal/metrics"
)

const fooSource = `/* #name Foo */
void foo() {
  /* #step Align: rotate points */
}
register_method("foo", foo);
`

func plainConfig() *config.Config {
	cfg := config.Default()
	cfg.Output.FrontMatter = false
	return cfg
}

func writeSources(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return dir
}

func runBuild(t *testing.T, src string, cfg *config.Config) (string, *Report, error) {
	t.Helper()
	out := filepath.Join(t.TempDir(), "out")
	report, err := NewBuilder().Run(context.Background(), Request{SearchDir: src, OutputDir: out, Config: cfg})
	return out, report, err
}

func readOut(t *testing.T, out, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(out, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func TestRun_FooScenario(t *testing.T) {
	src := writeSources(t, map[string]string{"foo.cpp": fooSource})

	out, report, err := runBuild(t, src, plainConfig())
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, report.Status)
	assert.Equal(t, []string{"icp_foo.md"}, report.Pages)
	assert.Equal(t, "extra/sources.md", report.BibliographyPath)

	want := "# Foo\n\n" +
		"## Usage\n\n" +
		"Create an instance by its registered name, `\"foo\"`. It has no configuration options.\n\n" +
		"## Description\n\n" +
		"1. **Align**: rotate points\n\n" +
		"---\n\n" +
		"All cited sources are collected in the [bibliography](extra/sources.md).\n\n" +
		"*Automatically generated from `foo.cpp`.*\n"
	assert.Equal(t, want, readOut(t, out, "icp_foo.md"))
	assert.Equal(t, "# Sources\n\nNo sources are cited in the documentation.\n", readOut(t, out, "extra/sources.md"))
}

func TestRun_FilesWithoutAnnotationsProduceNoPage(t *testing.T) {
	src := writeSources(t, map[string]string{
		"foo.cpp":         fooSource,
		"plain.cpp":       "// ordinary comment\nint main() { return 0; }\n",
		"notes/readme.md": "/* #name Ignored */\n",
	})

	out, report, err := runBuild(t, src, plainConfig())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Files)
	assert.Equal(t, 1, report.Documented)
	assert.Equal(t, 1, report.Undocumented)
	assert.NoFileExists(t, filepath.Join(out, "icp_plain.md"))
	assert.NoFileExists(t, filepath.Join(out, "icp_readme.md"))
}

func TestRun_SharedSourceListedOnce(t *testing.T) {
	src := writeSources(t, map[string]string{
		"a.cpp": "/* #desc First. Sources: https://example.com/paper https://z.org */\n",
		"b/b.cpp": `/* #desc Second.
   Sources:
     https://example.com/paper
     https://a.org/ref
*/`,
	})

	out, report, err := runBuild(t, src, plainConfig())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Sources)

	bib := readOut(t, out, "extra/sources.md")
	assert.Equal(t, 1, strings.Count(bib, "https://example.com/paper"))
	assert.Contains(t, bib, "- https://a.org/ref\n- https://example.com/paper\n- https://z.org\n")

	page := readOut(t, out, "icp_b.md")
	assert.Contains(t, page, "- https://example.com/paper\n- https://a.org/ref\n")
}

func TestRun_Idempotent(t *testing.T) {
	src := writeSources(t, map[string]string{
		"foo.cpp": fooSource,
		"bar.cpp": "/* #conf \"tolerance\" stopping threshold */\n/* #name Bar\n Sources: https://b.org */\nregister_method(\"bar\")\n",
	})
	cfg := config.Default()
	out := filepath.Join(t.TempDir(), "out")

	snapshot := func() map[string]string {
		got := map[string]string{}
		for _, rel := range []string{"icp_foo.md", "icp_bar.md", "extra/sources.md"} {
			got[rel] = readOut(t, out, rel)
		}
		return got
	}

	_, err := NewBuilder().Run(context.Background(), Request{SearchDir: src, OutputDir: out, Config: cfg})
	require.NoError(t, err)
	first := snapshot()
	_, err = NewBuilder().Run(context.Background(), Request{SearchDir: src, OutputDir: out, Config: cfg})
	require.NoError(t, err)
	assert.Equal(t, first, snapshot())

	assert.True(t, strings.HasPrefix(first["icp_bar.md"], "---\nfingerprint: "))
	assert.Contains(t, first["icp_bar.md"], "\nsource: bar.cpp\ntitle: Bar\nuid: ")
	assert.Contains(t, first["icp_bar.md"], "| \"tolerance\" | stopping threshold |")
}

func TestRun_OutputPassesCheck(t *testing.T) {
	src := writeSources(t, map[string]string{
		"foo.cpp": fooSource,
		"trim.cpp": `/* #name Trimmed
   Sources: https://example.com/trimmed */
/* #step Trim: drop the worst pairs
   Sources: https://example.com/paper */
/* #desc Steps only. */
register_method("trimmed")`,
		"steps_only.cpp": "/* #step Align */\n",
	})
	cfg := config.Default()

	out, _, err := runBuild(t, src, cfg)
	require.NoError(t, err)

	res, err := check.NewChecker(check.OptionsFromConfig(cfg)).Check(out)
	require.NoError(t, err)
	assert.False(t, res.HasErrors(), "%+v", res.Issues)
	assert.Equal(t, 3, res.PagesTotal)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, check.RuleMissingTitle, res.Issues[0].Rule)
	assert.Equal(t, "icp_steps_only.md", res.Issues[0].FilePath)
}

func TestRun_ConfOnlyPageWithoutFrontMatterPassesCheck(t *testing.T) {
	src := writeSources(t, map[string]string{
		"only.cpp": "/* #conf \"tolerance\" stopping threshold */\n",
	})
	cfg := plainConfig()

	out, report, err := runBuild(t, src, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"icp_only.md"}, report.Pages)
	assert.False(t, strings.HasPrefix(readOut(t, out, "icp_only.md"), "---"))

	res, err := check.NewChecker(check.OptionsFromConfig(cfg)).Check(out)
	require.NoError(t, err)
	assert.False(t, res.HasErrors(), "%+v", res.Issues)
	for _, issue := range res.Issues {
		assert.NotEqual(t, check.RuleUnreadableFrontMatter, issue.Rule)
	}
}

func TestRun_CRLFSourcesProduceLFPages(t *testing.T) {
	src := writeSources(t, map[string]string{
		"foo.cpp": strings.ReplaceAll(fooSource, "\n", "\r\n"),
	})

	out, _, err := runBuild(t, src, plainConfig())
	require.NoError(t, err)
	page := readOut(t, out, "icp_foo.md")
	assert.NotContains(t, page, "\r")
	assert.Contains(t, page, "1. **Align**: rotate points\n\n")
}

func TestRun_MissingMethod(t *testing.T) {
	files := map[string]string{
		"foo.cpp":    fooSource,
		"orphan.cpp": "/* #name Orphan */\n/* #desc Cites https://x.org. Sources: https://x.org */\n",
	}

	t.Run("fail aborts the build", func(t *testing.T) {
		_, report, err := runBuild(t, writeSources(t, files), plainConfig())
		require.Error(t, err)
		assert.True(t, errors.Is(err, annotation.ErrMissingMethodIdentifier))
		assert.Equal(t, ferrors.CategoryAnnotation, ferrors.GetCategory(err))
		assert.Equal(t, StatusFailed, report.Status)
	})

	t.Run("skip omits only that file", func(t *testing.T) {
		cfg := plainConfig()
		cfg.Build.OnMissingMethod = config.MissingMethodSkip

		out, report, err := runBuild(t, writeSources(t, files), cfg)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Skipped)
		assert.Equal(t, []string{"icp_foo.md"}, report.Pages)
		assert.NotContains(t, readOut(t, out, "extra/sources.md"), "https://x.org")

		require.Len(t, report.Warnings, 1)
		w := report.Warnings[0]
		assert.Equal(t, ferrors.SeverityWarning, w.Severity())
		assert.Equal(t, ferrors.CategoryAnnotation, w.Category())
		assert.True(t, errors.Is(w, annotation.ErrMissingMethodIdentifier))
		file, ok := w.Context().GetString("file")
		require.True(t, ok)
		assert.Equal(t, "orphan.cpp", file)
	})
}

func TestRun_PageCollision(t *testing.T) {
	src := writeSources(t, map[string]string{
		"a/trim.cpp": "/* #desc one */\n",
		"b/trim.cpp": "/* #desc two */\n",
	})

	_, _, err := runBuild(t, src, plainConfig())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPageCollision))
	assert.Equal(t, ferrors.CategoryBuild, ferrors.GetCategory(err))
}

func TestRun_PageCollisionOverwrite(t *testing.T) {
	files := map[string]string{
		"a/trim.cpp": "/* #desc one. Sources: https://one.org */\n",
		"b/trim.cpp": "/* #desc two. Sources: https://two.org */\n",
		"c.cpp":      "/* #desc three */\n",
	}
	for _, workers := range []int{1, 4} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			cfg := plainConfig()
			cfg.Build.OnPageCollision = config.PageCollisionOverwrite
			cfg.Build.Workers = workers

			out, report, err := runBuild(t, writeSources(t, files), cfg)
			require.NoError(t, err)
			assert.Equal(t, []string{"icp_c.md", "icp_trim.md"}, report.Pages)

			page := readOut(t, out, "icp_trim.md")
			assert.Contains(t, page, "two.")
			assert.NotContains(t, page, "one.")
			assert.Contains(t, page, "`b/trim.cpp`")

			bib := readOut(t, out, "extra/sources.md")
			assert.Contains(t, bib, "- https://one.org\n- https://two.org\n")

			require.Len(t, report.Warnings, 1)
			w := report.Warnings[0]
			assert.Equal(t, ferrors.SeverityWarning, w.Severity())
			assert.True(t, errors.Is(w, ErrPageCollision))
			loser, _ := w.Context().GetString("file")
			kept, _ := w.Context().GetString("kept")
			assert.Equal(t, "a/trim.cpp", loser)
			assert.Equal(t, "b/trim.cpp", kept)
		})
	}
}

func TestRun_UnterminatedBlock(t *testing.T) {
	src := writeSources(t, map[string]string{"bad.cpp": "/* #step never closed\n"})

	_, _, err := runBuild(t, src, plainConfig())
	require.Error(t, err)
	assert.True(t, errors.Is(err, annotation.ErrUnterminatedBlock))
}

func TestRun_ParallelMatchesSequential(t *testing.T) {
	files := map[string]string{}
	for i := range 24 {
		files[fmt.Sprintf("dir%d/m%02d.cpp", i%3, i)] = fmt.Sprintf(
			"/* #name M%d\n Sources: https://site%d.org */\n/* #step S: do %d\n Sources: https://shared.org */\nregister_method(\"m%d\")\n",
			i, i%5, i, i)
	}
	src := writeSources(t, files)

	seqOut, seq, err := runBuild(t, src, config.Default())
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Build.Workers = 4
	parOut, par, err := runBuild(t, src, cfg)
	require.NoError(t, err)

	require.Equal(t, seq.Pages, par.Pages)
	assert.Len(t, par.Pages, 24)
	assert.Equal(t, 6, par.Sources)
	for _, rel := range append(par.Pages, par.BibliographyPath) {
		assert.Equal(t, readOut(t, seqOut, rel), readOut(t, parOut, rel), rel)
	}
}

func TestRun_CleanRemovesStalePages(t *testing.T) {
	src := writeSources(t, map[string]string{"foo.cpp": fooSource})
	out := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(out, "icp_removed.md"), []byte("stale"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(out, "notes.md"), []byte("keep"), 0o600))

	cfg := plainConfig()
	cfg.Output.Clean = true
	_, err := NewBuilder().Run(context.Background(), Request{SearchDir: src, OutputDir: out, Config: cfg})
	require.NoError(t, err)

	assert.NoFileExists(t, filepath.Join(out, "icp_removed.md"))
	assert.FileExists(t, filepath.Join(out, "notes.md"))
	assert.FileExists(t, filepath.Join(out, "icp_foo.md"))
}

func TestRun_MissingSearchDir(t *testing.T) {
	_, report, err := runBuild(t, filepath.Join(t.TempDir(), "absent"), plainConfig())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSearchDir))
	assert.Equal(t, ferrors.CategoryFileSystem, ferrors.GetCategory(err))
	assert.Equal(t, StatusFailed, report.Status)
}

func TestRun_CanceledContext(t *testing.T) {
	src := writeSources(t, map[string]string{"foo.cpp": fooSource})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := NewBuilder().Run(ctx, Request{SearchDir: src, OutputDir: t.TempDir(), Config: plainConfig()})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatusCanceled, report.Status)
}

func TestRun_ProvenanceCommit(t *testing.T) {
	src := writeSources(t, map[string]string{"foo.cpp": fooSource})
	repo, err := git.PlainInit(src, false)
	require.NoError(t, err)
	w, err := repo.Worktree()
	require.NoError(t, err)
	_, err = w.Add(".")
	require.NoError(t, err)
	hash, err := w.Commit("Initial commit", &git.CommitOptions{
		Author: &object.Signature{Name: "Test User", Email: "test@example.com"},
	})
	require.NoError(t, err)

	cfg := plainConfig()
	cfg.Build.ProvenanceCommit = true
	out, report, err := runBuild(t, src, cfg)
	require.NoError(t, err)

	short := hash.String()[:12]
	assert.Equal(t, short, report.Commit)
	assert.Contains(t, readOut(t, out, "icp_foo.md"), "*Automatically generated from `foo.cpp` at commit `"+short+"`.*\n")
}

func TestRun_RecordsMetrics(t *testing.T) {
	src := writeSources(t, map[string]string{
		"foo.cpp":   fooSource,
		"plain.cpp": "int x;\n",
	})
	rec := metrics.NewPrometheusRecorder(prom.NewRegistry())

	out := filepath.Join(t.TempDir(), "out")
	_, err := NewBuilder().WithRecorder(rec).Run(context.Background(), Request{SearchDir: src, OutputDir: out, Config: plainConfig()})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "annodoc.prom")
	require.NoError(t, rec.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "annodoc_pages_written_total 2")
	assert.Contains(t, text, `annodoc_source_files_total{outcome="documented"} 1`)
	assert.Contains(t, text, `annodoc_source_files_total{outcome="undocumented"} 1`)
	assert.Contains(t, text, `annodoc_build_outcomes_total{outcome="success"} 1`)
}

func TestDirSource_LexicalOrderAndFilter(t *testing.T) {
	src := writeSources(t, map[string]string{
		"b.cpp":         "",
		"a/z.cpp":       "",
		"a/b.h":         "",
		".git/hook.cpp": "",
		"c.cpp":         "",
	})

	var rels []string
	for f, err := range (DirSource{Root: src, Extension: ".cpp"}).Files() {
		require.NoError(t, err)
		rels = append(rels, f.Rel)
	}
	assert.Equal(t, []string{"a/z.cpp", "b.cpp", "c.cpp"}, rels)
}
