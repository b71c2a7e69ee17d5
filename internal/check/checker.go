// Package check verifies a generated documentation tree against the
// invariants a fresh build guarantees.
package check

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"git.home.luguber.info/inful/annodoc/internal/config"
	"git.home.luguber.info/inful/annodoc/internal/frontmatter"
	"git.home.luguber.info/inful/annodoc/internal/markdown"
)

// Options describes the layout of the output directory.
type Options struct {
	PagePrefix       string
	PageExtension    string
	BibliographyDir  string
	BibliographyFile string
	// RequireFingerprint reports pages without a fingerprint.
	RequireFingerprint bool
}

// OptionsFromConfig derives checker options from the build configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		PagePrefix:         cfg.Output.PagePrefix,
		PageExtension:      cfg.Output.PageExtension,
		BibliographyDir:    cfg.Output.BibliographyDir,
		BibliographyFile:   cfg.Output.BibliographyFile,
		RequireFingerprint: cfg.Output.FrontMatter,
	}
}

// BibliographyPath returns the bibliography page location relative to the
// output directory, slash separated.
func (o Options) BibliographyPath() string {
	return path.Join(o.BibliographyDir, o.BibliographyFile)
}

// document is one parsed output file.
type document struct {
	Path        string // relative, slash separated
	Fields      map[string]any
	HasFields   bool
	Body        []byte
	Markdown    markdown.Document
	parseIssues []Issue
}

// bibliographyIndex is the parsed master page, nil when it does not exist.
type bibliographyIndex struct {
	doc  *document
	urls map[string]struct{}
}

func (b *bibliographyIndex) has(url string) bool {
	_, ok := b.urls[url]
	return ok
}

// pageRule inspects one page.
type pageRule interface {
	Name() string
	CheckPage(page *document, bib *bibliographyIndex) []Issue
}

// Checker checks generated output directories.
type Checker struct {
	opts      Options
	pageRules []pageRule
}

// NewChecker creates a checker with the default rule set.
func NewChecker(opts Options) *Checker {
	return &Checker{
		opts: opts,
		pageRules: []pageRule{
			&fingerprintRule{require: opts.RequireFingerprint},
			&bibliographyLinkRule{target: opts.BibliographyPath()},
			&sourcesRule{},
			&titleRule{},
		},
	}
}

// Check reads every generated page in outputDir and the bibliography page and
// returns the issues found. I/O failures other than a missing bibliography are
// returned as errors.
func (c *Checker) Check(outputDir string) (*Result, error) {
	result := &Result{Issues: []Issue{}}

	bib, err := c.loadBibliography(outputDir)
	if err != nil {
		return nil, err
	}
	if bib != nil {
		result.Issues = append(result.Issues, bib.doc.parseIssues...)
		result.Issues = append(result.Issues, (&fingerprintRule{require: c.opts.RequireFingerprint}).CheckPage(bib.doc, bib)...)
		result.Issues = append(result.Issues, checkBibliographyOrder(bib.doc)...)
	}

	pages, err := c.listPages(outputDir)
	if err != nil {
		return nil, err
	}
	for _, rel := range pages {
		doc, err := loadDocument(outputDir, rel)
		if err != nil {
			return nil, err
		}
		result.PagesTotal++
		result.Issues = append(result.Issues, doc.parseIssues...)
		for _, rule := range c.pageRules {
			result.Issues = append(result.Issues, rule.CheckPage(doc, bib)...)
		}
	}
	return result, nil
}

func (c *Checker) loadBibliography(outputDir string) (*bibliographyIndex, error) {
	doc, err := loadDocument(outputDir, c.opts.BibliographyPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	idx := &bibliographyIndex{doc: doc, urls: make(map[string]struct{}, len(doc.Markdown.ListURLs))}
	for _, u := range doc.Markdown.ListURLs {
		idx.urls[u] = struct{}{}
	}
	return idx, nil
}

// listPages returns the generated pages at the output root, sorted.
func (c *Checker) listPages(outputDir string) ([]string, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return nil, fmt.Errorf("read output directory: %w", err)
	}
	var pages []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, c.opts.PagePrefix) || !strings.HasSuffix(name, c.opts.PageExtension) {
			continue
		}
		pages = append(pages, name)
	}
	slices.Sort(pages)
	return pages, nil
}

func loadDocument(outputDir, rel string) (*document, error) {
	// #nosec G304 -- rel is derived from the configured output layout.
	data, err := os.ReadFile(filepath.Join(outputDir, filepath.FromSlash(rel)))
	if err != nil {
		return nil, err
	}

	doc := &document{Path: rel, Fields: map[string]any{}}
	fm, body, had, splitErr := frontmatter.Split(data)
	if splitErr != nil {
		doc.Body = data
		doc.parseIssues = append(doc.parseIssues, frontMatterIssue(rel, splitErr))
	} else {
		doc.Body = body
		if had {
			fields, parseErr := frontmatter.ParseYAML(fm)
			if parseErr != nil {
				doc.parseIssues = append(doc.parseIssues, frontMatterIssue(rel, parseErr))
			} else {
				doc.Fields = fields
				doc.HasFields = true
			}
		}
	}
	doc.Markdown = markdown.Analyze(doc.Body)
	return doc, nil
}

func frontMatterIssue(rel string, err error) Issue {
	return Issue{
		FilePath: rel,
		Severity: SeverityError,
		Rule:     RuleUnreadableFrontMatter,
		Message:  err.Error(),
		Fix:      "Regenerate the output with: annodoc build",
	}
}
