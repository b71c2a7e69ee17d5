package check

import (
	"fmt"
	"path"
	"strings"

	"git.home.luguber.info/inful/annodoc/internal/fingerprint"
)

const regenerateFix = "Regenerate the output with: annodoc build"

// fingerprintRule verifies the content fingerprint stored in front matter.
type fingerprintRule struct {
	require bool
}

func (r *fingerprintRule) Name() string { return RuleFingerprintMismatch }

func (r *fingerprintRule) CheckPage(page *document, _ *bibliographyIndex) []Issue {
	if _, ok := page.Fields[fingerprint.Field]; !ok {
		if !r.require {
			return nil
		}
		return []Issue{{
			FilePath: page.Path,
			Severity: SeverityError,
			Rule:     r.Name(),
			Message:  "Missing fingerprint in front matter",
			Fix:      regenerateFix,
		}}
	}

	stored, computed, ok, err := fingerprint.Verify(page.Fields, page.Body)
	if err != nil {
		return []Issue{{FilePath: page.Path, Severity: SeverityError, Rule: r.Name(), Message: err.Error()}}
	}
	if ok {
		return nil
	}
	return []Issue{{
		FilePath:    page.Path,
		Severity:    SeverityError,
		Rule:        r.Name(),
		Message:     "Fingerprint does not match page content",
		Explanation: fmt.Sprintf("Stored %q, computed %q. The page was edited after it was generated.", stored, computed),
		Fix:         regenerateFix,
	}}
}

// bibliographyLinkRule requires the footer cross-reference to the master page.
type bibliographyLinkRule struct {
	target string
}

func (r *bibliographyLinkRule) Name() string { return RuleMissingBibliographyLink }

func (r *bibliographyLinkRule) CheckPage(page *document, bib *bibliographyIndex) []Issue {
	linked := false
	for _, l := range page.Markdown.Links {
		if path.Clean(l.Destination) == r.target {
			linked = true
			break
		}
	}
	switch {
	case !linked:
		return []Issue{{
			FilePath: page.Path,
			Severity: SeverityError,
			Rule:     r.Name(),
			Message:  "Page does not link to the bibliography " + r.target,
			Fix:      regenerateFix,
		}}
	case bib == nil:
		return []Issue{{
			FilePath: page.Path,
			Severity: SeverityError,
			Rule:     r.Name(),
			Message:  "Bibliography link points to a missing file " + r.target,
			Fix:      regenerateFix,
		}}
	}
	return nil
}

// sourcesRule requires every cited URL to be listed in the bibliography.
type sourcesRule struct{}

func (r *sourcesRule) Name() string { return RuleSourceNotInBibliography }

func (r *sourcesRule) CheckPage(page *document, bib *bibliographyIndex) []Issue {
	if bib == nil {
		return nil
	}
	var issues []Issue
	for _, u := range page.Markdown.ListURLs {
		if bib.has(u) {
			continue
		}
		issues = append(issues, Issue{
			FilePath: page.Path,
			Severity: SeverityError,
			Rule:     r.Name(),
			Message:  "Source is not listed in the bibliography: " + u,
			Fix:      regenerateFix,
		})
	}
	return issues
}

// titleRule warns about pages without a level-1 heading. Files with steps or
// descriptions but no #name block render this way.
type titleRule struct{}

func (r *titleRule) Name() string { return RuleMissingTitle }

func (r *titleRule) CheckPage(page *document, _ *bibliographyIndex) []Issue {
	if _, ok := page.Markdown.Title(); ok {
		return nil
	}
	return []Issue{{
		FilePath:    page.Path,
		Severity:    SeverityWarning,
		Rule:        r.Name(),
		Message:     "Page has no title",
		Explanation: "The source file has no #name annotation, so no title or usage section was rendered.",
		Fix:         "Add a /* #name ... */ block to the source file",
	}}
}

// checkBibliographyOrder verifies the master list is sorted and duplicate free.
func checkBibliographyOrder(bib *document) []Issue {
	var issues []Issue
	urls := bib.Markdown.ListURLs
	for i := 1; i < len(urls); i++ {
		prev, cur := urls[i-1], urls[i]
		switch {
		case prev == cur:
			issues = append(issues, Issue{
				FilePath: bib.Path,
				Severity: SeverityError,
				Rule:     RuleBibliographyDuplicate,
				Message:  "Duplicate source: " + cur,
				Fix:      regenerateFix,
			})
		case strings.Compare(prev, cur) > 0:
			issues = append(issues, Issue{
				FilePath: bib.Path,
				Severity: SeverityError,
				Rule:     RuleBibliographyUnsorted,
				Message:  fmt.Sprintf("Source %s is listed after %s", cur, prev),
				Fix:      regenerateFix,
			})
		}
	}
	return issues
}
