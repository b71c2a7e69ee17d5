package check

// Severity indicates the importance level of a check issue.
type Severity int

const (
	// SeverityWarning marks pages that are usable but incomplete.
	SeverityWarning Severity = iota + 1
	// SeverityError marks output that is inconsistent with a fresh build.
	SeverityError
)

// String returns the human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Rule identifiers.
const (
	RuleFingerprintMismatch     = "fingerprint-mismatch"
	RuleMissingBibliographyLink = "missing-bibliography-link"
	RuleSourceNotInBibliography = "source-not-in-bibliography"
	RuleBibliographyUnsorted    = "bibliography-unsorted"
	RuleBibliographyDuplicate   = "bibliography-duplicate"
	RuleMissingTitle            = "missing-title"
	RuleUnreadableFrontMatter   = "unreadable-front-matter"
)

// Issue represents a single problem found in a generated file.
type Issue struct {
	FilePath    string   // Path relative to the output directory, slash separated
	Severity    Severity // Issue severity level
	Rule        string   // Rule identifier (e.g., "fingerprint-mismatch")
	Message     string   // Brief description of the issue
	Explanation string   // Detailed explanation with context
	Fix         string   // Suggested fix
}

// Result contains all issues found while checking an output directory.
type Result struct {
	Issues     []Issue
	PagesTotal int // Pages checked, not counting the bibliography
}

// HasErrors returns true if any error-level issues exist.
func (r *Result) HasErrors() bool {
	return r.ErrorCount() > 0
}

// ErrorCount returns the number of error-level issues.
func (r *Result) ErrorCount() int {
	return r.count(SeverityError)
}

// WarningCount returns the number of warning-level issues.
func (r *Result) WarningCount() int {
	return r.count(SeverityWarning)
}

func (r *Result) count(s Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == s {
			n++
		}
	}
	return n
}
