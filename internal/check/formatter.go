package check

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Formatter formats check results for output.
type Formatter interface {
	Format(w io.Writer, result *Result, outputDir string) error
}

// TextFormatter formats results as human-readable text.
type TextFormatter struct{}

// Format outputs results in human-readable text format.
func (f *TextFormatter) Format(w io.Writer, result *Result, outputDir string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Checking generated documentation in: %s\n", outputDir)
	b.WriteString(strings.Repeat("━", 60) + "\n\n")

	for _, issue := range result.Issues {
		icon := "✗"
		if issue.Severity == SeverityWarning {
			icon = "⚠"
		}
		fmt.Fprintf(&b, "%s %s\n", icon, issue.FilePath)
		fmt.Fprintf(&b, "  %s [%s]: %s\n", issue.Severity, issue.Rule, issue.Message)
		if issue.Explanation != "" {
			for line := range strings.SplitSeq(strings.TrimSpace(issue.Explanation), "\n") {
				fmt.Fprintf(&b, "  %s\n", line)
			}
		}
		if issue.Fix != "" {
			fmt.Fprintf(&b, "  Fix: %s\n", issue.Fix)
		}
		b.WriteString("\n")
	}

	b.WriteString(strings.Repeat("━", 60) + "\n")
	b.WriteString("Results:\n")
	fmt.Fprintf(&b, "  %d page%s checked\n", result.PagesTotal, pluralize(result.PagesTotal))
	if n := result.ErrorCount(); n > 0 {
		fmt.Fprintf(&b, "  %d error%s\n", n, pluralize(n))
	}
	if n := result.WarningCount(); n > 0 {
		fmt.Fprintf(&b, "  %d warning%s\n", n, pluralize(n))
	}
	if len(result.Issues) == 0 {
		b.WriteString("\nGenerated documentation is consistent.\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// JSONFormatter formats results as JSON.
type JSONFormatter struct{}

// JSONOutput represents the JSON output structure.
type JSONOutput struct {
	Path         string      `json:"path"`
	PagesTotal   int         `json:"pages_total"`
	ErrorCount   int         `json:"error_count"`
	WarningCount int         `json:"warning_count"`
	Issues       []JSONIssue `json:"issues"`
}

// JSONIssue represents a single issue in JSON format.
type JSONIssue struct {
	FilePath    string `json:"file_path"`
	Severity    string `json:"severity"`
	Rule        string `json:"rule"`
	Message     string `json:"message"`
	Explanation string `json:"explanation,omitempty"`
	Fix         string `json:"fix,omitempty"`
}

// Format outputs results in JSON format.
func (f *JSONFormatter) Format(w io.Writer, result *Result, outputDir string) error {
	output := JSONOutput{
		Path:         outputDir,
		PagesTotal:   result.PagesTotal,
		ErrorCount:   result.ErrorCount(),
		WarningCount: result.WarningCount(),
		Issues:       make([]JSONIssue, 0, len(result.Issues)),
	}
	for _, issue := range result.Issues {
		output.Issues = append(output.Issues, JSONIssue{
			FilePath:    issue.FilePath,
			Severity:    issue.Severity.String(),
			Rule:        issue.Rule,
			Message:     issue.Message,
			Explanation: issue.Explanation,
			Fix:         issue.Fix,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// NewFormatter creates the appropriate formatter based on format string.
func NewFormatter(format string) Formatter {
	switch format {
	case "json":
		return &JSONFormatter{}
	default:
		return &TextFormatter{}
	}
}

// pluralize returns "s" if count != 1, otherwise empty string.
func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
