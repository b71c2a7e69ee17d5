// Package page assembles the documentation page of one source file from its
// parsed annotation blocks.
package page

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/annodoc/internal/annotation"
	"git.home.luguber.info/inful/annodoc/internal/util/sets"
)

const (
	usageHeading       = "## Usage"
	descriptionHeading = "## Description"
	sourcesLabel       = "**Sources**"
)

// Options controls page text that is not derived from annotations.
type Options struct {
	// TitleSuffix is appended to every #name title, e.g. " ICP".
	TitleSuffix string
	// BibliographyLink is the link from a page to the master bibliography page.
	BibliographyLink string
}

// MethodFunc resolves the registered method identifier of the file being assembled.
type MethodFunc func() (string, error)

// Input is everything the assembler needs for one file.
type Input struct {
	// SourcePath names the origin file in the provenance line (slash-separated).
	SourcePath string
	Blocks     []annotation.Parsed
	// Method is consulted only when a #name block is rendered, at most once.
	Method MethodFunc
	// Commit optionally pins the provenance line to a revision.
	Commit string
	// OnMalformedConf is told about #conf blocks that yield no table row.
	OnMalformedConf func(annotation.Parsed, error)
}

// Page is the rendered documentation unit of one source file.
type Page struct {
	// Title of the first #name block, or empty when the file has none.
	Title string
	// Method is the resolved identifier, or empty when never needed.
	Method string
	Text   string
	// Sources cited on the page, first occurrence order.
	Sources []string
	Steps   int
}

// Assembler renders pages. It is safe for concurrent use.
type Assembler struct {
	opts Options
}

// NewAssembler creates an Assembler.
func NewAssembler(opts Options) *Assembler {
	return &Assembler{opts: opts}
}

// state is the mutable part of one assembly.
type state struct {
	stepCounter       int
	descriptionOpened bool
	collected         sets.Set[string]
	collectedOrder    []string
	method            string
	methodResolved    bool
	chunks            []string
}

func (s *state) emit(chunk string) {
	s.chunks = append(s.chunks, chunk)
}

func (s *state) collect(urls []string) {
	for _, u := range urls {
		if s.collected.Has(u) {
			continue
		}
		s.collected.Add(u)
		s.collectedOrder = append(s.collectedOrder, u)
	}
}

func (s *state) openDescription() {
	if s.descriptionOpened {
		return
	}
	s.descriptionOpened = true
	s.emit(descriptionHeading)
}

// Assemble renders the page of in. Blocks are rendered in order; #conf blocks
// only contribute rows to the usage table of #name blocks, wherever they appear.
func (a *Assembler) Assemble(in Input) (*Page, error) {
	st := &state{stepCounter: 1, collected: sets.New[string]()}
	confs := annotation.ConfEntries(in.Blocks, in.OnMalformedConf)

	p := &Page{}
	for _, b := range in.Blocks {
		switch b.Kind {
		case annotation.KindName:
			if !st.methodResolved {
				if in.Method == nil {
					return nil, fmt.Errorf("%w: #name at line %d", annotation.ErrMissingMethodIdentifier, b.Line)
				}
				m, err := in.Method()
				if err != nil {
					return nil, err
				}
				st.method, st.methodResolved = m, true
			}
			title := a.renderName(st, b, confs)
			if p.Title == "" {
				p.Title = title
			}
		case annotation.KindStep:
			st.openDescription()
			renderStep(st, b)
		case annotation.KindDesc:
			st.openDescription()
			renderDesc(st, b)
		case annotation.KindConf:
			continue
		}
		st.collect(b.Sources)
	}

	st.emit(a.footer(in, len(st.chunks) > 0))

	p.Method = st.method
	p.Text = strings.Join(st.chunks, "\n\n") + "\n"
	p.Sources = st.collectedOrder
	p.Steps = st.stepCounter - 1
	return p, nil
}

func (a *Assembler) renderName(st *state, b annotation.Parsed, confs []annotation.ConfEntry) string {
	title := strings.Join(strings.Fields(b.Content), " ") + a.opts.TitleSuffix
	st.emit("# " + title)
	st.emit(usageHeading)
	if len(confs) == 0 {
		st.emit(fmt.Sprintf("Create an instance by its registered name, `%q`. It has no configuration options.", st.method))
	} else {
		st.emit(fmt.Sprintf("Create an instance by its registered name, `%q`, and supply any of the following configuration options:", st.method))
		st.emit(confTable(confs))
	}
	if len(b.Sources) > 0 {
		st.emit(sourcesLabel)
		st.emit(sourceList(b.Sources, ""))
	}
	return title
}

func confTable(confs []annotation.ConfEntry) string {
	var sb strings.Builder
	sb.WriteString("| Key | Description |\n")
	sb.WriteString("| --- | --- |")
	for _, c := range confs {
		fmt.Fprintf(&sb, "\n| \"%s\" | %s |", escapeCell(c.Key), escapeCell(c.Description))
	}
	return sb.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// renderStep writes one numbered list item. The first line is the step title,
// with the text before its first ':' emphasized as a label.
func renderStep(st *state, b annotation.Parsed) {
	marker := fmt.Sprintf("%d.", st.stepCounter)
	st.stepCounter++
	indent := strings.Repeat(" ", len(marker)+1)

	lines := strings.Split(b.Content, "\n")
	var sb strings.Builder
	sb.WriteString(marker)
	if head := stepHeading(lines[0]); head != "" {
		sb.WriteString(" " + head)
	}
	for _, l := range lines[1:] {
		sb.WriteString("\n")
		if l != "" {
			sb.WriteString(indent + l)
		}
	}
	if len(b.Sources) > 0 {
		sb.WriteString("\n" + sourceList(b.Sources, indent))
	}
	st.emit(sb.String())
}

func stepHeading(first string) string {
	label, rest, found := strings.Cut(first, ":")
	if !found {
		if t := strings.TrimSpace(first); t != "" {
			return "**" + t + "**"
		}
		return ""
	}
	label = strings.TrimSpace(label)
	if label == "" {
		return strings.TrimSpace(rest)
	}
	return "**" + label + "**:" + rest
}

func renderDesc(st *state, b annotation.Parsed) {
	if b.Content != "" {
		st.emit(b.Content)
	}
	if len(b.Sources) > 0 {
		st.emit(sourcesLabel)
		st.emit(sourceList(b.Sources, ""))
	}
}

func sourceList(urls []string, indent string) string {
	items := make([]string, len(urls))
	for i, u := range urls {
		items[i] = indent + "- " + u
	}
	return strings.Join(items, "\n")
}

// footer links the bibliography and names the source file. The thematic break
// is omitted on an otherwise empty page, where a leading "---" line would read
// as a front matter delimiter.
func (a *Assembler) footer(in Input, afterContent bool) string {
	provenance := fmt.Sprintf("*Automatically generated from `%s`", in.SourcePath)
	if in.Commit != "" {
		provenance += fmt.Sprintf(" at commit `%s`", in.Commit)
	}
	provenance += ".*"
	var sb strings.Builder
	if afterContent {
		sb.WriteString("---\n\n")
	}
	fmt.Fprintf(&sb, "All cited sources are collected in the [bibliography](%s).", a.opts.BibliographyLink)
	sb.WriteString("\n\n" + provenance)
	return sb.String()
}
