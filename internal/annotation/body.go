package annotation

import (
	"strings"
	"unicode"
)

// SourcesMarker separates the rendered content of a block from its citations.
const SourcesMarker = "Sources:"

// Parsed is a block with its body split into normalized content and cited URLs.
type Parsed struct {
	Kind    Kind
	Content string
	// Sources holds the URLs following SourcesMarker, first occurrence order, no
	// duplicates. Always empty for #conf blocks.
	Sources []string
	Line    int
}

// Parse splits the body of b. #conf bodies never carry citations, so for them the
// whole body is content.
func Parse(b Block) Parsed {
	p := Parsed{Kind: b.Kind, Line: b.Line}
	if b.Kind == KindConf {
		p.Content = NormalizeContent(b.Body)
		return p
	}
	p.Content, p.Sources = ParseBody(b.Body)
	return p
}

// ParseBody splits raw at the first SourcesMarker. The part before it is returned
// normalized; the URLs found after it are returned in order without duplicates.
func ParseBody(raw string) (content string, sources []string) {
	before, after, found := strings.Cut(raw, SourcesMarker)
	content = NormalizeContent(before)
	if found {
		sources = ExtractURLs(after)
	}
	return content, sources
}

// NormalizeContent trims s and strips the indentation of every line after the
// first, so comment indentation does not leak into rendered text.
func NormalizeContent(s string) string {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "\n") {
		return s
	}
	lines := strings.Split(s, "\n")
	for i := 1; i < len(lines); i++ {
		lines[i] = strings.TrimLeft(lines[i], " \t")
	}
	return strings.Join(lines, "\n")
}

// ExtractURLs returns every http:// or https:// URL in s, each running up to the
// next whitespace. Order is first occurrence; duplicates are dropped.
func ExtractURLs(s string) []string {
	var (
		urls []string
		seen = make(map[string]struct{})
	)
	for {
		start := strings.Index(s, "http")
		if start < 0 {
			return urls
		}
		rest := s[start:]
		scheme := urlScheme(rest)
		end := strings.IndexFunc(rest, unicode.IsSpace)
		if end < 0 {
			end = len(rest)
		}
		if scheme == 0 || end <= scheme {
			s = rest[len("http"):]
			continue
		}
		u := rest[:end]
		if _, dup := seen[u]; !dup {
			seen[u] = struct{}{}
			urls = append(urls, u)
		}
		s = rest[end:]
	}
}

// urlScheme returns the length of the http:// or https:// prefix of s, or 0.
func urlScheme(s string) int {
	switch {
	case strings.HasPrefix(s, "http://"):
		return len("http://")
	case strings.HasPrefix(s, "https://"):
		return len("https://")
	}
	return 0
}
