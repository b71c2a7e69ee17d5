package annotation

import (
	"fmt"
	"strings"
)

// ConfEntry is one configuration option declared by a #conf block.
type ConfEntry struct {
	Key         string // without quotes
	Description string // single line
	Line        int
}

// ParseConf reads content of the form `"key" description`. The description has
// its line breaks folded into single spaces, and comment decoration ('*') at the
// start of continuation lines is dropped.
func ParseConf(content string) (ConfEntry, error) {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, `"`) {
		return ConfEntry{}, fmt.Errorf("%w: key must be quoted", ErrMalformedConf)
	}
	closing := strings.IndexByte(content[1:], '"')
	if closing < 0 {
		return ConfEntry{}, fmt.Errorf("%w: unterminated key", ErrMalformedConf)
	}
	key := content[1 : 1+closing]
	rest := content[2+closing:]
	if key == "" {
		return ConfEntry{}, fmt.Errorf("%w: empty key", ErrMalformedConf)
	}
	if rest == "" || !isSpace(rest[0]) {
		return ConfEntry{}, fmt.Errorf("%w: key %q has no description", ErrMalformedConf, key)
	}
	desc := foldDescription(rest)
	if desc == "" {
		return ConfEntry{}, fmt.Errorf("%w: key %q has no description", ErrMalformedConf, key)
	}
	return ConfEntry{Key: key, Description: desc}, nil
}

// ConfEntries parses every #conf block in blocks, in order. Malformed blocks are
// reported through onMalformed (may be nil) and omitted.
func ConfEntries(blocks []Parsed, onMalformed func(Parsed, error)) []ConfEntry {
	var entries []ConfEntry
	for _, b := range blocks {
		if b.Kind != KindConf {
			continue
		}
		e, err := ParseConf(b.Content)
		if err != nil {
			if onMalformed != nil {
				onMalformed(b, err)
			}
			continue
		}
		e.Line = b.Line
		entries = append(entries, e)
	}
	return entries
}

func foldDescription(s string) string {
	lines := strings.Split(s, "\n")
	parts := make([]string, 0, len(lines))
	for i, l := range lines {
		l = strings.TrimSpace(l)
		if i > 0 {
			l = strings.TrimSpace(strings.TrimPrefix(l, "*"))
		}
		if l != "" {
			parts = append(parts, l)
		}
	}
	return strings.Join(parts, " ")
}
