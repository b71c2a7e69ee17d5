package annotation

import (
	"fmt"
	"strings"
)

// Kind is the tag that opens an annotation block and selects how its body renders.
type Kind string

const (
	KindName Kind = "#name"
	KindStep Kind = "#step"
	KindDesc Kind = "#desc"
	KindConf Kind = "#conf"
)

// kinds in match order. No tag is a prefix of another.
var kinds = []Kind{KindStep, KindName, KindDesc, KindConf}

const (
	openDelim  = "/*"
	closeDelim = "*/"
)

// String returns the tag without its leading '#'.
func (k Kind) String() string {
	return strings.TrimPrefix(string(k), "#")
}

// Block is one annotation as found in source text.
type Block struct {
	Kind Kind
	Body string // raw text between the kind tag and the closing delimiter
	Line int    // 1-based line of the opening delimiter
}

type scanState int

const (
	stateOutside scanState = iota
	stateInside
)

// Scan returns the annotation blocks of text in source order.
//
// A block is an opening comment delimiter, optional whitespace, a kind tag, and a
// body running up to the first closing delimiter. Blocks never overlap; a comment
// that does not start with a kind tag is not an annotation, but annotations may
// still begin inside it. A tag whose comment is never closed yields
// ErrUnterminatedBlock. CRLF and lone CR line endings are read as LF.
func Scan(text string) ([]Block, error) {
	text = NormalizeNewlines(text)
	var (
		blocks []Block
		state  = stateOutside
		cur    Block
		line   = 1
		i      = 0
	)

	for i < len(text) {
		switch state {
		case stateOutside:
			if text[i] == '\n' {
				line++
				i++
				continue
			}
			if !strings.HasPrefix(text[i:], openDelim) {
				i++
				continue
			}
			kind, bodyStart, ok := matchKind(text, i+len(openDelim))
			if !ok {
				i += len(openDelim)
				continue
			}
			cur = Block{Kind: kind, Line: line}
			line += strings.Count(text[i:bodyStart], "\n")
			i = bodyStart
			state = stateInside

		case stateInside:
			end := strings.Index(text[i:], closeDelim)
			if end < 0 {
				return blocks, fmt.Errorf("%w: %s opened at line %d", ErrUnterminatedBlock, cur.Kind, cur.Line)
			}
			cur.Body = text[i : i+end]
			blocks = append(blocks, cur)
			line += strings.Count(cur.Body, "\n")
			i += end + len(closeDelim)
			state = stateOutside
		}
	}

	return blocks, nil
}

// matchKind skips whitespace from pos and reports the kind tag found there along
// with the offset where the block body starts.
func matchKind(text string, pos int) (Kind, int, bool) {
	for pos < len(text) && isSpace(text[pos]) {
		pos++
	}
	for _, k := range kinds {
		if strings.HasPrefix(text[pos:], string(k)) {
			return k, pos + len(k), true
		}
	}
	return "", 0, false
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

// NormalizeNewlines converts CRLF and lone CR line endings to LF.
func NormalizeNewlines(text string) string {
	if !strings.Contains(text, "\r") {
		return text
	}
	return strings.ReplaceAll(strings.ReplaceAll(text, "\r\n", "\n"), "\r", "\n")
}
