package annotation

import (
	"fmt"
	"strings"
)

// DefaultRegistrationCall is the function whose first argument names a method.
const DefaultRegistrationCall = "register_method"

// Locator finds the identifier a file registers its method under. It searches
// the whole file text, not annotation bodies: the registration call usually sits
// far away from the #name block it belongs to.
type Locator struct {
	call    string
	pattern string
}

// NewLocator returns a Locator matching `call("identifier"`. An empty call selects
// DefaultRegistrationCall.
func NewLocator(call string) *Locator {
	if call == "" {
		call = DefaultRegistrationCall
	}
	return &Locator{call: call, pattern: call + `("`}
}

// Locate returns the identifier of the first registration call in text. An
// empty string literal is a valid identifier; a literal left open at the end of
// the line is not, and the search continues past it.
func (l *Locator) Locate(text string) (string, error) {
	s := text
	for {
		i := strings.Index(s, l.pattern)
		if i < 0 {
			return "", fmt.Errorf("%w: no call to %s", ErrMissingMethodIdentifier, l.call)
		}
		s = s[i+len(l.pattern):]
		end := strings.IndexAny(s, "\"\n")
		if end >= 0 && s[end] == '"' {
			return s[:end], nil
		}
	}
}
