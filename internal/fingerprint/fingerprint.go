// Package fingerprint computes the content fingerprint and stable uid stored in
// page front matter.
package fingerprint

import (
	"errors"
	"strings"

	"git.home.luguber.info/inful/annodoc/internal/frontmatter"
	"github.com/google/uuid"
	"github.com/inful/mdfp"
)

// Field is the front matter key holding the fingerprint.
const Field = mdfp.FingerprintField

const uidField = "uid"

// uidNamespace scopes generated page uids so they never collide with uids
// derived from the same path by other tools.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://git.home.luguber.info/inful/annodoc"))

var errNilFields = errors.New("fields map is nil")

// Compute returns the canonical fingerprint of a page.
//
// The fingerprint and uid fields are excluded; the remaining fields are
// serialized with sorted keys and a single trailing newline is trimmed before
// hashing together with body.
func Compute(fields map[string]any, body []byte) (string, error) {
	if fields == nil {
		return "", errNilFields
	}

	hashed := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == Field || k == uidField {
			continue
		}
		hashed[k] = v
	}

	fm := ""
	if len(hashed) > 0 {
		serialized, err := frontmatter.SerializeYAML(hashed)
		if err != nil {
			return "", err
		}
		fm = strings.TrimSuffix(string(serialized), "\n")
	}
	return mdfp.CalculateFingerprintFromParts(fm, string(body)), nil
}

// Stamp computes the fingerprint and stores it in fields.
func Stamp(fields map[string]any, body []byte) (string, error) {
	fp, err := Compute(fields, body)
	if err != nil {
		return "", err
	}
	fields[Field] = fp
	return fp, nil
}

// Verify reports whether the stored fingerprint matches the content. A page
// without a fingerprint field does not verify.
func Verify(fields map[string]any, body []byte) (stored, computed string, ok bool, err error) {
	computed, err = Compute(fields, body)
	if err != nil {
		return "", "", false, err
	}
	stored, _ = fields[Field].(string)
	stored = strings.TrimSpace(stored)
	return stored, computed, stored != "" && stored == computed, nil
}

// UID derives a stable page uid (UUIDv5) from the slash-separated path of
// the page's origin.
func UID(path string) string {
	return uuid.NewSHA1(uidNamespace, []byte(path)).String()
}
