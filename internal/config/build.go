package config

import "strings"

// MissingMethodPolicy decides what happens to a file that has a #name block but
// no registration call.
type MissingMethodPolicy string

const (
	// MissingMethodFail aborts the whole build.
	MissingMethodFail MissingMethodPolicy = "fail"
	// MissingMethodSkip logs a warning and writes no page for the file.
	MissingMethodSkip MissingMethodPolicy = "skip"
)

// NormalizeMissingMethodPolicy canonicalizes raw. Unknown values are returned
// lowercased so validation can report them.
func NormalizeMissingMethodPolicy(raw string) MissingMethodPolicy {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return MissingMethodFail
	}
	return MissingMethodPolicy(v)
}

// PageCollisionPolicy decides what happens when two source files map to the
// same page name.
type PageCollisionPolicy string

const (
	// PageCollisionFail aborts the build.
	PageCollisionFail PageCollisionPolicy = "fail"
	// PageCollisionOverwrite keeps the page of the file that comes last in
	// discovery order and logs a warning. Sources of every file still reach the
	// bibliography.
	PageCollisionOverwrite PageCollisionPolicy = "overwrite"
)

// NormalizePageCollisionPolicy canonicalizes raw like NormalizeMissingMethodPolicy.
func NormalizePageCollisionPolicy(raw string) PageCollisionPolicy {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return PageCollisionFail
	}
	return PageCollisionPolicy(v)
}
