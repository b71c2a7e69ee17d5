package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyFile       = "file"
	KeyPage       = "page"
	KeyMethod     = "method"
	KeySources    = "sources"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyCount      = "count"
	KeyLine       = "line"
	KeyCommit     = "commit"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func File(p string) slog.Attr         { return slog.String(KeyFile, p) }
func Page(p string) slog.Attr         { return slog.String(KeyPage, p) }
func Method(id string) slog.Attr      { return slog.String(KeyMethod, id) }
func Sources(n int) slog.Attr         { return slog.Int(KeySources, n) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Line(n int) slog.Attr            { return slog.Int(KeyLine, n) }
func Commit(hash string) slog.Attr    { return slog.String(KeyCommit, hash) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
