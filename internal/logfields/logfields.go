package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyPost       = "post"
	KeyTag        = "tag"
	KeyTemplate   = "template"
	KeyPages      = "pages"
	KeyURL        = "url"
	KeySubject    = "subject"
	KeyError      = "error"
	KeyMethod     = "method"
	KeyStatus     = "status"
	KeyOp         = "op"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Post(slug string) slog.Attr      { return slog.String(KeyPost, slug) }
func Tag(t string) slog.Attr          { return slog.String(KeyTag, t) }
func Template(name string) slog.Attr  { return slog.String(KeyTemplate, name) }
func Pages(n int) slog.Attr           { return slog.Int(KeyPages, n) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Subject(s string) slog.Attr      { return slog.String(KeySubject, s) }
func Method(m string) slog.Attr       { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr       { return slog.Int(KeyStatus, code) }
func Op(op string) slog.Attr          { return slog.String(KeyOp, op) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
