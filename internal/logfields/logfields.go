package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyComponent  = "component"
	KeyTarget     = "target"
	KeyAnchor     = "anchor"
	KeyInstance   = "instance"
	KeyAction     = "action"
	KeyFormat     = "format"
	KeyPosition   = "position"
	KeyPath       = "path"
	KeyWarnings   = "warnings"
	KeyRequests   = "requests"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Component(id string) slog.Attr   { return slog.String(KeyComponent, id) }
func Target(t string) slog.Attr       { return slog.String(KeyTarget, t) }
func Anchor(id string) slog.Attr      { return slog.String(KeyAnchor, id) }
func Instance(n int) slog.Attr        { return slog.Int(KeyInstance, n) }
func Action(a string) slog.Attr       { return slog.String(KeyAction, a) }
func Format(f string) slog.Attr       { return slog.String(KeyFormat, f) }
func Position(p int) slog.Attr        { return slog.Int(KeyPosition, p) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Warnings(n int) slog.Attr        { return slog.Int(KeyWarnings, n) }
func Requests(n int) slog.Attr        { return slog.Int(KeyRequests, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
