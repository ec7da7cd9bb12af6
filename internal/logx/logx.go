// Package logx configures the process-wide slog logger.
package logx

import (
	"io"
	"log/slog"

	"github.com/muesli/termenv"
)

// LevelFromFlags returns the [slog.Level] for the verbosity flags:
//   - vv: [slog.LevelDebug]
//   - v: [slog.LevelInfo]
//   - q: [slog.LevelError]
//   - (default: [slog.LevelWarn])
//
// Flags are checked in that order, so vv wins over q.
func LevelFromFlags(vv, v, q bool) slog.Level {
	switch {
	case vv:
		return slog.LevelDebug
	case v:
		return slog.LevelInfo
	case q:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// New returns a text logger writing to w. When w is a terminal the level
// names are colored.
func New(w io.Writer, level slog.Level) *slog.Logger {
	out := termenv.NewOutput(w)
	colors := map[slog.Level]termenv.Color{
		slog.LevelDebug: out.Color("8"),
		slog.LevelInfo:  out.Color("4"),
		slog.LevelWarn:  out.Color("3"),
		slog.LevelError: out.Color("1"),
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) > 0 || a.Key != slog.LevelKey {
				return a
			}
			lvl, ok := a.Value.Any().(slog.Level)
			if !ok {
				return a
			}
			c, ok := colors[lvl]
			if !ok {
				return a
			}
			a.Value = slog.StringValue(out.String(lvl.String()).Foreground(c).String())
			return a
		},
	})
	return slog.New(h)
}

// Setup installs a logger for w at the level chosen by the flags as the
// slog default and returns it.
func Setup(w io.Writer, vv, v, q bool) *slog.Logger {
	l := New(w, LevelFromFlags(vv, v, q))
	slog.SetDefault(l)
	return l
}
