package logger

import (
	"context"
	"io"
	"log/slog"
)

const ansiReset = "\033[0m"

var levelColors = map[slog.Level]string{
	slog.LevelDebug: "\033[36m", // cyan
	slog.LevelInfo:  "\033[32m", // green
	slog.LevelWarn:  "\033[33m", // yellow
	slog.LevelError: "\033[31m", // red
}

// ColorHandler renders records as "<LEVEL>  message key=val" with the level
// token ANSI-colored. The colored token replaces slog's own level attribute,
// so the level appears exactly once per line.
type ColorHandler struct {
	*slog.TextHandler
}

// NewColorHandler creates a handler writing colored records to w. When
// showTime is false the time attribute is suppressed, which suits short-lived
// CLI invocations.
func NewColorHandler(w io.Writer, opts *slog.HandlerOptions, showTime bool) *ColorHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	inner := opts.ReplaceAttr
	opts.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
		if len(groups) == 0 {
			if a.Key == slog.LevelKey || (!showTime && a.Key == slog.TimeKey) {
				return slog.Attr{}
			}
		}
		if inner != nil {
			return inner(groups, a)
		}
		return a
	}
	return &ColorHandler{TextHandler: slog.NewTextHandler(w, opts)}
}

// Handle implements slog.Handler.
func (h *ColorHandler) Handle(ctx context.Context, r slog.Record) error {
	color, ok := levelColors[r.Level]
	if !ok {
		color = ansiReset
	}
	r.Message = color + r.Level.String() + ansiReset + "  " + r.Message
	return h.TextHandler.Handle(ctx, r)
}

// New returns a logger emitting level-colored diagnostics to w.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(NewColorHandler(w, &slog.HandlerOptions{Level: level}, false))
}
