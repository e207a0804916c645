// Package logging holds the process-wide slog logger. Loggers handed out by
// L and For follow later calls to Configure, so components may keep the
// logger they took at construction.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
)

type Options struct {
	Level  string
	JSON   bool
	Output io.Writer // nil = os.Stderr
}

var (
	level   slog.LevelVar
	current atomic.Pointer[slog.Handler]
	root    = slog.New(&follower{})
)

func init() {
	Configure(Options{})
}

// Configure replaces the output handler. Existing loggers switch over.
func Configure(opts Options) {
	level.Set(ParseLevel(opts.Level))
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	cfg := &slog.HandlerOptions{Level: &level}
	var h slog.Handler
	if opts.JSON {
		h = slog.NewJSONHandler(out, cfg)
	} else {
		h = slog.NewTextHandler(out, cfg)
	}
	current.Store(&h)
}

// SetLevel changes the level without touching the output.
func SetLevel(s string) { level.Set(ParseLevel(s)) }

// Use routes every logger through l's handler, e.g. for tests capturing
// output. A nil l and loggers from this package are ignored.
func Use(l *slog.Logger) {
	if l == nil {
		return
	}
	h := l.Handler()
	if _, own := h.(*follower); own {
		return
	}
	current.Store(&h)
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func L() *slog.Logger { return root }

// For returns the logger tagged with a component name.
func For(component string) *slog.Logger {
	return root.With("component", component)
}

func InitFromEnv() {
	json := false
	if b, err := strconv.ParseBool(strings.TrimSpace(os.Getenv("PANELCOMP_LOG_JSON"))); err == nil {
		json = b
	}
	Configure(Options{Level: os.Getenv("PANELCOMP_LOG_LEVEL"), JSON: json})
}

/* ────────── follower ────────── */

// follower replays its attrs and groups onto whatever handler is current
// when a record arrives.
type follower struct {
	ops []func(slog.Handler) slog.Handler
}

func (f *follower) handler() slog.Handler {
	h := *current.Load()
	for _, op := range f.ops {
		h = op(h)
	}
	return h
}

func (f *follower) Enabled(ctx context.Context, l slog.Level) bool {
	return (*current.Load()).Enabled(ctx, l)
}

func (f *follower) Handle(ctx context.Context, r slog.Record) error {
	return f.handler().Handle(ctx, r)
}

func (f *follower) WithAttrs(attrs []slog.Attr) slog.Handler {
	return f.with(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (f *follower) WithGroup(name string) slog.Handler {
	return f.with(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (f *follower) with(op func(slog.Handler) slog.Handler) *follower {
	ops := make([]func(slog.Handler) slog.Handler, len(f.ops), len(f.ops)+1)
	copy(ops, f.ops)
	return &follower{ops: append(ops, op)}
}
