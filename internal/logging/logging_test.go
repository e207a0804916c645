package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T, opts Options) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	opts.Output = &buf
	Configure(opts)
	t.Cleanup(func() { Configure(Options{}) })
	return &buf
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel(" DEBUG "))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestFor_TagsComponent(t *testing.T) {
	buf := capture(t, Options{})
	For("row").Info("hello")

	assert.Contains(t, buf.String(), "component=row")
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestLoggersFollowReconfiguration(t *testing.T) {
	log := For("column").WithGroup("stack").With("spec", "p")

	buf := capture(t, Options{Level: "debug", JSON: true})
	log.Debug("stacked", "rep", "dense")
	assert.Contains(t, buf.String(), `"component":"column"`)
	assert.Contains(t, buf.String(), `"stack":{"spec":"p","rep":"dense"}`)

	buf.Reset()
	SetLevel("warn")
	log.Info("dropped")
	assert.Empty(t, buf.String())
}

func TestUse_IgnoresNilAndOwnLoggers(t *testing.T) {
	buf := capture(t, Options{})
	Use(nil)
	Use(L())
	Use(For("x"))
	L().Info("still here")
	assert.Contains(t, buf.String(), "still here")

	var other bytes.Buffer
	Use(slog.New(slog.NewTextHandler(&other, nil)))
	For("row").Info("moved")
	assert.Contains(t, other.String(), "component=row")
	assert.NotContains(t, buf.String(), "moved")
}
