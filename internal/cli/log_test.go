package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, log.InfoLevel)

	l.Debug("hidden")
	l.Info("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug output should be filtered at info level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("info output missing")
	}
}

func TestLoggerContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, log.DebugLevel)

	ctx := withLogger(context.Background(), l)
	if got := loggerFromContext(ctx); got != l {
		t.Error("logger should round-trip through context")
	}
}

func TestLoggerFromContextDefault(t *testing.T) {
	if loggerFromContext(context.Background()) == nil {
		t.Error("missing logger should fall back to default, not nil")
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, log.InfoLevel)

	p := newProgress(l)
	p.done("Resolved 3 artifacts")

	if !strings.Contains(buf.String(), "Resolved 3 artifacts (") {
		t.Errorf("progress output = %q", buf.String())
	}
}
