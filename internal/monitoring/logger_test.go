package monitoring

import (
	"bytes"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logf := New(&buf, "wafermap: ")

	logf("loaded %d maps", 3)

	out := buf.String()
	if !strings.HasPrefix(out, "wafermap: ") {
		t.Errorf("expected prefix, got %q", out)
	}
	if !strings.Contains(out, "loaded 3 maps") {
		t.Errorf("expected formatted message, got %q", out)
	}
}

func TestNew_NilWriter(t *testing.T) {
	logf := New(nil, "x")

	// Should be the no-op logger and not panic.
	logf("test message")
}

func TestOrDiscard(t *testing.T) {
	var nilLogf Logf

	// This should not panic
	nilLogf.OrDiscard()("test message: %s", "value")

	called := false
	custom := Logf(func(format string, v ...interface{}) {
		called = true
	})
	custom.OrDiscard()("test")
	if !called {
		t.Error("Custom logger was not called")
	}
}

func TestWith(t *testing.T) {
	var got string
	base := Logf(func(format string, v ...interface{}) {
		got = format
	})

	base.With("mask")("reload %s", "A")

	if got != "[mask] reload %s" {
		t.Errorf("expected tagged format, got %q", got)
	}
}

func TestWith_NilBase(t *testing.T) {
	var nilLogf Logf

	// No-op logger should absorb the message
	nilLogf.With("mask")("test")
}
