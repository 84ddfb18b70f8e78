package monitoring

import (
	"bytes"
	"strings"
	"testing"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(format string, v ...interface{}) {
		called = true
	})
	Logf("test message")
	if !called {
		t.Error("Custom logger was not called")
	}

	// nil installs a no-op and must not reach the previous logger
	called = false
	SetLogger(nil)
	Logf("test")
	if called {
		t.Error("No-op logger should not have triggered callback")
	}
}

func TestSetOutput(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var buf bytes.Buffer
	SetOutput(&buf, "elevedit ")
	Logf("opened %s with %d points", "ride.gpx", 42)

	out := buf.String()
	if !strings.HasPrefix(out, "elevedit ") {
		t.Errorf("output %q missing prefix", out)
	}
	if !strings.Contains(out, "opened ride.gpx with 42 points") {
		t.Errorf("output %q missing message", out)
	}

	buf.Reset()
	SetOutput(nil, "")
	Logf("dropped")
	if buf.Len() != 0 {
		t.Errorf("muted logger wrote %q", buf.String())
	}
}
