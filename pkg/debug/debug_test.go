package debug

import (
	"bytes"
	"log"
	"strings"
	"testing"
	"time"
)

func captureLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	prevEnabled, prevLogger := enabled, logger
	t.Cleanup(func() {
		enabled, logger = prevEnabled, prevLogger
	})

	var buf bytes.Buffer
	enabled = true
	logger = log.New(&buf, "[DW_DEBUG] ", 0)
	return &buf
}

func TestLogWritesWhenEnabled(t *testing.T) {
	buf := captureLogger(t)

	Log("slide %d", 3)
	LogTiming("render", 2*time.Millisecond)
	LogIf(false, "hidden")
	LogIf(true, "shown")

	out := buf.String()
	for _, want := range []string{"slide 3", "render took 2ms", "shown"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "hidden") {
		t.Error("LogIf(false) should not write")
	}
}

func TestDisabledIsSilent(t *testing.T) {
	buf := captureLogger(t)
	enabled = false

	Log("nothing")
	Dump("state", struct{ Index int }{1})
	LogEnterExit("noop")()

	if buf.Len() != 0 {
		t.Errorf("disabled logger wrote %q", buf.String())
	}
}

func TestLogEnterExit(t *testing.T) {
	buf := captureLogger(t)

	LogEnterExit("export")()
	out := buf.String()
	if !strings.Contains(out, "-> export") || !strings.Contains(out, "<- export") {
		t.Errorf("enter/exit not logged:\n%s", out)
	}
}

func TestSetOutput(t *testing.T) {
	prevEnabled, prevLogger := enabled, logger
	t.Cleanup(func() {
		enabled, logger = prevEnabled, prevLogger
	})

	var buf bytes.Buffer
	SetOutput(&buf)
	enabled = false
	Log("quiet")
	if buf.Len() != 0 {
		t.Errorf("SetOutput should not enable logging, wrote %q", buf.String())
	}

	SetEnabled(true)
	Section("reload")
	if !strings.Contains(buf.String(), "=== reload ===") {
		t.Errorf("output = %q", buf.String())
	}
}
