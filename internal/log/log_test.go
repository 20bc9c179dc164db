package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestSetDebugMode(t *testing.T) {
	original := IsDebug()
	defer SetDebugMode(original)

	tests := []struct {
		name    string
		enabled bool
	}{
		{name: "enable debug", enabled: true},
		{name: "disable debug", enabled: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetDebugMode(tt.enabled)
			if IsDebug() != tt.enabled {
				t.Errorf("SetDebugMode(%v) did not set debug mode correctly", tt.enabled)
			}
		})
	}
}

func TestDebugOutput(t *testing.T) {
	original := IsDebug()
	defer SetDebugMode(original)

	var out bytes.Buffer
	restore := SetOutput(&out, nil)
	defer restore()

	SetDebugMode(true)
	Debug("test %s", "message")

	if !strings.Contains(out.String(), "test message") {
		t.Errorf("Debug() did not output expected message, got: %s", out.String())
	}
	if !strings.Contains(out.String(), "[DEBUG]") {
		t.Errorf("Debug() did not include [DEBUG] prefix, got: %s", out.String())
	}
}

func TestDebugDisabled(t *testing.T) {
	original := IsDebug()
	defer SetDebugMode(original)

	var out bytes.Buffer
	restore := SetOutput(&out, nil)
	defer restore()

	SetDebugMode(false)
	Debug("test message")
	DebugH2("test message")
	DebugH3("test message")

	if out.Len() != 0 {
		t.Errorf("Debug() should not output when disabled, got: %s", out.String())
	}
}

func TestErrorGoesToStderr(t *testing.T) {
	var out, errOut bytes.Buffer
	restore := SetOutput(&out, &errOut)
	defer restore()

	Error("refresh failed: %v", "boom")
	Warn("queue full")

	if out.Len() != 0 {
		t.Errorf("Error() wrote to stdout: %q", out.String())
	}
	got := errOut.String()
	if !strings.Contains(got, "refresh failed: boom") || !strings.Contains(got, "queue full") {
		t.Errorf("unexpected stderr output: %q", got)
	}
}

func TestSetOutputRestore(t *testing.T) {
	var first, second bytes.Buffer
	restoreFirst := SetOutput(&first, nil)
	defer restoreFirst()

	restoreSecond := SetOutput(&second, nil)
	Info("to second")
	restoreSecond()
	InfoH2("to first")

	if !strings.Contains(second.String(), "to second") {
		t.Errorf("second writer missing message: %q", second.String())
	}
	if strings.Contains(second.String(), "to first") {
		t.Errorf("restore did not switch writers back")
	}
	if !strings.Contains(first.String(), "to first") {
		t.Errorf("first writer missing message: %q", first.String())
	}
}
