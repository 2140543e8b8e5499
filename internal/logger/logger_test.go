package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func reset() {
	SetVerbose(false)
	SetTimestamps(false)
	SetOutput(os.Stderr)
}

func TestSetVerbose(t *testing.T) {
	defer reset()

	// Initially not verbose
	SetVerbose(false)
	if IsVerbose() {
		t.Error("expected verbose to be false initially")
	}

	SetVerbose(true)
	if !IsVerbose() {
		t.Error("expected verbose to be true after SetVerbose(true)")
	}

	SetVerbose(false)
	if IsVerbose() {
		t.Error("expected verbose to be false after SetVerbose(false)")
	}
}

func TestDebug_WhenVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Debug("test message %s", "arg")

	if got := buf.String(); got != "[DEBUG] test message arg\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestDebugAndInfo_WhenNotVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Debug("test message")
	Info("info message")
	Section("Hidden")

	if buf.Len() > 0 {
		t.Errorf("expected no output when verbose is disabled, got %q", buf.String())
	}
}

func TestSection(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Section("Test Section")

	if got := buf.String(); got != "\n=== Test Section ===\n" {
		t.Errorf("unexpected section output: %q", got)
	}
}

func TestInfo(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Info("info message %d", 42)

	if got := buf.String(); got != "[INFO] info message 42\n" {
		t.Errorf("unexpected info output: %q", got)
	}
}

func TestWarnAndError_AlwaysPrinted(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Warn("warning message")
	Error("error %s", "message")

	if got := buf.String(); got != "[WARN] warning message\n[ERROR] error message\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestSetLevel(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelError)

	Warn("dropped")
	Error("kept")

	if got := buf.String(); got != "[ERROR] kept\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestTimestamps(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetTimestamps(true)

	Warn("stamped")

	got := buf.String()
	if !strings.HasSuffix(got, " [WARN] stamped\n") {
		t.Errorf("unexpected output: %q", got)
	}
	if !strings.Contains(got, "T") || !strings.Contains(got, "Z") {
		t.Errorf("expected RFC 3339 timestamp, got %q", got)
	}
}

func TestLevel_String(t *testing.T) {
	if LevelDebug.String() != "DEBUG" || LevelError.String() != "ERROR" {
		t.Error("unexpected level names")
	}
	if Level(99).String() != "UNKNOWN" {
		t.Error("expected UNKNOWN for out of range level")
	}
}

func TestConcurrentAccess(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			SetVerbose(true)
			Debug("concurrent %d", i)
			IsVerbose()
			SetVerbose(false)
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}
