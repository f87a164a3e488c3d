package debuglog

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LevelOff, "OFF"},
		{LogLevel(99), "UNKNOWN"},
	}

	for _, test := range tests {
		if got := test.level.String(); got != test.expected {
			t.Errorf("LogLevel.String() = %q, want %q", got, test.expected)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"DEBUG", LevelDebug},
		{"debug", LevelDebug},
		{" info ", LevelInfo},
		{"WARNING", LevelWarn},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"off", LevelOff},
		{"", LevelOff},
		{"INVALID", LevelInfo},
	}

	for _, test := range tests {
		if got := ParseLogLevel(test.input); got != test.expected {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", test.input, got, test.expected)
		}
	}
}

func TestSetupWritesToFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "test.log")

	if err := Setup(LevelInfo, logPath); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	Debugf("debug message")
	Infof("info message")
	Warnf("warn message")
	Errorf("error message")

	if err := Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}

	logContent := string(content)
	if strings.Contains(logContent, "debug message") {
		t.Error("DEBUG message should not appear with INFO level")
	}
	for _, want := range []string{"[INFO] info message", "[WARN] warn message", "[ERROR] error message"} {
		if !strings.Contains(logContent, want) {
			t.Errorf("log should contain %q, got:\n%s", want, logContent)
		}
	}
}

func TestSetupWithLevelOff(t *testing.T) {
	if err := Setup(LevelOff); err != nil {
		t.Fatalf("Setup with LevelOff failed: %v", err)
	}
	if GetLevel() != LevelOff {
		t.Errorf("GetLevel() = %v, want %v", GetLevel(), LevelOff)
	}
	Errorf("dropped")
}

func TestFieldLogger(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(LevelDebug, &buf)
	defer SetOutput(LevelOff, nil)

	WithFields(map[string]any{
		"component": "pager",
		"count":     42,
		"action":    "load",
	}).Infof("page %d", 2)

	got := buf.String()
	if !strings.Contains(got, "page 2 [action=load component=pager count=42]") {
		t.Errorf("unexpected field output: %s", got)
	}
}

func TestSetLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(LevelDebug, &buf)
	defer SetOutput(LevelOff, nil)

	SetLevel(LevelError)
	if GetLevel() != LevelError {
		t.Errorf("SetLevel(LevelError) failed, got %v", GetLevel())
	}

	Warnf("quiet")
	Errorf("loud")

	if strings.Contains(buf.String(), "quiet") {
		t.Error("WARN should be filtered at ERROR level")
	}
	if !strings.Contains(buf.String(), "loud") {
		t.Error("ERROR should pass at ERROR level")
	}
}
