package util

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"trace": LevelTrace,
		"TRACE": LevelTrace,
		"debug": LevelDebug,
		"info":  LevelInfo,
		"warn":  LevelWarn,
		"error": LevelError,
	}

	for input, want := range tests {
		if got := ParseLogLevel(input); got != want {
			t.Fatalf("ParseLogLevel(%q) = %v, want %v", input, got, want)
		}
	}

	if got := ParseLogLevel("unknown"); got != LevelInfo {
		t.Fatalf("ParseLogLevel default = %v, want %v", got, LevelInfo)
	}
}

func TestLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(LevelWarn, &buf)
	logger.Infof("hidden %d", 1)
	logger.Warnf("shown %d", 2)
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected info line to be filtered, got %q", out)
	}
	if !strings.Contains(out, "shown 2") {
		t.Fatalf("expected warn line, got %q", out)
	}
	if !strings.Contains(out, "level=warning") {
		t.Fatalf("expected logrus level field, got %q", out)
	}
}

func TestLoggerWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(LevelDebug, &buf)
	logger.WithFields(LevelDebug, Fields{"window": 42}, "managed")
	if out := buf.String(); !strings.Contains(out, "window=42") || !strings.Contains(out, "managed") {
		t.Fatalf("expected structured fields in output, got %q", out)
	}
	buf.Reset()
	logger.SetLevel(LevelError)
	logger.WithFields(LevelDebug, Fields{"window": 42}, "managed")
	if buf.Len() != 0 {
		t.Fatalf("expected no output after raising level, got %q", buf.String())
	}
}
