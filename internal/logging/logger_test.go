package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func newTestConsoleLogger(buf *bytes.Buffer, level string) *slog.Logger {
	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(level))
	return slog.New(newConsoleHandler(buf, levelVar))
}

func TestConsoleHandlerHoistsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewComponentLogger(newTestConsoleLogger(&buf, "info"), "scanner")

	logger.Info("file recorded", Args(String(FieldFile, "Heat (1995).mkv"), Int64(FieldEntryID, 7))...)

	line := strings.TrimSpace(buf.String())
	if !strings.Contains(line, "INFO scanner: file recorded") {
		t.Fatalf("line = %q, want component before message", line)
	}
	if !strings.Contains(line, `file="Heat (1995).mkv"`) {
		t.Fatalf("line = %q, want quoted file attribute", line)
	}
	if !strings.Contains(line, "entry_id=7") {
		t.Fatalf("line = %q, want entry_id attribute", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("line = %q, component should not appear as key=value", line)
	}
}

func TestConsoleHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestConsoleLogger(&buf, "warn")

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("output = %q, info should be suppressed at warn level", out)
	}
	if !strings.Contains(out, "WARN shown") {
		t.Fatalf("output = %q, want warn line", out)
	}
}

func TestConsoleHandlerFlattensGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestConsoleLogger(&buf, "info")

	logger.With(slog.Group("probe", String("codec", "h264"))).Info("probed")

	line := strings.TrimSpace(buf.String())
	if !strings.Contains(line, "probe.codec=h264") {
		t.Fatalf("line = %q, want dotted group key", line)
	}
}

func TestJSONHandlerFieldNames(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newJSONHandler(&buf, levelVar))

	logger.Info("scan complete", Args(Int("files", 3))...)

	var doc map[string]any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if doc["msg"] != "scan complete" {
		t.Fatalf("msg = %v", doc["msg"])
	}
	if doc["level"] != "info" {
		t.Fatalf("level = %v", doc["level"])
	}
	if _, ok := doc["ts"]; !ok {
		t.Fatal("missing ts field")
	}
	if doc["files"] != float64(3) {
		t.Fatalf("files = %v", doc["files"])
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNopLoggerIsSilent(t *testing.T) {
	logger := NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger should report disabled")
	}
	logger.Error("never seen", Error(nil))
}
