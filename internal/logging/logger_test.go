package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestLogger(t *testing.T) *Logger {
	t.Helper()
	log, err := New(filepath.Join(t.TempDir(), "logs", "trellis.log"))
	if err != nil {
		t.Fatal(err)
	}
	log.now = func() time.Time {
		return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	}
	return log
}

func TestAppendWritesTimestampedLine(t *testing.T) {
	log := newTestLogger(t)
	log.Info("claimed %s", "T-fix-redirect")

	data, err := os.ReadFile(log.Path())
	if err != nil {
		t.Fatal(err)
	}
	line := strings.TrimSpace(string(data))
	if !strings.HasPrefix(line, "2026-08-30T12:00:00Z INFO") {
		t.Errorf("unexpected prefix: %q", line)
	}
	if !strings.HasSuffix(line, "claimed T-fix-redirect") {
		t.Errorf("unexpected message: %q", line)
	}
}

func TestTailReturnsMostRecent(t *testing.T) {
	log := newTestLogger(t)
	for i := 0; i < 5; i++ {
		log.Info("entry %d", i)
	}
	lines := log.Tail(2)
	if len(lines) != 2 {
		t.Fatalf("got %d lines", len(lines))
	}
	if !strings.HasSuffix(lines[1], "entry 4") {
		t.Errorf("last line = %q", lines[1])
	}
}

func TestNilLoggerIsNoOp(t *testing.T) {
	var log *Logger
	log.Info("ignored")
	log.Warn("ignored")
	log.Error("ignored")
	if got := log.Tail(10); got != nil {
		t.Errorf("Tail on nil = %v", got)
	}
	if log.Path() != "" {
		t.Errorf("Path on nil = %q", log.Path())
	}
}
