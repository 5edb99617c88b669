package cli

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerFiltersByLevel(t *testing.T) {
	tests := []struct {
		level     log.Level
		wantDebug bool
	}{
		{LogInfo, false},
		{LogDebug, true},
	}
	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.level)
			logger.Debug("layout cache hit", "engine", "layered")
			logger.Info("listening", "addr", ":8080")

			out := buf.String()
			if got := strings.Contains(out, "layout cache hit"); got != tt.wantDebug {
				t.Errorf("debug line present = %v, want %v:\n%s", got, tt.wantDebug, out)
			}
			if !strings.Contains(out, "addr=:8080") {
				t.Errorf("info line missing key/value pair:\n%s", out)
			}
		})
	}
}

func TestNewLoggerTimestamp(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, LogInfo).Info("listening")
	if !regexp.MustCompile(`^\d\d:\d\d:\d\d\.\d\d `).MatchString(buf.String()) {
		t.Errorf("line %q does not start with an HH:MM:SS.ss timestamp", buf.String())
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, LogInfo))
	time.Sleep(10 * time.Millisecond)
	prog.done("Server stopped")

	if !regexp.MustCompile(`Server stopped \(\d+ms\)`).MatchString(buf.String()) {
		t.Errorf("progress output %q lacks message and elapsed time", buf.String())
	}
}

func TestLoggerContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("empty context should yield log.Default()")
	}

	custom := newLogger(&bytes.Buffer{}, LogDebug)
	ctx := withLogger(context.Background(), custom)
	if loggerFromContext(ctx) != custom {
		t.Error("loggerFromContext did not return the attached logger")
	}

	child, cancel := context.WithCancel(ctx)
	defer cancel()
	if loggerFromContext(child) != custom {
		t.Error("derived context lost the logger")
	}
}
