package util

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

// saveLoggerState saves the current logger state for restoration
func saveLoggerState() (io.Writer, logrus.Level, logrus.Formatter) {
	return Logger.Out, Logger.Level, Logger.Formatter
}

// restoreLoggerState restores the logger to its previous state
func restoreLoggerState(out io.Writer, level logrus.Level, formatter logrus.Formatter) {
	Logger.SetOutput(out)
	Logger.SetLevel(level)
	Logger.SetFormatter(formatter)
}

func TestSetLogLevel(t *testing.T) {
	out, level, formatter := saveLoggerState()
	defer restoreLoggerState(out, level, formatter)

	tests := []struct {
		level   string
		wantErr bool
	}{
		{"debug", false},
		{"info", false},
		{"warn", false},
		{"warning", false},
		{"error", false},
		{"invalid", true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			err := SetLogLevel(tt.level)
			if (err != nil) != tt.wantErr {
				t.Errorf("SetLogLevel(%q) error = %v, wantErr %v", tt.level, err, tt.wantErr)
			}
		})
	}
}

func TestSetJSONFormat(t *testing.T) {
	out, level, formatter := saveLoggerState()
	defer restoreLoggerState(out, level, formatter)

	var buf bytes.Buffer
	SetLogOutput(&buf)
	SetJSONFormat()

	Infof("test %s", "json")

	output := buf.String()
	if len(output) == 0 || output[0] != '{' {
		t.Errorf("Expected JSON output starting with '{', got: %s", output)
	}
}

func TestWithRun(t *testing.T) {
	out, level, formatter := saveLoggerState()
	defer restoreLoggerState(out, level, formatter)

	var buf bytes.Buffer
	SetLogOutput(&buf)
	SetJSONFormat()

	WithRun("bgp_global", "merged").Info("run")

	output := buf.String()
	if !strings.Contains(output, `"feature":"bgp_global"`) {
		t.Errorf("missing feature field: %s", output)
	}
	if !strings.Contains(output, `"mode":"merged"`) {
		t.Errorf("missing mode field: %s", output)
	}
}

func TestContextEntries(t *testing.T) {
	if WithField("key", "value") == nil {
		t.Error("WithField should return non-nil entry")
	}
	if WithFields(map[string]interface{}{"k": 1}) == nil {
		t.Error("WithFields should return non-nil entry")
	}
	if WithDevice("rtr1") == nil {
		t.Error("WithDevice should return non-nil entry")
	}
	if WithFeature("evpn_global") == nil {
		t.Error("WithFeature should return non-nil entry")
	}
}

func TestLevelFiltering(t *testing.T) {
	out, level, formatter := saveLoggerState()
	defer restoreLoggerState(out, level, formatter)

	var buf bytes.Buffer
	SetLogOutput(&buf)
	SetLogLevel("warn")

	Debugf("hidden %d", 1)
	Infof("hidden %d", 2)
	if buf.Len() != 0 {
		t.Errorf("expected no output below warn, got %q", buf.String())
	}

	Warnf("shown %d", 3)
	Errorf("shown %d", 4)
	if got := strings.Count(buf.String(), "shown"); got != 2 {
		t.Errorf("expected 2 lines, got %d: %q", got, buf.String())
	}
}
