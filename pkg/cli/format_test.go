package cli

import (
	"strings"
	"testing"

	"github.com/amalmborg97/cisco.ios/pkg/commands"
)

func withColor(t *testing.T, enabled bool) {
	t.Helper()
	prev := ColorEnabled()
	SetColor(enabled)
	t.Cleanup(func() { SetColor(prev) })
}

func TestDotPad(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		width    int
		expected string
	}{
		{"normal case", "spine1 bgp", 20, "spine1 bgp " + strings.Repeat(".", 9)},
		{"short name", "ok", 10, "ok " + strings.Repeat(".", 7)},
		{"name equals width minus one", "abcde", 6, "abcde"},
		{"name equals width", "abcdef", 6, "abcdef"},
		{"name longer than width", "very-long-name", 5, "very-long-name"},
		{"empty string", "", 10, " " + strings.Repeat(".", 9)},
		{"width of 1", "", 1, ""},
		{"width of 2 with empty string", "", 2, " ."},
		{"zero width", "x", 0, "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DotPad(tt.input, tt.width)
			if got != tt.expected {
				t.Errorf("DotPad(%q, %d) = %q, want %q", tt.input, tt.width, got, tt.expected)
			}
		})
	}
}

func TestColorFunctions(t *testing.T) {
	withColor(t, true)

	tests := []struct {
		name   string
		fn     func(string) string
		prefix string
	}{
		{"Green", Green, "\033[32m"},
		{"Yellow", Yellow, "\033[33m"},
		{"Red", Red, "\033[31m"},
		{"Bold", Bold, "\033[1m"},
		{"Dim", Dim, "\033[2m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.fn("hello")
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("%s should start with %q", tt.name, tt.prefix)
			}
			if !strings.Contains(got, "hello") {
				t.Errorf("%s should contain the input string", tt.name)
			}
			if !strings.HasSuffix(got, "\033[0m") {
				t.Errorf("%s should end with reset code", tt.name)
			}
		})
	}
}

func TestColorDisabled(t *testing.T) {
	withColor(t, false)

	for _, fn := range []func(string) string{Green, Yellow, Red, Bold, Dim} {
		if got := fn("hello"); got != "hello" {
			t.Errorf("colour off: got %q", got)
		}
	}
}

func TestCommand(t *testing.T) {
	withColor(t, true)

	tests := []struct {
		name   string
		cmd    commands.Command
		prefix string
	}{
		{"context", commands.Command{Line: "router bgp 65000"}, "\033[1m"},
		{"negation", commands.Command{Line: "no bgp graceful-shutdown", Section: "bgp", Negate: true}, "\033[31m"},
		{"old context", commands.Command{Line: "no router bgp 1", Negate: true}, "\033[31m"},
		{"set", commands.Command{Line: "timers bgp 100 200", Section: "timers"}, "\033[32m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Command(tt.cmd)
			if !strings.HasPrefix(got, tt.prefix) || !strings.Contains(got, tt.cmd.Line) {
				t.Errorf("Command(%q) = %q, want prefix %q", tt.cmd.Line, got, tt.prefix)
			}
		})
	}
}
