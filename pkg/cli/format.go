// Package cli provides shared formatting helpers for the iosrecon CLI.
package cli

import (
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/amalmborg97/cisco.ios/pkg/commands"
)

// colorEnabled is false when NO_COLOR is set (per no-color.org) or stdout is
// not a terminal.
var colorEnabled = os.Getenv("NO_COLOR") == "" && term.IsTerminal(int(os.Stdout.Fd()))

// SetColor forces colour output on or off.
func SetColor(enabled bool) {
	colorEnabled = enabled
}

// ColorEnabled reports whether the colour helpers emit ANSI codes.
func ColorEnabled() bool {
	return colorEnabled
}

func wrap(code, s string) string {
	if !colorEnabled {
		return s
	}
	return code + s + "\033[0m"
}

// Green wraps s in ANSI green. Returns s unchanged when colour is off.
func Green(s string) string { return wrap("\033[32m", s) }

// Yellow wraps s in ANSI yellow. Returns s unchanged when colour is off.
func Yellow(s string) string { return wrap("\033[33m", s) }

// Red wraps s in ANSI red. Returns s unchanged when colour is off.
func Red(s string) string { return wrap("\033[31m", s) }

// Bold wraps s in ANSI bold. Returns s unchanged when colour is off.
func Bold(s string) string { return wrap("\033[1m", s) }

// Dim wraps s in ANSI dim. Returns s unchanged when colour is off.
func Dim(s string) string { return wrap("\033[2m", s) }

// DotPad pads name with dots to the given width.
// Example: DotPad("spine1 bgp", 20) → "spine1 bgp ........."
func DotPad(name string, width int) string {
	if width <= 0 || len(name) >= width-1 {
		return name
	}
	dots := width - len(name) - 1
	return name + " " + strings.Repeat(".", dots)
}

// Command colours a configuration command: negations red, the context line
// bold, everything else green.
func Command(c commands.Command) string {
	switch {
	case c.Negate:
		return Red(c.Line)
	case c.Section == "":
		return Bold(c.Line)
	}
	return Green(c.Line)
}
