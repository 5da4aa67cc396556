package cli

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// UnifiedDiff returns the unified diff of two texts, "" when they are equal.
func UnifiedDiff(before, after, fromName, toName string) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: fromName,
		ToFile:   toName,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("generating diff: %w", err)
	}
	return text, nil
}

// ColorDiff colours the added and removed lines of a unified diff.
func ColorDiff(text string) string {
	if !colorEnabled || text == "" {
		return text
	}
	lines := strings.SplitAfter(text, "\n")
	for i, l := range lines {
		switch {
		case strings.HasPrefix(l, "+++"), strings.HasPrefix(l, "---"):
			lines[i] = Bold(strings.TrimSuffix(l, "\n")) + suffix(l)
		case strings.HasPrefix(l, "@@"):
			lines[i] = Dim(strings.TrimSuffix(l, "\n")) + suffix(l)
		case strings.HasPrefix(l, "+"):
			lines[i] = Green(strings.TrimSuffix(l, "\n")) + suffix(l)
		case strings.HasPrefix(l, "-"):
			lines[i] = Red(strings.TrimSuffix(l, "\n")) + suffix(l)
		}
	}
	return strings.Join(lines, "")
}

func suffix(l string) string {
	if strings.HasSuffix(l, "\n") {
		return "\n"
	}
	return ""
}
