package cli

import (
	"strings"
	"testing"
)

func TestUnifiedDiff(t *testing.T) {
	before := "router bgp 65000\n bgp log-neighbor-changes\n timers bgp 60 180\n"
	after := "router bgp 65000\n bgp log-neighbor-changes\n timers bgp 100 200\n"

	got, err := UnifiedDiff(before, after, "before", "after")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"--- before\n",
		"+++ after\n",
		"- timers bgp 60 180\n",
		"+ timers bgp 100 200\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("diff missing %q:\n%s", want, got)
		}
	}

	same, err := UnifiedDiff(before, before, "before", "after")
	if err != nil || same != "" {
		t.Errorf("UnifiedDiff of equal texts = %q, %v", same, err)
	}
}

func TestColorDiff(t *testing.T) {
	text := "--- a\n+++ b\n@@ -1 +1 @@\n-old\n+new\n same\n"

	withColor(t, false)
	if got := ColorDiff(text); got != text {
		t.Errorf("colour off should leave diff unchanged, got %q", got)
	}

	SetColor(true)
	got := ColorDiff(text)
	for _, want := range []string{"\033[31m-old\033[0m\n", "\033[32m+new\033[0m\n", " same\n", "\033[1m--- a\033[0m\n"} {
		if !strings.Contains(got, want) {
			t.Errorf("coloured diff missing %q:\n%q", want, got)
		}
	}
}
