package commands

import (
	"fmt"
	"sort"
	"strings"
)

// SessionOptions control how a command list is framed for a CLI session.
type SessionOptions struct {
	// CommitConfirmTimeout enters configuration mode with an archive
	// rollback timer of this many minutes.
	CommitConfirmTimeout int

	// CommitConfirmImmediate confirms the change right after "end". It
	// implies a rollback timer of one minute when no timeout is set.
	CommitConfirmImmediate bool
}

// Session frames cmds for an interactive configuration session. Lines
// reading "end" or starting with "!" are dropped from cmds.
func Session(cmds []Command, opts SessionOptions) []string {
	enter := "configure terminal"
	if opts.CommitConfirmTimeout > 0 || opts.CommitConfirmImmediate {
		timeout := opts.CommitConfirmTimeout
		if timeout <= 0 {
			timeout = 1
		}
		enter = fmt.Sprintf("configure terminal revert timer %d", timeout)
	}

	out := []string{enter}
	for _, c := range cmds {
		line := strings.TrimSpace(c.Line)
		if line == "" || line == "end" || strings.HasPrefix(line, "!") {
			continue
		}
		out = append(out, c.Line)
	}
	out = append(out, "end")
	if opts.CommitConfirmImmediate {
		out = append(out, "configure confirm")
	}
	return out
}

// DefaultBannerDelimiter is the multi-line delimiter used for banners.
const DefaultBannerDelimiter = "@"

// BannerSession frames banner changes keyed by "banner <type>", as returned
// by ioscfg.DiffBanners. Each banner gets its own session; banners are
// emitted in name order.
func BannerSession(banners map[string]string, delimiter string) []string {
	if delimiter == "" {
		delimiter = DefaultBannerDelimiter
	}
	keys := make([]string, 0, len(banners))
	for k := range banners {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []string
	for _, k := range keys {
		out = append(out,
			"configure terminal",
			k+" "+delimiter,
			banners[k],
			delimiter,
			"end",
		)
	}
	return out
}
