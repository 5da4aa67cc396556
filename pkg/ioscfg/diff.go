package ioscfg

import (
	"regexp"
	"strings"

	"github.com/amalmborg97/cisco.ios/pkg/util"
)

// Match selects how candidate lines are compared against the running config.
type Match string

// Match values.
const (
	MatchLine   Match = "line"   // a line differs when its text and parents are absent
	MatchStrict Match = "strict" // a line differs when the line at the same position differs
	MatchExact  Match = "exact"  // the whole block differs when any line differs
	MatchNone   Match = "none"   // every candidate line is emitted
)

// Replace selects the granularity of the emitted difference.
type Replace string

// Replace values.
const (
	ReplaceLine  Replace = "line"
	ReplaceBlock Replace = "block"
)

// Options control Difference and GetDiff.
type Options struct {
	Match   Match
	Replace Replace

	// Path restricts the running side to the block at this parent path.
	Path []string

	// IgnoreLines are regular expressions of running-config lines to disregard.
	IgnoreLines []string
}

func (o Options) withDefaults() Options {
	if o.Match == "" {
		o.Match = MatchLine
	}
	if o.Replace == "" {
		o.Replace = ReplaceLine
	}
	return o
}

// Validate checks Match and Replace against the supported values.
func (o Options) Validate() error {
	o = o.withDefaults()
	v := &util.ValidationBuilder{}
	values := SupportedOptions()
	v.Schema(oneOf(string(o.Match), values.DiffMatch), "match",
		"invalid value %q, valid values are %s", o.Match, strings.Join(values.DiffMatch, ", "))
	v.Schema(oneOf(string(o.Replace), values.DiffReplace), "replace",
		"invalid value %q, valid values are %s", o.Replace, strings.Join(values.DiffReplace, ", "))
	return v.Build()
}

func oneOf(s string, values []string) bool {
	for _, v := range values {
		if s == v {
			return true
		}
	}
	return false
}

// Difference returns the lines of c that are not satisfied by other, with
// every parent emitted before its children and no line emitted twice.
func (c *Config) Difference(other *Config, opts Options) ([]*Line, error) {
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	var theirs []*Line
	if other != nil {
		theirs = other.items
		if len(opts.Path) > 0 && opts.Match != MatchLine {
			block, err := other.Block(opts.Path)
			if err != nil {
				theirs = nil
			} else {
				theirs = block
			}
		}
	}

	var updates []*Line
	switch opts.Match {
	case MatchLine:
		for _, l := range c.items {
			if !contains(theirs, l) {
				updates = append(updates, l)
			}
		}
	case MatchStrict:
		for i, l := range c.items {
			if i >= len(theirs) || theirs[i].Text != l.Text {
				updates = append(updates, l)
			}
		}
	case MatchExact:
		if len(theirs) != len(c.items) {
			updates = c.items
			break
		}
		for i, l := range c.items {
			if !l.Same(theirs[i]) {
				updates = c.items
				break
			}
		}
	case MatchNone:
		updates = c.items
	}

	if opts.Replace == ReplaceBlock {
		var roots []*Line
		seen := map[string]bool{}
		addRoot := func(l *Line) {
			if !seen[l.id()] {
				seen[l.id()] = true
				roots = append(roots, l)
			}
		}
		for _, l := range updates {
			if len(l.Parents) == 0 {
				addRoot(l)
				continue
			}
			for _, p := range l.Parents {
				addRoot(p)
			}
		}
		updates = nil
		for _, r := range roots {
			updates = append(updates, expand(r)...)
		}
	}

	visited := map[string]bool{}
	var expanded []*Line
	for _, l := range updates {
		for _, p := range l.Parents {
			if !visited[p.id()] {
				visited[p.id()] = true
				expanded = append(expanded, p)
			}
		}
		if !visited[l.id()] {
			visited[l.id()] = true
			expanded = append(expanded, l)
		}
	}
	return expanded, nil
}

// Diff is the result of GetDiff.
type Diff struct {
	ConfigDiff string            `json:"config_diff"`
	BannerDiff map[string]string `json:"banner_diff"`
}

var blankLines = regexp.MustCompile(`\n\s*\n`)

// GetDiff compares a candidate configuration with the running configuration
// and returns the commands needed to apply the candidate, plus the banners
// whose text changed.
//
// With MatchExact and no Path, each top-level block of the candidate is
// compared on its own: running lines missing from the candidate are negated
// first, then candidate lines missing from running are added.
func GetDiff(candidate, running string, opts Options) (*Diff, error) {
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	candidate = blankLines.ReplaceAllString(candidate, "\n")
	diff := &Diff{BannerDiff: map[string]string{}}

	if len(opts.Path) == 0 && opts.Match == MatchExact {
		cand, err := Load(candidate)
		if err != nil {
			return nil, err
		}
		run, err := Load(running, opts.IgnoreLines...)
		if err != nil {
			return nil, err
		}
		var out []string
		for _, root := range cand.Roots() {
			path := []string{root.Text}
			have, err := run.Block(path)
			if err != nil {
				have = nil
			}
			want, _ := cand.Block(path)
			out = append(out, exactDiff(want, have)...)
		}
		diff.ConfigDiff = strings.TrimRight(strings.Join(out, "\n"), "\n ")
		return diff, nil
	}

	wantSrc, wantBanners := ExtractBanners(candidate)
	cand, err := Load(wantSrc)
	if err != nil {
		return nil, err
	}
	var lines []*Line
	haveBanners := map[string]string{}
	if running != "" && opts.Match != MatchNone {
		var haveSrc string
		haveSrc, haveBanners = ExtractBanners(running)
		run, err := Load(haveSrc, opts.IgnoreLines...)
		if err != nil {
			return nil, err
		}
		if lines, err = cand.Difference(run, opts); err != nil {
			return nil, err
		}
	} else {
		lines = cand.Items()
	}
	diff.ConfigDiff = strings.Join(Commands(lines), "\n")
	diff.BannerDiff = DiffBanners(wantBanners, haveBanners)
	return diff, nil
}

// exactDiff negates have-lines absent from want, then adds want-lines absent
// from have. Children of a negated block are not negated again.
func exactDiff(want, have []*Line) []string {
	var out []string
	emitted := map[string]bool{}
	negated := map[string]bool{}
	for _, l := range have {
		if contains(want, l) {
			continue
		}
		underNegated := false
		for _, p := range l.Parents {
			if negated[p.id()] {
				underNegated = true
			}
		}
		if underNegated {
			continue
		}
		for _, p := range l.Parents {
			if !emitted[p.id()] {
				emitted[p.id()] = true
				out = append(out, p.Indented(DefaultIndent))
			}
		}
		if l.HasChildren() {
			negated[l.id()] = true
		}
		text := l.Text
		if !strings.HasPrefix(text, "no ") {
			text = "no " + text
		}
		out = append(out, strings.Repeat(" ", DefaultIndent*l.Depth())+text)
	}

	added := map[string]bool{}
	for _, l := range want {
		if contains(have, l) {
			continue
		}
		for _, p := range l.Parents {
			if !added[p.id()] {
				added[p.id()] = true
				out = append(out, p.Indented(DefaultIndent))
			}
		}
		added[l.id()] = true
		out = append(out, l.Indented(DefaultIndent))
	}
	return out
}
