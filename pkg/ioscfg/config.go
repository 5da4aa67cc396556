// Package ioscfg loads IOS configuration text into an indentation tree and
// computes line-level differences between two configurations.
package ioscfg

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/amalmborg97/cisco.ios/pkg/util"
)

// DefaultIndent is the indentation width of IOS running-config.
const DefaultIndent = 1

// Line is one configuration line with its position in the tree.
type Line struct {
	Text     string // text without indentation
	Raw      string // the line as read
	Number   int    // 1-based line number in the source text
	Parents  []*Line
	Children []*Line
}

// ParentTexts returns the texts of the line's ancestors, outermost first.
func (l *Line) ParentTexts() []string {
	out := make([]string, len(l.Parents))
	for i, p := range l.Parents {
		out[i] = p.Text
	}
	return out
}

// HasChildren reports whether the line opens a block.
func (l *Line) HasChildren() bool {
	return len(l.Children) > 0
}

// Depth is the nesting level, 0 for top-level lines.
func (l *Line) Depth() int {
	return len(l.Parents)
}

// Same reports whether two lines have the same text under the same parents.
func (l *Line) Same(o *Line) bool {
	if l.Text != o.Text || len(l.Parents) != len(o.Parents) {
		return false
	}
	for i := range l.Parents {
		if l.Parents[i].Text != o.Parents[i].Text {
			return false
		}
	}
	return true
}

func (l *Line) id() string {
	return strings.Join(append(l.ParentTexts(), l.Text), "\x00")
}

// Indented renders the line with indent spaces per level.
func (l *Line) Indented(indent int) string {
	return strings.Repeat(" ", indent*l.Depth()) + l.Text
}

// Config is a parsed configuration.
type Config struct {
	indent int
	items  []*Line
}

// Load parses text with the default indentation. Lines matching any of the
// ignore regular expressions are dropped, as are blank lines and comments.
func Load(text string, ignore ...string) (*Config, error) {
	return LoadIndent(text, DefaultIndent, ignore...)
}

// LoadIndent parses text where each nesting level adds indent spaces.
func LoadIndent(text string, indent int, ignore ...string) (*Config, error) {
	if indent < 1 {
		return nil, fmt.Errorf("indent must be positive, got %d", indent)
	}
	var ignoreRe []*regexp.Regexp
	for _, pattern := range ignore {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, util.NewSchemaError("ignore_lines", "invalid regular expression %q: %v", pattern, err)
		}
		ignoreRe = append(ignoreRe, re)
	}

	c := &Config{indent: indent}
	var ancestors []*Line
	for n, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		trimmed := strings.TrimRight(raw, " \t")
		body := strings.TrimSpace(trimmed)
		if body == "" || strings.HasPrefix(body, "!") || ignored(body, ignoreRe) {
			continue
		}
		line := &Line{Text: body, Raw: trimmed, Number: n + 1}

		level := (len(trimmed) - len(strings.TrimLeft(trimmed, " \t"))) / indent
		if level > len(ancestors) {
			level = len(ancestors)
		}
		ancestors = ancestors[:level]
		line.Parents = append([]*Line(nil), ancestors...)
		if level > 0 {
			parent := ancestors[level-1]
			parent.Children = append(parent.Children, line)
		}
		ancestors = append(ancestors, line)
		c.items = append(c.items, line)
	}
	return c, nil
}

func ignored(text string, res []*regexp.Regexp) bool {
	for _, re := range res {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// Items returns every line in source order.
func (c *Config) Items() []*Line {
	return c.items
}

// Roots returns the top-level lines in source order.
func (c *Config) Roots() []*Line {
	var out []*Line
	for _, l := range c.items {
		if l.Depth() == 0 {
			out = append(out, l)
		}
	}
	return out
}

// Object returns the line at path, where path lists the texts from the
// top-level line down to the wanted line.
func (c *Config) Object(path []string) (*Line, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("empty path")
	}
	for _, l := range c.items {
		if l.Text != path[len(path)-1] || l.Depth() != len(path)-1 {
			continue
		}
		match := true
		for i, p := range l.Parents {
			if p.Text != path[i] {
				match = false
				break
			}
		}
		if match {
			return l, nil
		}
	}
	return nil, fmt.Errorf("%w: path %q", util.ErrNotFound, strings.Join(path, " / "))
}

// Block returns the line at path followed by all of its descendants.
func (c *Config) Block(path []string) ([]*Line, error) {
	l, err := c.Object(path)
	if err != nil {
		return nil, err
	}
	return expand(l), nil
}

func expand(l *Line) []*Line {
	out := []*Line{l}
	for _, child := range l.Children {
		out = append(out, expand(child)...)
	}
	return out
}

// String renders the configuration with its indentation.
func (c *Config) String() string {
	return Dump(c.items, c.indent)
}

// Dump renders lines with indent spaces per nesting level.
func Dump(lines []*Line, indent int) string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Indented(indent)
	}
	return strings.Join(out, "\n")
}

// Commands renders lines without indentation.
func Commands(lines []*Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}

func contains(lines []*Line, l *Line) bool {
	for _, o := range lines {
		if o.Same(l) {
			return true
		}
	}
	return false
}
