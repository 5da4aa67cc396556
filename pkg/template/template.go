// Package template holds the per-feature command schema: one rule per kind of
// configuration line, each able to parse the line into an attribute and to
// render the attribute back into the line.
package template

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/amalmborg97/cisco.ios/pkg/model"
)

// Rule parses and renders one kind of configuration line.
type Rule struct {
	// Kind is the attribute kind produced by this rule.
	Kind string

	// Group orders rules across sections; Rank orders rules within a group.
	Group int
	Rank  int

	Regexp *regexp.Regexp

	// Parse converts the named submatches of Regexp into the attribute key and value.
	Parse func(m map[string]string) (key string, value interface{}, err error)

	// Render produces the configuration line for a present attribute.
	Render func(a model.Attr) string

	// Replace makes a modified value negate the old line before setting the
	// new one, for commands whose options merge on the device.
	Replace bool
}

// Template is the command schema of one feature.
type Template struct {
	Feature string

	// Scope matches the top-level line opening the feature's block. A named
	// group "identity" captures the identity, if the feature has one.
	Scope *regexp.Regexp

	// Context renders the top-level line for an identity.
	Context func(identity string) string

	// Skip matches child lines whose sub-blocks belong to other resources.
	Skip []*regexp.Regexp

	Rules []*Rule

	byKind map[string]*Rule
}

func (t *Template) index() {
	t.byKind = make(map[string]*Rule, len(t.Rules))
	for _, r := range t.Rules {
		t.byKind[r.Kind] = r
	}
}

// Rule returns the rule for an attribute kind.
func (t *Template) Rule(kind string) (*Rule, bool) {
	r, ok := t.byKind[kind]
	return r, ok
}

// Opens reports whether a top-level line opens the feature's block and
// returns the captured identity.
func (t *Template) Opens(line string) (identity string, ok bool) {
	m := t.Scope.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", false
	}
	if i := t.Scope.SubexpIndex("identity"); i >= 0 {
		identity = m[i]
	}
	return identity, true
}

// Skipped reports whether a child line starts a sub-block owned elsewhere.
func (t *Template) Skipped(line string) bool {
	line = strings.TrimSpace(line)
	for _, re := range t.Skip {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// ErrNoRule is returned by Match when no rule accepts a line.
var ErrNoRule = errors.New("no matching command")

// Match parses one child line into an attribute.
func (t *Template) Match(line string) (model.Attr, error) {
	line = strings.TrimSpace(line)
	for _, r := range t.Rules {
		sub := r.Regexp.FindStringSubmatch(line)
		if sub == nil {
			continue
		}
		m := make(map[string]string, len(sub))
		for i, name := range r.Regexp.SubexpNames() {
			if name != "" {
				m[name] = sub[i]
			}
		}
		key, value, err := r.Parse(m)
		if err != nil {
			return model.Attr{}, err
		}
		return model.Attr{Kind: r.Kind, Key: key, Value: value}, nil
	}
	return model.Attr{}, ErrNoRule
}

// Render renders a present attribute as its configuration line.
func (t *Template) Render(a model.Attr) (string, error) {
	r, ok := t.Rule(a.Kind)
	if !ok {
		return "", fmt.Errorf("%s: no rule for attribute kind %q", t.Feature, a.Kind)
	}
	if a.Absent() {
		return "", fmt.Errorf("%s: cannot render absence assertion %s", t.Feature, a.Path())
	}
	return r.Render(a), nil
}

// Negate renders the line removing a present attribute.
func (t *Template) Negate(a model.Attr) (string, error) {
	line, err := t.Render(a)
	if err != nil {
		return "", err
	}
	return "no " + line, nil
}

// Order returns the permutation of attrs in schema order: rule group, then
// section key, then rule rank. Section keys are ordered by their first
// appearance in the lowest group that holds them, so a peer group defined
// before the neighbor lines comes before its members. Attributes with equal
// positions keep their input order.
func (t *Template) Order(attrs []model.Attr) []int {
	return t.order(attrs, false)
}

// RemovalOrder is Order reversed at every level, so a line is removed before
// the lines it depends on: neighbor options before remote-as, members before
// their peer group.
func (t *Template) RemovalOrder(attrs []model.Attr) []int {
	return t.order(attrs, true)
}

func (t *Template) order(attrs []model.Attr, reverse bool) []int {
	groups := make([]int, len(attrs))
	ranks := make([]int, len(attrs))
	byGroup := make([]int, len(attrs))
	for i, a := range attrs {
		groups[i] = 1 << 30
		if r, ok := t.Rule(a.Kind); ok {
			groups[i], ranks[i] = r.Group, r.Rank
		}
		byGroup[i] = i
	}
	sort.SliceStable(byGroup, func(x, y int) bool { return groups[byGroup[x]] < groups[byGroup[y]] })

	keys := make([]int, len(attrs))
	firstSeen := map[string]int{}
	for _, i := range byGroup {
		a := attrs[i]
		if !a.SectionKeyed() {
			continue
		}
		id := a.Section() + "\x00" + a.Key
		idx, seen := firstSeen[id]
		if !seen {
			idx = len(firstSeen)
			firstSeen[id] = idx
		}
		keys[i] = idx
	}

	pos := make([][3]int, len(attrs))
	for i := range attrs {
		pos[i] = [3]int{groups[i], keys[i], ranks[i]}
		if reverse {
			pos[i] = [3]int{-groups[i], -keys[i], -ranks[i]}
		}
	}
	order := make([]int, len(attrs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool {
		a, b := pos[order[x]], pos[order[y]]
		for k := 0; k < 3; k++ {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return false
	})
	return order
}

// Sorted returns a copy of attrs in schema order.
func (t *Template) Sorted(attrs []model.Attr) []model.Attr {
	return pick(attrs, t.Order(attrs))
}

// SortedRemovals returns a copy of attrs in removal order.
func (t *Template) SortedRemovals(attrs []model.Attr) []model.Attr {
	return pick(attrs, t.RemovalOrder(attrs))
}

func pick(attrs []model.Attr, order []int) []model.Attr {
	out := make([]model.Attr, 0, len(attrs))
	for _, i := range order {
		out = append(out, attrs[i])
	}
	return out
}

var registry = map[string]*Template{}

func register(t *Template) {
	t.index()
	registry[t.Feature] = t
}

// ForFeature returns the template of a feature.
func ForFeature(feature string) (*Template, bool) {
	t, ok := registry[feature]
	return t, ok
}

// flag parses a line whose presence is the whole value.
func flag(map[string]string) (string, interface{}, error) {
	return "", true, nil
}

func atoi(m map[string]string, name string) (int, error) {
	s := m[name]
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid number %q", name, s)
	}
	return v, nil
}

func intValue(a model.Attr) int {
	v, _ := a.Value.(int)
	return v
}

func stringValue(a model.Attr) string {
	v, _ := a.Value.(string)
	return v
}
