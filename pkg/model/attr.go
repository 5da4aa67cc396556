// Package model defines the typed configuration documents of each IOS feature
// and their flattening into command-granular attributes.
package model

import (
	"strings"
)

// Attr is one command-granular attribute of a document.
//
// Kind is the schema token, for example "bgp.log_neighbor_changes" or
// "neighbor[].remote_as". A "[]" inside Kind marks the list level that Key
// indexes, so "neighbor[].remote_as" with Key "198.51.100.1" addresses
// neighbor[198.51.100.1].remote_as.
//
// Value holds a comparable Go value: int, string, bool, or a struct of scalars.
// A bool false is an absence assertion: the attribute must not be configured.
type Attr struct {
	Kind  string      `json:"kind"`
	Key   string      `json:"key,omitempty"`
	Value interface{} `json:"value"`
}

// ID identifies the attribute independent of its value.
func (a Attr) ID() string {
	if a.Key == "" {
		return a.Kind
	}
	return a.Kind + "\x00" + a.Key
}

// Path renders the structural path, e.g. neighbor[198.51.100.1].remote_as.
func (a Attr) Path() string {
	if a.Key == "" {
		return strings.Replace(a.Kind, "[]", "", 1)
	}
	if strings.Contains(a.Kind, "[]") {
		return strings.Replace(a.Kind, "[]", "["+a.Key+"]", 1)
	}
	return a.Kind + "[" + a.Key + "]"
}

// Section returns the top-level key of the attribute ("bgp", "neighbor", "timers").
func (a Attr) Section() string {
	if i := strings.IndexAny(a.Kind, ".["); i >= 0 {
		return a.Kind[:i]
	}
	return a.Kind
}

// SectionKeyed reports whether Key indexes the top-level section itself
// (neighbor[], redistribute[]) rather than a nested leaf list.
func (a Attr) SectionKeyed() bool {
	return a.Key != "" && strings.HasPrefix(a.Kind, a.Section()+"[]")
}

// Absent reports whether the attribute asserts that the command is not configured.
func (a Attr) Absent() bool {
	b, ok := a.Value.(bool)
	return ok && !b
}

// Merger is implemented by structured values whose unset fields keep the
// current value when merged into an existing configuration line.
type Merger interface {
	Merge(current interface{}) interface{}
}

// MergedWith returns a with its unset fields filled from current when the
// value implements Merger.
func (a Attr) MergedWith(current Attr) Attr {
	if m, ok := a.Value.(Merger); ok {
		a.Value = m.Merge(current.Value)
	}
	return a
}

// Equal reports whether two attributes carry the same kind, key and value.
func (a Attr) Equal(b Attr) bool {
	return a.Kind == b.Kind && a.Key == b.Key && a.Value == b.Value
}

// AttrSet is an ordered attribute list indexed by ID.
type AttrSet struct {
	order []string
	attrs map[string]Attr
}

// NewAttrSet builds a set from attrs; later duplicates replace earlier ones in place.
func NewAttrSet(attrs []Attr) *AttrSet {
	s := &AttrSet{attrs: make(map[string]Attr, len(attrs))}
	for _, a := range attrs {
		s.Set(a)
	}
	return s
}

// Get returns the attribute with the given ID.
func (s *AttrSet) Get(id string) (Attr, bool) {
	a, ok := s.attrs[id]
	return a, ok
}

// Has reports whether id is present.
func (s *AttrSet) Has(id string) bool {
	_, ok := s.attrs[id]
	return ok
}

// Set inserts or replaces a.
func (s *AttrSet) Set(a Attr) {
	id := a.ID()
	if _, ok := s.attrs[id]; !ok {
		s.order = append(s.order, id)
	}
	s.attrs[id] = a
}

// Delete removes the attribute with the given ID.
func (s *AttrSet) Delete(id string) {
	if _, ok := s.attrs[id]; !ok {
		return
	}
	delete(s.attrs, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of attributes.
func (s *AttrSet) Len() int {
	return len(s.order)
}

// List returns the attributes in insertion order.
func (s *AttrSet) List() []Attr {
	out := make([]Attr, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.attrs[id])
	}
	return out
}
