// Package diff compares a desired and a current document attribute by
// attribute and produces the changes each reconciliation mode calls for.
package diff

import (
	"fmt"
	"strings"

	"github.com/amalmborg97/cisco.ios/pkg/model"
	"github.com/amalmborg97/cisco.ios/pkg/util"
)

// Mode selects how desired and current configuration are combined.
type Mode string

const (
	Merged     Mode = "merged"
	Replaced   Mode = "replaced"
	Overridden Mode = "overridden"
	Deleted    Mode = "deleted"
	Rendered   Mode = "rendered"
	Gathered   Mode = "gathered"
	Parsed     Mode = "parsed"
)

// Modes lists every mode in documentation order.
var Modes = []Mode{Merged, Replaced, Overridden, Deleted, Rendered, Gathered, Parsed}

// ParseMode converts a state name into a Mode.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes {
		if m == known {
			return m, nil
		}
	}
	return "", util.NewModeError("", s)
}

// NeedsCurrent reports whether the mode reads the device's running configuration.
func (m Mode) NeedsCurrent() bool {
	return m != Rendered
}

// NeedsDesired reports whether the mode takes a desired document.
func (m Mode) NeedsDesired() bool {
	return m != Gathered && m != Parsed
}

// EntryType is the kind of change an Entry describes.
type EntryType string

const (
	EntryAdd    EntryType = "add"
	EntryModify EntryType = "modify"
	EntryRemove EntryType = "remove"
)

// Entry is one attribute-level change.
type Entry struct {
	Type EntryType   `json:"type"`
	Path string      `json:"path"`
	Kind string      `json:"kind"`
	Key  string      `json:"key,omitempty"`
	Old  interface{} `json:"old,omitempty"`
	New  interface{} `json:"new,omitempty"`

	// Identity marks the removal of the whole configuration context, for
	// example an AS number change. Old and New hold the two identities.
	Identity bool `json:"identity,omitempty"`
}

// OldAttr returns the attribute being removed or replaced.
func (e Entry) OldAttr() model.Attr {
	return model.Attr{Kind: e.Kind, Key: e.Key, Value: e.Old}
}

// NewAttr returns the attribute being added or set.
func (e Entry) NewAttr() model.Attr {
	return model.Attr{Kind: e.Kind, Key: e.Key, Value: e.New}
}

func (e Entry) String() string {
	switch e.Type {
	case EntryAdd:
		return fmt.Sprintf("[ADD] %s = %v", e.Path, e.New)
	case EntryModify:
		return fmt.Sprintf("[MOD] %s: %v -> %v", e.Path, e.Old, e.New)
	default:
		return fmt.Sprintf("[DEL] %s (was %v)", e.Path, e.Old)
	}
}

func add(a model.Attr) Entry {
	return Entry{Type: EntryAdd, Path: a.Path(), Kind: a.Kind, Key: a.Key, New: a.Value}
}

func modify(from, to model.Attr) Entry {
	return Entry{Type: EntryModify, Path: to.Path(), Kind: to.Kind, Key: to.Key, Old: from.Value, New: to.Value}
}

func remove(a model.Attr) Entry {
	return Entry{Type: EntryRemove, Path: a.Path(), Kind: a.Kind, Key: a.Key, Old: a.Value}
}

// Compute returns the entries moving current to desired under mode. In merged
// mode a structured desired value keeps the current value of the fields it
// leaves unset (see model.Merger). Either
// document may be nil, meaning empty. Entries for desired attributes come in
// desired order, followed by removals of current-only attributes in current
// order.
func Compute(desired, current model.Document, mode Mode) ([]Entry, error) {
	switch mode {
	case Gathered, Parsed:
		return nil, nil
	case Rendered:
		current = nil
	case Merged, Replaced, Overridden, Deleted:
	default:
		return nil, util.NewModeError("", string(mode))
	}

	curID, wantID := identity(current), identity(desired)
	mismatch := curID != "" && wantID != "" && !model.SameIdentity(curID, wantID)

	if mode == Deleted {
		if mismatch {
			return nil, nil
		}
		var entries []Entry
		for _, a := range attrs(current) {
			if !a.Absent() {
				entries = append(entries, remove(a))
			}
		}
		return entries, nil
	}

	if mismatch {
		if mode == Merged {
			return nil, util.NewConflictError(desired.IdentityPath(),
				"merged cannot change the configuration context; use replaced or overridden", curID, wantID)
		}
		entries := []Entry{{
			Type:     EntryRemove,
			Path:     desired.IdentityPath(),
			Old:      curID,
			New:      wantID,
			Identity: true,
		}}
		for _, a := range attrs(desired) {
			if !a.Absent() {
				entries = append(entries, add(a))
			}
		}
		return entries, nil
	}

	want := attrs(desired)
	cur := model.NewAttrSet(attrs(current))

	var entries []Entry
	wanted := map[string]bool{}
	sections := map[string]bool{}
	for _, a := range want {
		wanted[a.ID()] = true
		sections[a.Section()] = true

		have, ok := cur.Get(a.ID())
		switch {
		case a.Absent():
			if ok && !have.Absent() {
				entries = append(entries, remove(have))
			}
		case !ok:
			entries = append(entries, add(a))
		default:
			if mode == Merged {
				a = a.MergedWith(have)
			}
			if have.Value != a.Value {
				entries = append(entries, modify(have, a))
			}
		}
	}

	if mode == Merged {
		return entries, nil
	}
	for _, a := range cur.List() {
		if wanted[a.ID()] || a.Absent() {
			continue
		}
		if mode == Overridden || sections[a.Section()] {
			entries = append(entries, remove(a))
		}
	}
	return entries, nil
}

// Apply returns attrs with entries applied. An identity removal clears every
// attribute before the remaining entries are applied.
func Apply(attrs []model.Attr, entries []Entry) []model.Attr {
	set := model.NewAttrSet(attrs)
	for _, e := range entries {
		switch {
		case e.Identity:
			set = model.NewAttrSet(nil)
		case e.Type == EntryRemove:
			set.Delete(e.OldAttr().ID())
		default:
			set.Set(e.NewAttr())
		}
	}
	return set.List()
}

// HasIdentityRemoval reports whether entries replace the configuration context.
func HasIdentityRemoval(entries []Entry) bool {
	for _, e := range entries {
		if e.Identity {
			return true
		}
	}
	return false
}

func identity(d model.Document) string {
	if d == nil {
		return ""
	}
	return d.Identity()
}

func attrs(d model.Document) []model.Attr {
	if d == nil {
		return nil
	}
	return d.Attrs()
}
