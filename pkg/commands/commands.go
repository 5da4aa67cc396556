// Package commands turns attribute-level changes into ordered IOS
// configuration lines.
package commands

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/amalmborg97/cisco.ios/pkg/diff"
	"github.com/amalmborg97/cisco.ios/pkg/model"
	"github.com/amalmborg97/cisco.ios/pkg/template"
)

// Command is one configuration line.
type Command struct {
	Line    string `json:"line"`
	Section string `json:"section,omitempty"`
	Negate  bool   `json:"negate,omitempty"`
}

func (c Command) String() string {
	return c.Line
}

// Lines returns the text of each command.
func Lines(cmds []Command) []string {
	out := make([]string, len(cmds))
	for i, c := range cmds {
		out[i] = c.Line
	}
	return out
}

// Generate renders entries as commands under the context of identity.
//
// The context line comes first, preceded by the removal of the old context
// when entries replace it. Removals follow in reverse schema order, then
// additions and modifications in schema order. A modification of a Replace
// rule negates the old line in the removal phase.
func Generate(tmpl *template.Template, identity string, entries []diff.Entry) ([]Command, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	var (
		cmds    []Command
		removes []model.Attr
		sets    []model.Attr
	)
	for _, e := range entries {
		switch {
		case e.Identity:
			old, _ := e.Old.(string)
			cmds = append(cmds, Command{Line: "no " + tmpl.Context(old), Negate: true})
		case e.Type == diff.EntryRemove:
			removes = append(removes, e.OldAttr())
		case e.Type == diff.EntryModify:
			if r, ok := tmpl.Rule(e.Kind); ok && r.Replace {
				removes = append(removes, e.OldAttr())
			}
			sets = append(sets, e.NewAttr())
		default:
			sets = append(sets, e.NewAttr())
		}
	}

	cmds = append(cmds, Command{Line: tmpl.Context(identity)})
	for _, a := range tmpl.SortedRemovals(removes) {
		line, err := tmpl.Negate(a)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, Command{Line: line, Section: a.Section(), Negate: true})
	}
	for _, a := range tmpl.Sorted(sets) {
		line, err := tmpl.Render(a)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, Command{Line: line, Section: a.Section()})
	}
	return cmds, nil
}

// Running renders doc as running-config text: the context line followed by
// its children indented by one space. Empty documents render as "".
func Running(doc model.Document) (string, error) {
	if doc == nil || doc.IsEmpty() {
		return "", nil
	}
	tmpl, ok := template.ForFeature(doc.Feature())
	if !ok {
		return "", fmt.Errorf("no template for feature %q", doc.Feature())
	}

	lines := []string{tmpl.Context(doc.Identity())}
	for _, a := range tmpl.Sorted(doc.Attrs()) {
		if a.Absent() {
			continue
		}
		line, err := tmpl.Render(a)
		if err != nil {
			return "", err
		}
		lines = append(lines, " "+line)
	}
	return strings.Join(lines, "\n") + "\n", nil
}

// Fingerprint hashes the ordered command lines with BLAKE2b-256. Equal
// command lists have equal fingerprints; an empty list hashes to "".
func Fingerprint(cmds []Command) string {
	if len(cmds) == 0 {
		return ""
	}
	h, _ := blake2b.New256(nil)
	for _, c := range cmds {
		h.Write([]byte(c.Line))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
