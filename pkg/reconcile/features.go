package reconcile

import (
	"sort"

	"github.com/amalmborg97/cisco.ios/pkg/diff"
	"github.com/amalmborg97/cisco.ios/pkg/model"
)

// Feature describes a reconcilable feature and the modes it accepts.
type Feature struct {
	Name  string      `json:"name"`
	Modes []diff.Mode `json:"modes"`
}

// Supports reports whether the feature accepts mode.
func (f Feature) Supports(mode diff.Mode) bool {
	for _, m := range f.Modes {
		if m == mode {
			return true
		}
	}
	return false
}

// DefaultFeatures returns every feature of the model with all modes enabled.
func DefaultFeatures() []Feature {
	var out []Feature
	for _, name := range model.Features() {
		out = append(out, Feature{Name: name, Modes: append([]diff.Mode(nil), diff.Modes...)})
	}
	return out
}

// Features returns the registered features sorted by name.
func (r *Reconciler) Features() []Feature {
	out := make([]Feature, 0, len(r.features))
	for _, f := range r.features {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Register adds or replaces a feature entry.
func (r *Reconciler) Register(f Feature) {
	r.features[f.Name] = f
}
