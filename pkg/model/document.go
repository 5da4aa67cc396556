package model

import (
	"fmt"
	"sort"

	"github.com/amalmborg97/cisco.ios/pkg/util"
)

// Document is the desired or current configuration of one feature.
// Documents are not modified after construction.
type Document interface {
	// Feature returns the feature name, e.g. "bgp_global".
	Feature() string

	// Identity returns the value naming the configuration context
	// (the BGP AS number); singleton features return "".
	Identity() string

	// IdentityPath returns the document path holding the identity.
	IdentityPath() string

	// Attrs flattens the document into attributes in schema order.
	Attrs() []Attr

	// Validate checks structural constraints and mutually exclusive options.
	Validate() error

	// IsEmpty reports whether the document carries no configuration at all.
	IsEmpty() bool
}

// BuildFunc rebuilds a document of one feature from its identity and attributes.
type BuildFunc func(identity string, attrs []Attr) (Document, error)

type featureEntry struct {
	empty func() Document
	build BuildFunc
}

var features = map[string]featureEntry{
	FeatureBGPGlobal: {
		empty: func() Document { return &BGPGlobal{} },
		build: func(identity string, attrs []Attr) (Document, error) {
			return BuildBGPGlobal(identity, attrs)
		},
	},
	FeatureEVPNGlobal: {
		empty: func() Document { return &EVPNGlobal{} },
		build: func(identity string, attrs []Attr) (Document, error) {
			return BuildEVPNGlobal(identity, attrs)
		},
	},
}

// Features returns the names of all known features, sorted.
func Features() []string {
	names := make([]string, 0, len(features))
	for name := range features {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewDocument returns an empty document of the named feature, ready to be
// decoded into.
func NewDocument(feature string) (Document, error) {
	f, ok := features[feature]
	if !ok {
		return nil, fmt.Errorf("%w: feature %q", util.ErrNotFound, feature)
	}
	return f.empty(), nil
}

// Builder returns the BuildFunc of the named feature.
func Builder(feature string) (BuildFunc, error) {
	f, ok := features[feature]
	if !ok {
		return nil, fmt.Errorf("%w: feature %q", util.ErrNotFound, feature)
	}
	return f.build, nil
}

// SameIdentity compares two identities. AS numbers compare by value so that
// asplain and asdot spellings of the same AS are equal.
func SameIdentity(a, b string) bool {
	if a == b {
		return true
	}
	x, errA := util.ParseASN(a)
	y, errB := util.ParseASN(b)
	return errA == nil && errB == nil && x == y
}

func boolAttr(attrs []Attr, kind string, v *bool) []Attr {
	if v == nil {
		return attrs
	}
	return append(attrs, Attr{Kind: kind, Value: *v})
}

func intAttr(attrs []Attr, kind string, v int) []Attr {
	if v == 0 {
		return attrs
	}
	return append(attrs, Attr{Kind: kind, Value: v})
}

func stringAttr(attrs []Attr, kind, v string) []Attr {
	if v == "" {
		return attrs
	}
	return append(attrs, Attr{Kind: kind, Value: v})
}

func boolPtr(b bool) *bool {
	return &b
}

// attrBool returns the bool carried by a, which must be a present flag.
func attrBool(a Attr) (*bool, error) {
	b, ok := a.Value.(bool)
	if !ok {
		return nil, fmt.Errorf("%s: expected bool, got %T", a.Path(), a.Value)
	}
	return boolPtr(b), nil
}

func attrInt(a Attr) (int, error) {
	v, ok := a.Value.(int)
	if !ok {
		return 0, fmt.Errorf("%s: expected int, got %T", a.Path(), a.Value)
	}
	return v, nil
}

func attrString(a Attr) (string, error) {
	v, ok := a.Value.(string)
	if !ok {
		return "", fmt.Errorf("%s: expected string, got %T", a.Path(), a.Value)
	}
	return v, nil
}
