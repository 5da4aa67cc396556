// Package parser converts IOS running-config text into feature documents.
package parser

import (
	"errors"
	"fmt"

	"github.com/amalmborg97/cisco.ios/pkg/ioscfg"
	"github.com/amalmborg97/cisco.ios/pkg/model"
	"github.com/amalmborg97/cisco.ios/pkg/template"
	"github.com/amalmborg97/cisco.ios/pkg/util"
)

// Options control parsing.
type Options struct {
	// Lenient logs and skips unknown lines inside the feature's block
	// instead of failing.
	Lenient bool

	// IgnoreLines are regular expressions of lines to drop before parsing.
	IgnoreLines []string
}

// Parser parses the running configuration of one feature.
type Parser struct {
	tmpl  *template.Template
	build model.BuildFunc
	opts  Options
}

// New creates a parser for a feature.
func New(feature string, opts Options) (*Parser, error) {
	tmpl, ok := template.ForFeature(feature)
	if !ok {
		return nil, fmt.Errorf("%w: no template for feature %q", util.ErrNotFound, feature)
	}
	build, err := model.Builder(feature)
	if err != nil {
		return nil, err
	}
	return &Parser{tmpl: tmpl, build: build, opts: opts}, nil
}

// Parse reads text and returns the feature's document. Lines outside the
// feature's block are ignored. Text without the block yields an empty document.
func (p *Parser) Parse(text string) (model.Document, error) {
	cfg, err := ioscfg.Load(text, p.opts.IgnoreLines...)
	if err != nil {
		return nil, err
	}
	feature := p.tmpl.Feature
	logger := util.WithFeature(feature)

	var (
		identity string
		found    bool
		attrs    = model.NewAttrSet(nil)
	)
	for _, root := range cfg.Roots() {
		id, ok := p.tmpl.Opens(root.Text)
		if !ok {
			logger.Debugf("skipping out-of-scope line %d: %s", root.Number, root.Text)
			continue
		}
		if found {
			return nil, util.NewParseError(feature, root.Number, root.Text,
				"configuration block appears more than once")
		}
		found = true
		identity = id

		for _, child := range root.Children {
			if p.tmpl.Skipped(child.Text) {
				logger.Debugf("skipping sub-block at line %d: %s", child.Number, child.Text)
				continue
			}
			a, err := p.tmpl.Match(child.Text)
			if err == nil && child.HasChildren() {
				err = fmt.Errorf("unexpected sub-block under %q", child.Text)
			}
			if err != nil {
				if errors.Is(err, template.ErrNoRule) && p.opts.Lenient {
					logger.Warnf("ignoring unrecognized line %d: %s", child.Number, child.Text)
					continue
				}
				return nil, util.NewParseError(feature, child.Number, child.Text, err.Error())
			}
			if attrs.Has(a.ID()) {
				return nil, util.NewParseError(feature, child.Number, child.Text,
					fmt.Sprintf("duplicate %s", a.Path()))
			}
			attrs.Set(a)
		}
	}

	doc, err := p.build(identity, attrs.List())
	if err != nil {
		return nil, util.NewParseError(feature, 0, "", err.Error())
	}
	if err := doc.Validate(); err != nil {
		return nil, util.NewParseError(feature, 0, "", err.Error())
	}
	return doc, nil
}

// Parse is a convenience wrapper creating a parser for one call.
func Parse(feature, text string, opts Options) (model.Document, error) {
	p, err := New(feature, opts)
	if err != nil {
		return nil, err
	}
	return p.Parse(text)
}
