// Package reconcile computes the commands that move a device feature from its
// running configuration to a desired document under a reconciliation mode.
package reconcile

import (
	"fmt"
	"time"

	"github.com/amalmborg97/cisco.ios/pkg/commands"
	"github.com/amalmborg97/cisco.ios/pkg/diff"
	"github.com/amalmborg97/cisco.ios/pkg/model"
	"github.com/amalmborg97/cisco.ios/pkg/parser"
	"github.com/amalmborg97/cisco.ios/pkg/template"
	"github.com/amalmborg97/cisco.ios/pkg/util"
)

// Options configure a Reconciler.
type Options struct {
	// Lenient skips unrecognized lines in the running configuration.
	Lenient bool

	// IgnoreLines are regular expressions of running-config lines to drop.
	IgnoreLines []string

	// Metrics records each run when set.
	Metrics *Metrics
}

// Reconciler runs reconcile requests. It holds no per-run state and is safe
// for concurrent use once features are registered.
type Reconciler struct {
	opts     Options
	features map[string]Feature
}

// New creates a Reconciler with the default features registered.
func New(opts Options) *Reconciler {
	r := &Reconciler{opts: opts, features: map[string]Feature{}}
	for _, f := range DefaultFeatures() {
		r.Register(f)
	}
	return r
}

// Request is one reconcile run.
type Request struct {
	// Feature names the feature; it defaults to Desired's feature.
	Feature string

	// Desired is the wanted configuration. Gathered and parsed ignore it;
	// deleted accepts nil to remove everything.
	Desired model.Document

	// Running is the device's running configuration text.
	Running string

	Mode diff.Mode
}

// Result is the outcome of a reconcile run.
type Result struct {
	Feature  string             `json:"feature"`
	Mode     diff.Mode          `json:"mode"`
	Commands []commands.Command `json:"commands"`
	Entries  []diff.Entry       `json:"entries,omitempty"`

	// Before is the parsed running configuration, nil in rendered mode.
	Before model.Document `json:"before,omitempty"`

	// After is Before with the changes applied in memory. Rendered mode
	// reports the desired document.
	After model.Document `json:"after,omitempty"`

	// Parsed is set in parsed mode only.
	Parsed model.Document `json:"parsed,omitempty"`

	// Changed reports whether the commands would modify the device.
	// It is always false in rendered mode.
	Changed bool `json:"changed"`

	Fingerprint string `json:"fingerprint,omitempty"`
}

// Lines returns the command lines of the result.
func (r *Result) Lines() []string {
	return commands.Lines(r.Commands)
}

// Reconcile runs req. On failure it returns a *util.ReconcileError and no
// partial result.
func (r *Reconciler) Reconcile(req Request) (*Result, error) {
	start := time.Now()
	feature := req.Feature
	if feature == "" && req.Desired != nil {
		feature = req.Desired.Feature()
	}

	res, err := r.reconcile(feature, req)
	n := 0
	if res != nil {
		n = len(res.Commands)
	}
	r.opts.Metrics.observe(feature, string(req.Mode), n, err, time.Since(start))

	logger := util.WithRun(feature, string(req.Mode))
	if err != nil {
		logger.Debugf("reconcile failed: %v", err)
		return nil, util.NewReconcileError(feature, string(req.Mode), err)
	}
	logger.Infof("reconciled: %d commands, changed=%t", n, res.Changed)
	return res, nil
}

func (r *Reconciler) reconcile(feature string, req Request) (*Result, error) {
	f, ok := r.features[feature]
	if !ok {
		return nil, fmt.Errorf("%w: feature %q", util.ErrNotFound, feature)
	}
	mode := req.Mode
	if !f.Supports(mode) {
		return nil, util.NewModeError(feature, string(mode))
	}
	tmpl, ok := template.ForFeature(feature)
	if !ok {
		return nil, fmt.Errorf("%w: no template for feature %q", util.ErrNotFound, feature)
	}
	build, err := model.Builder(feature)
	if err != nil {
		return nil, err
	}

	desired := req.Desired
	if mode.NeedsDesired() {
		if err := checkDesired(feature, mode, desired); err != nil {
			return nil, err
		}
	}

	res := &Result{Feature: feature, Mode: mode}

	if mode == diff.Rendered {
		entries, err := diff.Compute(desired, nil, mode)
		if err != nil {
			return nil, err
		}
		cmds, err := commands.Generate(tmpl, desired.Identity(), entries)
		if err != nil {
			return nil, err
		}
		res.Entries, res.Commands, res.After = entries, cmds, desired
		res.Fingerprint = commands.Fingerprint(cmds)
		return res, nil
	}

	current, err := parser.Parse(feature, req.Running, parser.Options{
		Lenient:     r.opts.Lenient,
		IgnoreLines: r.opts.IgnoreLines,
	})
	if err != nil {
		return nil, err
	}

	switch mode {
	case diff.Parsed:
		res.Parsed = current
		return res, nil
	case diff.Gathered:
		res.Before, res.After = current, current
		return res, nil
	}

	entries, err := diff.Compute(desired, current, mode)
	if err != nil {
		return nil, err
	}

	identity := current.Identity()
	if mode != diff.Deleted && desired != nil && desired.Identity() != "" {
		identity = desired.Identity()
	}
	cmds, err := commands.Generate(tmpl, identity, entries)
	if err != nil {
		return nil, err
	}

	after, err := build(identity, diff.Apply(current.Attrs(), entries))
	if err != nil {
		return nil, err
	}

	res.Entries = entries
	res.Commands = cmds
	res.Before = current
	res.After = after
	res.Changed = len(cmds) > 0
	res.Fingerprint = commands.Fingerprint(cmds)
	return res, nil
}

// checkDesired validates the desired document of a mode that takes one.
func checkDesired(feature string, mode diff.Mode, desired model.Document) error {
	if desired == nil {
		if mode == diff.Deleted {
			return nil
		}
		return util.NewSchemaError("config", "required for state %s", mode)
	}
	if desired.Feature() != feature {
		return util.NewSchemaError("feature", "document is %s, request is %s", desired.Feature(), feature)
	}
	return desired.Validate()
}

// Running renders doc as running-config text.
func (r *Reconciler) Running(doc model.Document) (string, error) {
	return commands.Running(doc)
}

// Reconcile runs req with a default Reconciler.
func Reconcile(req Request) (*Result, error) {
	return New(Options{}).Reconcile(req)
}
