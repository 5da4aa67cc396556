// Package loader reads reconcile task files: a feature, a state, the desired
// configuration and, optionally, the device's running configuration.
package loader

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/amalmborg97/cisco.ios/pkg/diff"
	"github.com/amalmborg97/cisco.ios/pkg/model"
	"github.com/amalmborg97/cisco.ios/pkg/reconcile"
	"github.com/amalmborg97/cisco.ios/pkg/util"
)

// DefaultState is used when a task names no state.
const DefaultState = diff.Merged

// Task is one reconcile task file.
//
//	name: spine1 bgp
//	feature: bgp_global
//	state: replaced
//	device: spine1
//	config:
//	  as_number: "65000"
//	  bgp:
//	    log_neighbor_changes: true
//	running_config_file: spine1.cfg
type Task struct {
	Name              string    `yaml:"name,omitempty"`
	Feature           string    `yaml:"feature"`
	State             string    `yaml:"state,omitempty"`
	Device            string    `yaml:"device,omitempty"`
	Config            yaml.Node `yaml:"config,omitempty"`
	RunningConfig     string    `yaml:"running_config,omitempty"`
	RunningConfigFile string    `yaml:"running_config_file,omitempty"`

	// Path is the file the task was read from, empty for in-memory tasks.
	Path string `yaml:"-"`
}

// LoadFile reads and validates a task file.
func LoadFile(path string) (*Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading task %s: %w", path, err)
	}
	t, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", path, err)
	}
	t.Path = path
	return t, nil
}

// Load parses and validates a task document.
func Load(data []byte) (*Task, error) {
	var t Task
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return nil, util.NewSchemaError("", "%v", err)
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// LoadDir reads every .yaml and .yml file in dir in name order.
func LoadDir(dir string) ([]*Task, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading task dir %s: %w", dir, err)
	}

	var tasks []*Task
	for _, e := range entries {
		if e.IsDir() || !(strings.HasSuffix(e.Name(), ".yaml") || strings.HasSuffix(e.Name(), ".yml")) {
			continue
		}
		t, err := LoadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (t *Task) validate() error {
	v := &util.ValidationBuilder{}
	v.Schema(t.Feature != "", "feature", "is required")
	if t.Feature != "" {
		if _, err := model.NewDocument(t.Feature); err != nil {
			v.AddError(util.NewSchemaError("feature", "unknown feature %q, known: %s",
				t.Feature, strings.Join(model.Features(), ", ")))
		}
	}
	if t.State != "" {
		if _, err := diff.ParseMode(t.State); err != nil {
			v.AddError(err)
		}
	}
	v.Conflict(t.RunningConfig != "", t.RunningConfigFile != "", "running_config", "running_config", "running_config_file")
	return v.Build()
}

// Mode returns the task's state, or fallback when it names none.
func (t *Task) Mode(fallback diff.Mode) (diff.Mode, error) {
	if t.State == "" {
		if fallback == "" {
			return DefaultState, nil
		}
		return fallback, nil
	}
	return diff.ParseMode(t.State)
}

// HasConfig reports whether the task carries a desired configuration.
func (t *Task) HasConfig() bool {
	switch t.Config.Kind {
	case 0:
		return false
	case yaml.ScalarNode:
		return t.Config.Tag != "!!null"
	}
	return true
}

// Desired decodes the task's config into the feature's document. Unknown
// keys and mistyped values are schema errors. A task without config yields nil.
func (t *Task) Desired() (model.Document, error) {
	if !t.HasConfig() {
		return nil, nil
	}
	doc, err := model.NewDocument(t.Feature)
	if err != nil {
		return nil, err
	}

	if err := t.Config.Decode(doc); err != nil {
		return nil, util.NewSchemaError("config", "%v", err)
	}

	// Node.Decode ignores unknown keys; decode again strictly.
	raw, err := yaml.Marshal(&t.Config)
	if err != nil {
		return nil, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	strict, _ := model.NewDocument(t.Feature)
	if err := dec.Decode(strict); err != nil {
		return nil, util.NewSchemaError("config", "block at line %d: %v", t.Config.Line, err)
	}
	return doc, nil
}

// Running returns the running configuration inline in the task or read from
// running_config_file, resolved against the task's directory.
func (t *Task) Running() (string, error) {
	if t.RunningConfigFile == "" {
		return t.RunningConfig, nil
	}
	path := t.RunningConfigFile
	if !filepath.IsAbs(path) && t.Path != "" {
		path = filepath.Join(filepath.Dir(t.Path), path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading running config: %w", err)
	}
	return string(data), nil
}

// Request builds the reconcile request of the task. An override replaces the
// running configuration carried by the task when non-empty.
func (t *Task) Request(fallback diff.Mode, runningOverride string) (reconcile.Request, error) {
	mode, err := t.Mode(fallback)
	if err != nil {
		return reconcile.Request{}, err
	}
	desired, err := t.Desired()
	if err != nil {
		return reconcile.Request{}, err
	}
	running := runningOverride
	if running == "" {
		if running, err = t.Running(); err != nil {
			return reconcile.Request{}, err
		}
	}
	return reconcile.Request{
		Feature: t.Feature,
		Desired: desired,
		Running: running,
		Mode:    mode,
	}, nil
}

// Label names the task in logs and reports.
func (t *Task) Label() string {
	switch {
	case t.Name != "":
		return t.Name
	case t.Path != "":
		return filepath.Base(t.Path)
	}
	return t.Feature
}
