// Package audit records reconcile runs to a JSON-lines log.
package audit

import (
	"fmt"
	"time"

	"github.com/amalmborg97/cisco.ios/pkg/reconcile"
)

// Event is one audited reconcile run.
type Event struct {
	ID          string        `json:"id"`
	Timestamp   time.Time     `json:"timestamp"`
	User        string        `json:"user"`
	Device      string        `json:"device,omitempty"`
	Feature     string        `json:"feature"`
	Mode        string        `json:"mode"`
	Task        string        `json:"task,omitempty"`
	Commands    []string      `json:"commands,omitempty"`
	Fingerprint string        `json:"fingerprint,omitempty"`
	Changed     bool          `json:"changed"`
	Recorded    bool          `json:"recorded"` // snapshot written to the store
	Success     bool          `json:"success"`
	Error       string        `json:"error,omitempty"`
	Duration    time.Duration `json:"duration"`
}

// Filter selects audit events. Zero fields match everything.
type Filter struct {
	Device      string
	User        string
	Feature     string
	Mode        string
	Fingerprint string
	StartTime   time.Time
	EndTime     time.Time
	SuccessOnly bool
	FailureOnly bool
	ChangedOnly bool
	Limit       int
	Offset      int
}

// Match reports whether e satisfies every criterion of f except paging.
func (f Filter) Match(e *Event) bool {
	switch {
	case f.Device != "" && e.Device != f.Device,
		f.User != "" && e.User != f.User,
		f.Feature != "" && e.Feature != f.Feature,
		f.Mode != "" && e.Mode != f.Mode,
		f.Fingerprint != "" && e.Fingerprint != f.Fingerprint,
		f.ChangedOnly && !e.Changed,
		f.SuccessOnly && !e.Success,
		f.FailureOnly && e.Success,
		!f.StartTime.IsZero() && e.Timestamp.Before(f.StartTime),
		!f.EndTime.IsZero() && e.Timestamp.After(f.EndTime):
		return false
	}
	return true
}

func (f Filter) page(events []*Event) []*Event {
	if f.Offset > 0 {
		if f.Offset >= len(events) {
			return nil
		}
		events = events[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(events) {
		events = events[:f.Limit]
	}
	return events
}

// NewEvent creates a new audit event
func NewEvent(user, device, feature, mode string) *Event {
	return &Event{
		ID:        generateID(),
		Timestamp: time.Now(),
		User:      user,
		Device:    device,
		Feature:   feature,
		Mode:      mode,
	}
}

// WithTask sets the task label
func (e *Event) WithTask(task string) *Event {
	e.Task = task
	return e
}

// WithResult copies the commands and fingerprint of a reconcile result and
// marks the event successful.
func (e *Event) WithResult(res *reconcile.Result) *Event {
	if res == nil {
		return e
	}
	e.Commands = res.Lines()
	e.Fingerprint = res.Fingerprint
	e.Changed = res.Changed
	e.Success = true
	return e
}

// WithRecorded marks whether the run's snapshot was stored
func (e *Event) WithRecorded(recorded bool) *Event {
	e.Recorded = recorded
	return e
}

// WithError marks the event as failed
func (e *Event) WithError(err error) *Event {
	e.Success = false
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// WithDuration sets the run duration
func (e *Event) WithDuration(d time.Duration) *Event {
	e.Duration = d
	return e
}

func generateID() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}
