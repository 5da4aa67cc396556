package audit

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/amalmborg97/cisco.ios/pkg/diff"
	"github.com/amalmborg97/cisco.ios/pkg/model"
	"github.com/amalmborg97/cisco.ios/pkg/reconcile"
)

func newLogger(t *testing.T, rotation RotationConfig) (*FileLogger, string) {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "audit.log")
	logger, err := NewFileLogger(logPath, rotation)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	t.Cleanup(func() { logger.Close() })
	return logger, logPath
}

func TestEvent_New(t *testing.T) {
	event := NewEvent("alice", "spine1", "bgp_global", "merged")

	if event.User != "alice" {
		t.Errorf("User = %q, want %q", event.User, "alice")
	}
	if event.Device != "spine1" {
		t.Errorf("Device = %q, want %q", event.Device, "spine1")
	}
	if event.Feature != "bgp_global" || event.Mode != "merged" {
		t.Errorf("Feature/Mode = %q/%q", event.Feature, event.Mode)
	}
	if event.ID == "" {
		t.Error("ID should not be empty")
	}
	if event.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestEvent_WithResult(t *testing.T) {
	res, err := reconcile.Reconcile(reconcile.Request{
		Desired: &model.BGPGlobal{ASNumber: "65000", Timers: &model.BGPTimers{Keepalive: 100, Holdtime: 200}},
		Running: "router bgp 65000\n",
		Mode:    diff.Merged,
	})
	if err != nil {
		t.Fatal(err)
	}

	event := NewEvent("alice", "spine1", res.Feature, string(res.Mode)).
		WithTask("spine1 bgp").
		WithResult(res).
		WithRecorded(true).
		WithDuration(time.Second)

	if !event.Success || !event.Changed || !event.Recorded {
		t.Errorf("event = %+v", event)
	}
	if len(event.Commands) != 2 || event.Commands[1] != "timers bgp 100 200" {
		t.Errorf("Commands = %v", event.Commands)
	}
	if event.Fingerprint != res.Fingerprint || event.Task != "spine1 bgp" {
		t.Errorf("Fingerprint = %q, Task = %q", event.Fingerprint, event.Task)
	}
	if event.Duration != time.Second {
		t.Errorf("Duration = %v", event.Duration)
	}

	if e := NewEvent("alice", "", "bgp_global", "merged").WithResult(nil); e.Success {
		t.Error("nil result should not mark success")
	}
}

func TestEvent_WithError(t *testing.T) {
	event := NewEvent("alice", "spine1", "bgp_global", "merged").
		WithError(errors.New("test error"))

	if event.Success {
		t.Error("Success should be false")
	}
	if event.Error != "test error" {
		t.Errorf("Error = %q", event.Error)
	}

	event2 := NewEvent("alice", "spine1", "bgp_global", "merged").WithError(nil)
	if event2.Success {
		t.Error("Success should be false even with nil error")
	}
	if event2.Error != "" {
		t.Errorf("Error should be empty with nil error, got %q", event2.Error)
	}
}

func TestFileLogger_Basic(t *testing.T) {
	logger, _ := newLogger(t, RotationConfig{})

	event := NewEvent("alice", "spine1", "bgp_global", "merged")
	event.Success = true
	if err := logger.Log(event); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := logger.Query(Filter{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	if events[0].User != "alice" || events[0].Feature != "bgp_global" {
		t.Errorf("event = %+v", events[0])
	}
}

func TestFileLogger_QueryFilters(t *testing.T) {
	logger, _ := newLogger(t, RotationConfig{})

	ok := func(e *Event, changed bool) *Event {
		e.Success, e.Changed = true, changed
		return e
	}
	planned := ok(NewEvent("alice", "spine1", "bgp_global", "merged"), true)
	planned.Fingerprint = "9f2c"
	events := []*Event{
		planned,
		ok(NewEvent("bob", "spine1", "evpn_global", "replaced"), false),
		NewEvent("alice", "leaf1", "bgp_global", "overridden").WithError(errors.New("failed")),
		ok(NewEvent("charlie", "leaf2", "bgp_global", "merged"), true),
	}
	for _, e := range events {
		if err := logger.Log(e); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"no filter", Filter{}, 4},
		{"by user", Filter{User: "alice"}, 2},
		{"by device", Filter{Device: "spine1"}, 2},
		{"by feature", Filter{Feature: "bgp_global"}, 3},
		{"by mode", Filter{Mode: "merged"}, 2},
		{"success only", Filter{SuccessOnly: true}, 3},
		{"failure only", Filter{FailureOnly: true}, 1},
		{"changed only", Filter{ChangedOnly: true}, 2},
		{"limit", Filter{Limit: 2}, 2},
		{"offset", Filter{Offset: 3}, 1},
		{"offset beyond events", Filter{Offset: 10}, 0},
		{"feature and mode", Filter{Feature: "bgp_global", Mode: "overridden"}, 1},
		{"by fingerprint", Filter{Fingerprint: "9f2c"}, 1},
		{"unknown fingerprint", Filter{Fingerprint: "0000"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := logger.Query(tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if len(results) != tt.want {
				t.Errorf("Query(%+v) = %d events, want %d", tt.filter, len(results), tt.want)
			}
		})
	}
}

func TestFileLogger_QueryNewestFirst(t *testing.T) {
	logger, _ := newLogger(t, RotationConfig{MaxSize: 50, MaxBackups: 10})
	for _, u := range []string{"alice", "bob", "charlie"} {
		if err := logger.Log(NewEvent(u, "spine1", "bgp_global", "merged")); err != nil {
			t.Fatal(err)
		}
	}

	events, err := logger.Query(Filter{})
	if err != nil {
		t.Fatal(err)
	}
	var users []string
	for _, e := range events {
		users = append(users, e.User)
	}
	if strings.Join(users, ",") != "charlie,bob,alice" {
		t.Errorf("users = %v, want newest first across rotated files", users)
	}

	events, _ = logger.Query(Filter{Offset: 1, Limit: 1})
	if len(events) != 1 || events[0].User != "bob" {
		t.Errorf("paged query = %+v", events)
	}
}

func TestFileLogger_LastApplied(t *testing.T) {
	logger, _ := newLogger(t, RotationConfig{})

	applied := func(device, fp string, recorded, success bool, at time.Time) *Event {
		e := NewEvent("alice", device, "bgp_global", "merged")
		e.Fingerprint, e.Recorded, e.Success, e.Timestamp = fp, recorded, success, at
		return e
	}
	now := time.Now()
	for _, e := range []*Event{
		applied("spine1", "aaaa", true, true, now.Add(-2*time.Hour)),
		applied("spine1", "bbbb", false, true, now),
		applied("spine1", "cccc", true, false, now),
		applied("spine1", "dddd", true, true, now.Add(-time.Minute)),
		applied("leaf1", "dddd", true, true, now),
	} {
		if err := logger.Log(e); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name        string
		device      string
		fingerprint string
		want        bool
	}{
		{"recorded within window", "spine1", "dddd", true},
		{"recorded before window", "spine1", "aaaa", false},
		{"not recorded", "spine1", "bbbb", false},
		{"failed run", "spine1", "cccc", false},
		{"other device", "leaf2", "dddd", false},
		{"empty plan", "spine1", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := logger.LastApplied(tt.device, tt.fingerprint, now.Add(-time.Hour))
			if err != nil {
				t.Fatal(err)
			}
			if (e != nil) != tt.want {
				t.Errorf("LastApplied(%s, %s) = %+v, want found=%v", tt.device, tt.fingerprint, e, tt.want)
			}
		})
	}
}

func TestFileLogger_QueryTimeFilter(t *testing.T) {
	logger, _ := newLogger(t, RotationConfig{})
	logger.Log(NewEvent("alice", "spine1", "bgp_global", "merged"))

	results, _ := logger.Query(Filter{
		StartTime: time.Now().Add(-time.Hour),
		EndTime:   time.Now().Add(time.Hour),
	})
	if len(results) != 1 {
		t.Errorf("Expected 1 event in time range, got %d", len(results))
	}

	results, _ = logger.Query(Filter{StartTime: time.Now().Add(time.Hour)})
	if len(results) != 0 {
		t.Errorf("Expected 0 events after start time, got %d", len(results))
	}

	results, _ = logger.Query(Filter{EndTime: time.Now().Add(-time.Hour)})
	if len(results) != 0 {
		t.Errorf("Expected 0 events before end time, got %d", len(results))
	}
}

func TestFileLogger_CreatesDirectories(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "audit.log")
	logger, err := NewFileLogger(logPath, RotationConfig{})
	if err != nil {
		t.Fatalf("NewFileLogger should create directories: %v", err)
	}
	logger.Close()
}

func TestFileLogger_QueryNonExistent(t *testing.T) {
	logger, logPath := newLogger(t, RotationConfig{})
	os.Remove(logPath)

	results, err := logger.Query(Filter{})
	if err != nil {
		t.Errorf("Query on non-existent should not error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected 0 events, got %d", len(results))
	}
}

func TestDefaultLogger(t *testing.T) {
	SetDefaultLogger(nil)
	defer SetDefaultLogger(nil)

	if err := Log(NewEvent("test", "test", "bgp_global", "merged")); err != nil {
		t.Errorf("Log with nil default should not error: %v", err)
	}
	results, err := Query(Filter{})
	if err != nil || len(results) != 0 {
		t.Errorf("Query with nil default = %d, %v", len(results), err)
	}
	if e, err := LastApplied("spine1", "9f2c", time.Time{}); e != nil || err != nil {
		t.Errorf("LastApplied with nil default = %v, %v", e, err)
	}

	logger, _ := newLogger(t, RotationConfig{})
	SetDefaultLogger(logger)

	if err := Log(NewEvent("alice", "spine1", "bgp_global", "merged")); err != nil {
		t.Errorf("Log failed: %v", err)
	}
	results, err = Query(Filter{})
	if err != nil {
		t.Errorf("Query failed: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("Expected 1 result, got %d", len(results))
	}
}

func TestFileLogger_Rotation(t *testing.T) {
	tests := []struct {
		name       string
		maxBackups int
		logs       int
		check      func(t *testing.T, backups int)
	}{
		{"creates backups", 5, 3, func(t *testing.T, n int) {
			if n == 0 {
				t.Error("Expected rotation to create backup files")
			}
		}},
		{"caps backups", 2, 10, func(t *testing.T, n int) {
			if n > 2 {
				t.Errorf("Expected at most 2 backup files, got %d", n)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logPath := newLogger(t, RotationConfig{MaxSize: 50, MaxBackups: tt.maxBackups})
			for i := 0; i < tt.logs; i++ {
				if err := logger.Log(NewEvent("alice", "spine1", "bgp_global", "merged")); err != nil {
					t.Fatalf("Log failed on iteration %d: %v", i, err)
				}
			}
			matches, err := filepath.Glob(logPath + ".*")
			if err != nil {
				t.Fatal(err)
			}
			tt.check(t, len(matches))
			if _, err := os.Stat(logPath + ".1"); err != nil {
				t.Errorf("newest backup %s.1 missing: %v", logPath, err)
			}
		})
	}
}

func TestFileLogger_OpenErrors(t *testing.T) {
	if _, err := NewFileLogger("/dev/null/impossible/audit.log", RotationConfig{}); err == nil {
		t.Error("NewFileLogger should fail when directory creation fails")
	}

	logPath := filepath.Join(t.TempDir(), "audit.log")
	if err := os.Mkdir(logPath, 0755); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileLogger(logPath, RotationConfig{}); err == nil {
		t.Error("NewFileLogger should fail when log path is a directory")
	}
}

func TestFileLogger_QueryMalformedJSON(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "audit.log")
	content := `{"user":"alice","feature":"bgp_global","mode":"merged","success":true}
invalid json line
{"user":"bob","feature":"evpn_global","mode":"merged","success":true}
`
	if err := os.WriteFile(logPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	logger, err := NewFileLogger(logPath, RotationConfig{})
	if err != nil {
		t.Fatal(err)
	}
	defer logger.Close()

	results, err := logger.Query(Filter{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("Expected 2 valid events (skipping malformed), got %d", len(results))
	}
}

func TestFileLogger_CloseNilFile(t *testing.T) {
	logger := &FileLogger{path: "/tmp/test.log"}
	if err := logger.Close(); err != nil {
		t.Errorf("Close() with nil file should not error: %v", err)
	}
}

func TestFileLogger_QueryReadError(t *testing.T) {
	logger, logPath := newLogger(t, RotationConfig{})

	dir := logPath + ".d"
	if err := os.Mkdir(dir, 0755); err != nil {
		t.Fatal(err)
	}
	logger.path = dir

	if _, err := logger.Query(Filter{}); err == nil {
		t.Error("Query should fail when trying to read a directory")
	}
}
