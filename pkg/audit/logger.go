package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/amalmborg97/cisco.ios/pkg/util"
)

// Logger stores and queries audit events.
type Logger interface {
	Log(event *Event) error
	Query(filter Filter) ([]*Event, error)
	Close() error
}

// RotationConfig configures log file rotation.
type RotationConfig struct {
	// MaxSize is the file size in bytes that triggers a rotation; zero disables it.
	MaxSize int64

	// MaxBackups is the number of rotated files kept as <path>.1 (newest)
	// to <path>.N. Zero keeps one.
	MaxBackups int
}

func (r RotationConfig) backups() int {
	if r.MaxBackups <= 0 {
		return 1
	}
	return r.MaxBackups
}

// FileLogger appends reconcile events to a JSON-lines file.
type FileLogger struct {
	path     string
	file     *os.File
	encoder  *json.Encoder
	mu       sync.RWMutex
	rotation RotationConfig
}

// NewFileLogger opens path for appending, creating its directory.
func NewFileLogger(path string, rotation RotationConfig) (*FileLogger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating audit log directory: %w", err)
	}
	l := &FileLogger{path: path, rotation: rotation}
	if err := l.open(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *FileLogger) open() error {
	file, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	l.file = file
	l.encoder = json.NewEncoder(file)
	return nil
}

// Log appends event, rotating the file first when it reached MaxSize.
func (l *FileLogger) Log(event *Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.rotation.MaxSize > 0 {
		if info, err := l.file.Stat(); err == nil && info.Size() >= l.rotation.MaxSize {
			if err := l.rotate(); err != nil {
				return fmt.Errorf("rotating audit log: %w", err)
			}
		}
	}
	return l.encoder.Encode(event)
}

// Query returns the events matching filter, newest first, read from the
// rotated files and the current one.
func (l *FileLogger) Query(filter Filter) ([]*Event, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var events []*Event
	for _, path := range l.files() {
		if err := readEvents(path, filter, &events); err != nil {
			return nil, err
		}
	}

	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	return filter.page(events), nil
}

// LastApplied returns the newest successful, recorded event of device whose
// plan has fingerprint and which is not older than since. It returns nil
// when there is none.
func (l *FileLogger) LastApplied(device, fingerprint string, since time.Time) (*Event, error) {
	return lastApplied(l, device, fingerprint, since)
}

func lastApplied(l Logger, device, fingerprint string, since time.Time) (*Event, error) {
	if fingerprint == "" {
		return nil, nil
	}
	events, err := l.Query(Filter{
		Device:      device,
		Fingerprint: fingerprint,
		StartTime:   since,
		SuccessOnly: true,
	})
	if err != nil {
		return nil, err
	}
	for _, e := range events {
		if e.Recorded {
			return e, nil
		}
	}
	return nil, nil
}

// files lists the existing log files oldest first.
func (l *FileLogger) files() []string {
	var paths []string
	for i := l.rotation.backups(); i >= 1; i-- {
		p := backupPath(l.path, i)
		if _, err := os.Stat(p); err == nil {
			paths = append(paths, p)
		}
	}
	return append(paths, l.path)
}

func backupPath(path string, n int) string {
	return fmt.Sprintf("%s.%d", path, n)
}

func readEvents(path string, filter Filter, events *[]*Event) error {
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for n := 1; scanner.Scan(); n++ {
		var event Event
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			util.Warnf("audit: skipping malformed entry %s:%d: %v", filepath.Base(path), n, err)
			continue
		}
		if filter.Match(&event) {
			*events = append(*events, &event)
		}
	}
	return scanner.Err()
}

// Close closes the log file.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// rotate shifts <path>.i to <path>.i+1, dropping the oldest, and moves the
// current file to <path>.1.
func (l *FileLogger) rotate() error {
	if err := l.file.Close(); err != nil {
		return err
	}
	n := l.rotation.backups()
	if err := os.Remove(backupPath(l.path, n)); err != nil && !os.IsNotExist(err) {
		return err
	}
	for i := n - 1; i >= 1; i-- {
		if err := os.Rename(backupPath(l.path, i), backupPath(l.path, i+1)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	if err := os.Rename(l.path, backupPath(l.path, 1)); err != nil {
		return err
	}
	return l.open()
}

type loggerHolder struct {
	logger Logger
}

var defaultLogger atomic.Value

// SetDefaultLogger sets the logger used by the package-level functions.
func SetDefaultLogger(logger Logger) {
	defaultLogger.Store(loggerHolder{logger: logger})
}

func getDefaultLogger() Logger {
	v := defaultLogger.Load()
	if v == nil {
		return nil
	}
	return v.(loggerHolder).logger
}

// Log logs event with the default logger. It is a no-op without one.
func Log(event *Event) error {
	l := getDefaultLogger()
	if l == nil {
		return nil
	}
	return l.Log(event)
}

// Query queries the default logger.
func Query(filter Filter) ([]*Event, error) {
	l := getDefaultLogger()
	if l == nil {
		return []*Event{}, nil
	}
	return l.Query(filter)
}

// LastApplied looks up an applied plan in the default logger.
func LastApplied(device, fingerprint string, since time.Time) (*Event, error) {
	l := getDefaultLogger()
	if l == nil {
		return nil, nil
	}
	return lastApplied(l, device, fingerprint, since)
}
