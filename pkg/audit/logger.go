package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jalapeno-net/srctl/pkg/util"
)

// Logger records and queries audit events.
type Logger interface {
	Log(event *Event) error
	Query(filter Filter) ([]*Event, error)
	Close() error
}

// RotationConfig bounds the audit log on disk. MaxSize is the file size
// in bytes that triggers rotation; MaxBackups is how many rotated files
// to keep.
type RotationConfig struct {
	MaxSize    int64
	MaxBackups int
}

// FileLogger appends events to a JSON-lines file, one object per line,
// rotating the file when it grows past the configured size.
type FileLogger struct {
	path     string
	file     *os.File
	encoder  *json.Encoder
	mu       sync.RWMutex
	rotation RotationConfig
}

// NewFileLogger opens the audit log at path for appending, creating
// parent directories as needed.
func NewFileLogger(path string, rotation RotationConfig) (*FileLogger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating audit log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	return &FileLogger{
		path:     path,
		file:     file,
		encoder:  json.NewEncoder(file),
		rotation: rotation,
	}, nil
}

// Log appends one event, rotating first if the file is at capacity.
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

// Query streams the current log file and returns the events matching
// filter, in the order they were written. Malformed lines are skipped
// with a warning. The scan stops as soon as Limit matches are found.
func (l *FileLogger) Query(filter Filter) ([]*Event, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	file, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var events []*Event
	scanner := bufio.NewScanner(file)
	for line := 1; scanner.Scan(); line++ {
		var event Event
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			util.Warnf("audit: skipping malformed log entry at line %d: %v", line, err)
			continue
		}
		if !filter.matches(&event) {
			continue
		}
		events = append(events, &event)
		if filter.Limit > 0 && len(events) == filter.Limit {
			break
		}
	}
	return events, scanner.Err()
}

// Close closes the underlying file.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// rotate renames the live file aside with a timestamp suffix and starts
// a fresh one. Caller holds the write lock.
func (l *FileLogger) rotate() error {
	if err := l.file.Close(); err != nil {
		return err
	}
	rotated := l.path + "." + time.Now().Format("20060102-150405")
	if err := os.Rename(l.path, rotated); err != nil {
		return err
	}
	file, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	l.file = file
	l.encoder = json.NewEncoder(file)

	if l.rotation.MaxBackups > 0 {
		l.pruneRotated()
	}
	return nil
}

// pruneRotated deletes the oldest rotated files beyond MaxBackups. The
// timestamp suffix sorts lexicographically, so name order is age order.
func (l *FileLogger) pruneRotated() {
	matches, err := filepath.Glob(l.path + ".*")
	if err != nil || len(matches) <= l.rotation.MaxBackups {
		return
	}
	sort.Strings(matches)
	for _, path := range matches[:len(matches)-l.rotation.MaxBackups] {
		os.Remove(path)
	}
}

// loggerHolder keeps the concrete type stored in the atomic.Value stable.
type loggerHolder struct {
	logger Logger
}

var defaultLogger atomic.Value

// SetDefaultLogger installs the process-wide audit logger used by the
// package-level Log and Query.
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

// Log records an event with the default logger. Without one configured
// it is a no-op, so commands never fail on auditing alone.
func Log(event *Event) error {
	if l := getDefaultLogger(); l != nil {
		return l.Log(event)
	}
	return nil
}

// Query reads events from the default logger.
func Query(filter Filter) ([]*Event, error) {
	if l := getDefaultLogger(); l != nil {
		return l.Query(filter)
	}
	return nil, nil
}
