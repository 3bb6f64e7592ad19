// Package audit provides audit logging for route programming operations.
package audit

import (
	"fmt"
	"time"
)

// Event represents one apply or delete invocation against a PathRequest
// document.
type Event struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	User      string        `json:"user"`
	Operation string        `json:"operation"`
	File      string        `json:"file,omitempty"`
	Platform  string        `json:"platform,omitempty"`
	Routes    int           `json:"routes"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// Operations recorded by srctl.
const (
	OperationApply  = "apply"
	OperationDelete = "delete"
)

// Filter narrows an audit query. Zero-value fields match everything;
// Limit caps the number of events returned, oldest first.
type Filter struct {
	User        string
	Operation   string
	Platform    string
	Since       time.Time
	FailureOnly bool
	Limit       int
}

func (f Filter) matches(e *Event) bool {
	if f.User != "" && e.User != f.User {
		return false
	}
	if f.Operation != "" && e.Operation != f.Operation {
		return false
	}
	if f.Platform != "" && e.Platform != f.Platform {
		return false
	}
	if !f.Since.IsZero() && e.Timestamp.Before(f.Since) {
		return false
	}
	if f.FailureOnly && e.Success {
		return false
	}
	return true
}

// NewEvent creates a new audit event
func NewEvent(user, operation, file string) *Event {
	return &Event{
		ID:        generateID(),
		Timestamp: time.Now(),
		User:      user,
		Operation: operation,
		File:      file,
	}
}

// WithPlatform sets the document's dataplane platform
func (e *Event) WithPlatform(platform string) *Event {
	e.Platform = platform
	return e
}

// WithCounts records the route totals. The event is successful when no
// route failed.
func (e *Event) WithCounts(routes, succeeded, failed int) *Event {
	e.Routes = routes
	e.Succeeded = succeeded
	e.Failed = failed
	e.Success = failed == 0
	return e
}

// WithError marks the event as failed before any route was walked
func (e *Event) WithError(err error) *Event {
	e.Success = false
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// WithDuration sets the operation duration
func (e *Event) WithDuration(d time.Duration) *Event {
	e.Duration = d
	return e
}

func generateID() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}
