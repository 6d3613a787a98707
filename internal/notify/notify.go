// Package notify carries the transient, fire-and-forget notices the
// controllers raise. Views decide how to show them.
package notify

import (
	"sync"

	"go.uber.org/zap"
)

// Level classifies a notice
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is one transient message. Notices with a Key replace any earlier
// notice with the same key and can be dismissed by it.
type Notice struct {
	Key     string
	Level   Level
	Message string
}

// Notifier receives notices from the controllers
type Notifier interface {
	Notify(n Notice)
	Dismiss(key string)
}

// Info raises an informational notice under key
func Info(n Notifier, key, msg string) {
	n.Notify(Notice{Key: key, Level: LevelInfo, Message: msg})
}

// Success raises a success notice
func Success(n Notifier, msg string) {
	n.Notify(Notice{Level: LevelSuccess, Message: msg})
}

// Error raises an error notice
func Error(n Notifier, msg string) {
	n.Notify(Notice{Level: LevelError, Message: msg})
}

// Log writes notices to a zap logger. Used when no view is attached.
type Log struct {
	logger *zap.Logger
}

// NewLog creates a Log notifier
func NewLog(logger *zap.Logger) *Log {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log{logger: logger}
}

// Notify logs the notice at info level, tagged with its notice level
func (l *Log) Notify(n Notice) {
	fields := []zap.Field{zap.String("notice_level", string(n.Level))}
	if n.Key != "" {
		fields = append(fields, zap.String("key", n.Key))
	}
	l.logger.Info(n.Message, fields...)
}

// Dismiss logs the dismissed key at debug level
func (l *Log) Dismiss(key string) {
	l.logger.Debug("notice dismissed", zap.String("key", key))
}

// Recorder keeps every notice and the set of keyed notices still showing
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
	active  map[string]Notice
}

// NewRecorder creates an empty Recorder
func NewRecorder() *Recorder {
	return &Recorder{active: make(map[string]Notice)}
}

// Notify records the notice and marks a keyed notice as showing
func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
	if n.Key != "" {
		r.active[n.Key] = n
	}
}

// Dismiss clears a keyed notice
func (r *Recorder) Dismiss(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, key)
}

// Notices returns every notice raised so far
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Count returns how many notices of level were raised
func (r *Recorder) Count(level Level) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, notice := range r.notices {
		if notice.Level == level {
			n++
		}
	}
	return n
}

// Showing reports whether a keyed notice is still displayed
func (r *Recorder) Showing(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.active[key]
	return ok
}
