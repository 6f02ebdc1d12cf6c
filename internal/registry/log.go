package registry

import (
	"sync"
	"time"
)

const (
	// DefaultLogCapacity is the number of entries the log retains.
	DefaultLogCapacity = 50
	// DefaultRecentLimit is used when a caller asks for a non-positive limit.
	DefaultRecentLimit = 20
)

// Log is a fixed-capacity ring buffer of log entries. Appending beyond
// capacity evicts the oldest entry.
type Log struct {
	mu      sync.RWMutex
	now     func() time.Time
	entries []LogEntry
	head    int // slot of the next write
	size    int
	nextID  int64
}

// NewLog creates an empty log. A non-positive capacity selects DefaultLogCapacity.
func NewLog(capacity int, now func() time.Time) *Log {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	if now == nil {
		now = time.Now
	}
	return &Log{
		now:     now,
		entries: make([]LogEntry, capacity),
		nextID:  1,
	}
}

// Append records a new entry and returns it. An empty key is stored as MissingKey.
func (l *Log) Append(key string, result Result, source string) LogEntry {
	if key == "" {
		key = MissingKey
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entry := LogEntry{
		ID:        l.nextID,
		Key:       key,
		Result:    result,
		Timestamp: l.now(),
		Source:    source,
	}
	l.nextID++

	l.entries[l.head] = entry
	l.head = (l.head + 1) % len(l.entries)
	if l.size < len(l.entries) {
		l.size++
	}
	return entry
}

// Recent returns up to limit entries, newest first. A non-positive limit
// selects DefaultRecentLimit.
func (l *Log) Recent(limit int) []LogEntry {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.recentLocked(limit)
}

// Snapshot returns every retained entry, newest first.
func (l *Log) Snapshot() []LogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.recentLocked(l.size)
}

// Len returns the number of retained entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.size
}

// Cap returns the log capacity.
func (l *Log) Cap() int {
	return len(l.entries)
}

func (l *Log) recentLocked(limit int) []LogEntry {
	if limit > l.size {
		limit = l.size
	}
	out := make([]LogEntry, 0, limit)
	n := len(l.entries)
	for i := 1; i <= limit; i++ {
		out = append(out, l.entries[(l.head-i+n)%n])
	}
	return out
}
