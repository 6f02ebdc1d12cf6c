package registry

import (
	"log/slog"
	"math"
	"time"
)

const recentStatsLogs = 5

// Store owns the key registry and the verification log. It is constructed
// once at process start and shared by every request handler.
type Store struct {
	keys   *Registry
	log    *Log
	now    func() time.Time
	loc    *time.Location
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*storeOptions)

type storeOptions struct {
	now         func() time.Time
	loc         *time.Location
	logCapacity int
	logger      *slog.Logger
}

// WithClock overrides the time source used for timestamps and day boundaries.
func WithClock(now func() time.Time) Option {
	return func(o *storeOptions) { o.now = now }
}

// WithLocation sets the time zone that defines "today" in Stats.
func WithLocation(loc *time.Location) Option {
	return func(o *storeOptions) { o.loc = loc }
}

// WithLogCapacity overrides DefaultLogCapacity.
func WithLogCapacity(n int) Option {
	return func(o *storeOptions) { o.logCapacity = n }
}

// WithLogger sets the logger that receives one record per log entry.
func WithLogger(logger *slog.Logger) Option {
	return func(o *storeOptions) { o.logger = logger }
}

// NewStore creates a store whose registry is seeded with seed. Seeding does
// not produce log entries.
func NewStore(seed []string, opts ...Option) *Store {
	o := storeOptions{
		now:         time.Now,
		loc:         time.Local,
		logCapacity: DefaultLogCapacity,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return &Store{
		keys:   NewRegistry(seed, o.now),
		log:    NewLog(o.logCapacity, o.now),
		now:    o.now,
		loc:    o.loc,
		logger: o.logger,
	}
}

// Keys exposes the registry for read access.
func (s *Store) Keys() *Registry { return s.keys }

// Log exposes the verification log for read access.
func (s *Store) Log() *Log { return s.log }

// Verify checks key against the registry and records the outcome. An empty
// key is recorded as a missing-key error and ErrMissingKey is returned.
func (s *Store) Verify(key, source string) (Result, error) {
	if key == "" {
		s.record("", ResultMissingKey, source)
		return ResultMissingKey, ErrMissingKey
	}

	result := ResultRejected
	if s.keys.IsValid(key) {
		result = ResultApproved
	}
	s.record(key, result, source)
	return result, nil
}

// AddKey registers key and records a key-created entry.
func (s *Store) AddKey(key string) (KeyRecord, error) {
	rec, err := s.keys.Add(key)
	if err != nil {
		return KeyRecord{}, err
	}
	s.record(rec.Key, ResultKeyCreated, SystemSource)
	return rec, nil
}

// RemoveKey deletes key and records a key-removed entry.
func (s *Store) RemoveKey(key string) error {
	if err := s.keys.Remove(key); err != nil {
		return err
	}
	s.record(key, ResultKeyRemoved, SystemSource)
	return nil
}

// RecordStartup appends the server-started entry with the bind host as source.
func (s *Store) RecordStartup(host string) LogEntry {
	return s.record(StartupKey, ResultStarted, host)
}

// Stats computes aggregate counts over the full retained log.
func (s *Store) Stats() Stats {
	entries := s.log.Snapshot()

	now := s.now().In(s.loc)
	y, m, d := now.Date()

	stats := Stats{
		TotalKeys:          s.keys.Len(),
		TotalVerifications: len(entries),
	}
	for _, e := range entries {
		ey, em, ed := e.Timestamp.In(s.loc).Date()
		if ey == y && em == m && ed == d {
			stats.VerificationsToday++
		}
		if e.Result == ResultApproved {
			stats.ApprovedCount++
		}
		if e.Result.IsVerification() {
			stats.VerificationAttempts++
		}
	}
	stats.SuccessRate = successRate(stats.ApprovedCount, stats.TotalVerifications)

	n := min(recentStatsLogs, len(entries))
	stats.RecentLogs = entries[:n:n]
	return stats
}

func successRate(approved, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(approved) / float64(total) * 100))
}

func (s *Store) record(key string, result Result, source string) LogEntry {
	entry := s.log.Append(key, result, source)
	s.logger.Info("log entry recorded",
		slog.Int64("id", entry.ID),
		slog.String("result", string(entry.Result)),
		slog.String("key", entry.Key),
		slog.String("ip", entry.Source),
	)
	return entry
}
