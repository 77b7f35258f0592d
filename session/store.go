package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/swdee/go-deepsort/config"
	"github.com/swdee/go-deepsort/metrics"
	"github.com/swdee/go-deepsort/tracker"
)

var (
	// ErrSessionNotFound is returned for unknown or expired session IDs
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionLimit is returned when creating a session would exceed the
	// configured maximum
	ErrSessionLimit = errors.New("session limit reached")
)

// Factory creates the tracker for a new session
type Factory func() *tracker.DeepSORT

// Option configures a Store
type Option func(*Store)

// WithLabels sets the class labels used to name detections in Process
func WithLabels(labels []string) Option {
	return func(s *Store) {
		s.labels = labels
	}
}

// WithClock replaces the time source used for idle expiry
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Store holds the tracking sessions of a service, each with its own
// tracker, and expires sessions left idle
type Store struct {
	cfg     config.SessionConfig
	factory Factory
	logger  *slog.Logger
	labels  []string
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore returns an empty session store.  A nil logger uses slog.Default
func NewStore(cfg config.SessionConfig, factory Factory, logger *slog.Logger,
	opts ...Option) *Store {

	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		cfg:      cfg,
		factory:  factory,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Create starts a new session with a random ID
func (s *Store) Create() (*Session, error) {
	return s.create(uuid.NewString())
}

func (s *Store) create(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok {
		return sess, nil
	}

	if s.cfg.MaxSessions > 0 && len(s.sessions) >= s.cfg.MaxSessions {
		return nil, fmt.Errorf("%w: %d sessions", ErrSessionLimit, len(s.sessions))
	}

	sess := newSession(id, s.factory(), s.labels, s.cfg.FrameTimeout, s.logger, s.now)
	s.sessions[id] = sess

	metrics.ActiveSessions.Inc()
	s.logger.Info("session created", "session_id", id)

	return sess, nil
}

// Get returns the session with the given ID
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	return sess, nil
}

// GetOrCreate returns the session with the given ID, creating it when it
// does not exist.  An empty ID creates a session with a random ID
func (s *Store) GetOrCreate(id string) (*Session, error) {

	if id == "" {
		return s.Create()
	}

	if sess, err := s.Get(id); err == nil {
		return sess, nil
	}

	return s.create(id)
}

// Delete removes the session with the given ID
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	sess.release()
	metrics.ActiveSessions.Dec()
	s.logger.Info("session deleted", "session_id", id)

	return nil
}

// Len returns the number of sessions held
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes sessions not used for longer than the idle timeout and
// returns how many were removed.  Sessions processing a frame are kept
func (s *Store) Sweep() int {

	if s.cfg.IdleTimeout <= 0 {
		return 0
	}

	cutoff := s.now().Add(-s.cfg.IdleTimeout)
	evicted := make([]*Session, 0)

	s.mu.Lock()
	for id, sess := range s.sessions {
		if sess.busy() || sess.LastSeen().After(cutoff) {
			continue
		}

		delete(s.sessions, id)
		evicted = append(evicted, sess)
	}
	s.mu.Unlock()

	for _, sess := range evicted {
		sess.release()
		metrics.ActiveSessions.Dec()
		metrics.SessionsEvicted.Inc()
		s.logger.Info("session expired", "session_id", sess.ID(),
			"last_seen", sess.LastSeen())
	}

	return len(evicted)
}

// Run sweeps idle sessions every sweep interval until ctx is done
func (s *Store) Run(ctx context.Context) {

	interval := s.cfg.SweepInterval

	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Debug("swept idle sessions", "evicted", n, "remaining", s.Len())
			}
		}
	}
}
