package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dasmlab/linguaflow/pkg/session"
)

const (
	// DefaultHeartbeatInterval is how often clients are asked to heartbeat.
	DefaultHeartbeatInterval = 30 * time.Second
	// DefaultIdleTimeout closes sessions that missed two heartbeats.
	DefaultIdleTimeout = 2 * DefaultHeartbeatInterval
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("session not found")

// SessionInfo describes an open session.
type SessionInfo struct {
	ID         string    `json:"id"`
	ClientName string    `json:"clientName"`
	OpenedAt   time.Time `json:"openedAt"`
	LastSeen   time.Time `json:"lastSeen"`

	Session *session.Session `json:"-"`
}

// Registry owns the open sessions. Every session shares the base config's
// catalog, detector, translation client, history store and voice engines.
type Registry struct {
	base              session.Config
	logger            *logrus.Logger
	heartbeatInterval time.Duration
	idleTimeout       time.Duration
	now               func() time.Time

	mu       sync.RWMutex
	sessions map[string]*SessionInfo
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithIdleTimeout sets how long a session may go without activity.
func WithIdleTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) {
		if d > 0 {
			r.idleTimeout = d
		}
	}
}

// WithHeartbeatInterval sets the interval advertised to clients.
func WithHeartbeatInterval(d time.Duration) RegistryOption {
	return func(r *Registry) {
		if d > 0 {
			r.heartbeatInterval = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) { r.now = now }
}

// NewRegistry creates an empty registry.
func NewRegistry(base session.Config, logger *logrus.Logger, opts ...RegistryOption) *Registry {
	if logger == nil {
		logger = logrus.New()
	}
	if base.Logger == nil {
		base.Logger = logger
	}
	r := &Registry{
		base:              base,
		logger:            logger,
		heartbeatInterval: DefaultHeartbeatInterval,
		idleTimeout:       DefaultIdleTimeout,
		now:               time.Now,
		sessions:          make(map[string]*SessionInfo),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// HeartbeatInterval is the interval clients should heartbeat at.
func (r *Registry) HeartbeatInterval() time.Duration { return r.heartbeatInterval }

// IdleTimeout is how long a session survives without activity.
func (r *Registry) IdleTimeout() time.Duration { return r.idleTimeout }

// Open creates a session. Empty languages fall back to the base config.
func (r *Registry) Open(clientName, sourceLang, targetLang string) (SessionInfo, error) {
	cfg := r.base
	if sourceLang != "" {
		cfg.SourceLang = sourceLang
	}
	if targetLang != "" {
		cfg.TargetLang = targetLang
	}
	s, err := session.New(cfg)
	if err != nil {
		return SessionInfo{}, err
	}

	now := r.now()
	info := &SessionInfo{
		ID:         uuid.New().String(),
		ClientName: clientName,
		OpenedAt:   now,
		LastSeen:   now,
		Session:    s,
	}

	r.mu.Lock()
	r.sessions[info.ID] = info
	total := len(r.sessions)
	r.mu.Unlock()

	r.logger.WithFields(logrus.Fields{
		"session_id":     info.ID,
		"client_name":    clientName,
		"total_sessions": total,
	}).Info("Opened translator session")
	return *info, nil
}

// Get returns the session with id and marks it active.
func (r *Registry) Get(id string) (*session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	info, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	info.LastSeen = r.now()
	return info.Session, nil
}

// Heartbeat marks the session active and returns the time it was seen.
func (r *Registry) Heartbeat(id string) (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	info, ok := r.sessions[id]
	if !ok {
		return time.Time{}, ErrSessionNotFound
	}
	info.LastSeen = r.now()
	return info.LastSeen, nil
}

// Info returns the registry entry for id.
func (r *Registry) Info(id string) (SessionInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.sessions[id]
	if !ok {
		return SessionInfo{}, false
	}
	return *info, true
}

// Close closes and forgets the session. It reports whether id was open.
func (r *Registry) Close(id string) bool {
	r.mu.Lock()
	info, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return false
	}
	info.Session.Close()
	r.logger.WithField("session_id", id).Info("Closed translator session")
	return true
}

// List returns the open sessions, oldest first.
func (r *Registry) List() []SessionInfo {
	r.mu.RLock()
	out := make([]SessionInfo, 0, len(r.sessions))
	for _, info := range r.sessions {
		out = append(out, *info)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OpenedAt.Equal(out[j].OpenedAt) {
			return out[i].OpenedAt.Before(out[j].OpenedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Len is the number of open sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// CleanupIdle closes sessions not seen within the idle timeout and returns
// how many were closed.
func (r *Registry) CleanupIdle() int {
	now := r.now()
	var expired []*SessionInfo

	r.mu.Lock()
	for id, info := range r.sessions {
		if now.Sub(info.LastSeen) > r.idleTimeout {
			expired = append(expired, info)
			delete(r.sessions, id)
		}
	}
	remaining := len(r.sessions)
	r.mu.Unlock()

	for _, info := range expired {
		info.Session.Close()
		r.logger.WithFields(logrus.Fields{
			"session_id":  info.ID,
			"client_name": info.ClientName,
			"idle_for":    now.Sub(info.LastSeen).String(),
		}).Info("Closed idle translator session")
	}
	if len(expired) > 0 {
		r.logger.WithFields(logrus.Fields{
			"removed":   len(expired),
			"remaining": remaining,
		}).Info("Cleaned up idle sessions")
	}
	return len(expired)
}

// Run calls CleanupIdle every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = r.heartbeatInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.CleanupIdle()
		case <-ctx.Done():
			return nil
		}
	}
}

// CloseAll closes every session.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*SessionInfo)
	r.mu.Unlock()
	for _, info := range all {
		info.Session.Close()
	}
}
