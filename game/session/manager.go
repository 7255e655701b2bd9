package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/crneirav-code/juegoBE/game/engine"
	"github.com/crneirav-code/juegoBE/game/loop"
	"github.com/crneirav-code/juegoBE/game/service"
)

var (
	ErrSessionNotFound      = service.ErrSessionNotFound
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// Notifier receives every state change published by a session's round loop.
// It runs on the loop goroutine and must not call back into the session.
type Notifier func(sessionID string, state *engine.GameState)

// Option configures a Manager
type Option func(*Manager)

// WithPersistence enables saving and lazy loading of sessions
func WithPersistence(p SessionPersistence) Option {
	return func(m *Manager) {
		m.persistence = p
	}
}

// WithNotifier registers the observer for round updates of all sessions
func WithNotifier(fn Notifier) Option {
	return func(m *Manager) {
		m.notify = fn
	}
}

// WithRunnerOptions passes extra options to every session's round loop
func WithRunnerOptions(opts ...loop.Option) Option {
	return func(m *Manager) {
		m.runnerOpts = append(m.runnerOpts, opts...)
	}
}

// WithContext bounds the lifetime of all round loops
func WithContext(ctx context.Context) Option {
	return func(m *Manager) {
		m.ctx = ctx
	}
}

// Manager handles game session lifecycle. Each session gets its own round
// loop, started on creation and stopped on deletion or Close.
type Manager struct {
	sessions    map[string]*service.Session
	persistence SessionPersistence
	notify      Notifier
	runnerOpts  []loop.Option
	ctx         context.Context
	mu          sync.RWMutex
}

// NewManager creates a new session manager
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		sessions: make(map[string]*service.Session),
		ctx:      context.Background(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewManagerWithPersistence creates a new session manager with persistence
func NewManagerWithPersistence(persistence SessionPersistence, opts ...Option) *Manager {
	return NewManager(append([]Option{WithPersistence(persistence)}, opts...)...)
}

// newRunner wires a session engine into a started round loop
func (m *Manager) newRunner(id string, eng *engine.GameEngine) *loop.Runner {
	opts := []loop.Option{
		loop.WithLogger(log.WithField("session", id)),
	}
	if m.notify != nil {
		notify := m.notify
		opts = append(opts, loop.WithUpdateHandler(func(state *engine.GameState) {
			notify(id, state)
		}))
	}
	opts = append(opts, m.runnerOpts...)

	runner := loop.NewRunner(eng, opts...)
	runner.Start(m.ctx)
	return runner
}

// Create creates a new session with the given ID and configuration
func (m *Manager) Create(ctx context.Context, id, configID string, config *engine.GameConfig) (*service.Session, error) {
	if id == "" {
		id = m.generateSessionID()
	} else if err := validateSessionID(id); err != nil {
		return nil, err
	}

	m.mu.Lock()
	// Check if session already exists (case-insensitive)
	if m.sessionExists(id) {
		m.mu.Unlock()
		return nil, ErrSessionAlreadyExists
	}

	// Create game engine
	eng, err := engine.NewEngine(config)
	if err != nil {
		m.mu.Unlock()
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	now := time.Now()
	session := service.NewSession(id, m.newRunner(id, eng), configID, config, now, now)
	m.sessions[strings.ToLower(id)] = session
	m.mu.Unlock()

	log.WithFields(log.Fields{"session": id, "config": configID}).Info("session created")

	// Auto-save if persistence is enabled
	if err := m.Save(ctx, id); err != nil {
		// Log error but don't fail the creation
		log.WithError(err).WithField("session", id).Warn("failed to persist new session")
	}

	return session, nil
}

// Get retrieves a session by ID (case-insensitive)
func (m *Manager) Get(ctx context.Context, id string) (*service.Session, error) {
	m.mu.RLock()
	session, exists := m.sessions[strings.ToLower(id)]
	m.mu.RUnlock()

	if exists {
		return session, nil
	}

	// Try loading from persistence if not in memory
	if m.persistence != nil && m.persistence.Exists(ctx, id) {
		data, err := m.persistence.Load(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load persisted session: %w", err)
		}
		return m.adopt(data)
	}

	return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
}

// adopt restores a persisted record into a live session. If another caller
// restored the same session first, that session wins.
func (m *Manager) adopt(data *PersistedSessionData) (*service.Session, error) {
	session, err := m.restore(data)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if existing, exists := m.sessions[strings.ToLower(data.ID)]; exists {
		m.mu.Unlock()
		session.Runner.Stop()
		return existing, nil
	}
	m.sessions[strings.ToLower(data.ID)] = session
	m.mu.Unlock()

	return session, nil
}

// restore builds a session from its stored record
func (m *Manager) restore(data *PersistedSessionData) (*service.Session, error) {
	if data.GameConfig == nil {
		return nil, fmt.Errorf("persisted session %s has no configuration", data.ID)
	}

	eng, err := engine.NewEngine(data.GameConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create game engine: %w", err)
	}
	if data.GameState != nil {
		if err := eng.SetState(data.GameState); err != nil {
			return nil, fmt.Errorf("failed to set game state: %w", err)
		}
	}

	return service.NewSession(data.ID, m.newRunner(data.ID, eng), data.ConfigID, data.GameConfig, data.CreatedAt, data.LastAccessedAt), nil
}

// GetOrCreate gets an existing session or creates a new one
func (m *Manager) GetOrCreate(ctx context.Context, id, configID string, config *engine.GameConfig) (*service.Session, error) {
	// Try to get existing session first
	session, err := m.Get(ctx, id)
	if err == nil {
		return session, nil
	}

	// Create new session if not found
	if errors.Is(err, ErrSessionNotFound) {
		return m.Create(ctx, id, configID, config)
	}

	return nil, err
}

// List returns all active sessions
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}

	return result
}

// Delete stops a session's round loop and removes it from memory and storage
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	session, inMemory := m.sessions[strings.ToLower(id)]
	if inMemory {
		delete(m.sessions, strings.ToLower(id))
	}
	m.mu.Unlock()

	if inMemory {
		session.Runner.Stop()
	}

	// Delete from persistence if it exists
	if m.persistence != nil && m.persistence.Exists(ctx, id) {
		if err := m.persistence.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete persisted session: %w", err)
		}
		log.WithField("session", id).Info("session deleted")
		return nil
	}

	// If not in persistence and not in memory, it doesn't exist
	if !inMemory {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	log.WithField("session", id).Info("session deleted")
	return nil
}

// DeleteFromMemory stops a session and drops it from memory only (not from persistence)
func (m *Manager) DeleteFromMemory(id string) error {
	m.mu.Lock()
	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(m.sessions, strings.ToLower(id))
	m.mu.Unlock()

	session.Runner.Stop()
	return nil
}

// UpdateLastAccessed updates the last accessed time for a session
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.RLock()
	session, exists := m.sessions[strings.ToLower(id)]
	m.mu.RUnlock()

	if !exists {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	session.Touch()
	return nil
}

// Save saves a specific session to persistence
func (m *Manager) Save(ctx context.Context, id string) error {
	if m.persistence == nil {
		return nil // No persistence configured
	}

	m.mu.RLock()
	session, exists := m.sessions[strings.ToLower(id)]
	m.mu.RUnlock()
	if !exists {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	data, err := m.record(ctx, session)
	if err != nil {
		return err
	}
	return m.persistence.Save(ctx, data)
}

// record captures a consistent snapshot of a session for storage
func (m *Manager) record(ctx context.Context, session *service.Session) (*PersistedSessionData, error) {
	state, err := session.Runner.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot session %s: %w", session.ID, err)
	}
	return &PersistedSessionData{
		ID:             session.ID,
		ConfigID:       session.ConfigID(),
		GameConfig:     session.Config(),
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt(),
		GameState:      state,
	}, nil
}

// CleanupExpiredSessions stops and unloads sessions that haven't been
// accessed in the given duration. Persisted copies are kept.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	m.mu.Lock()
	var expired []*service.Session
	for id, session := range m.sessions {
		if session.LastAccessedAt().Before(cutoff) {
			delete(m.sessions, id)
			expired = append(expired, session)
		}
	}
	m.mu.Unlock()

	for _, session := range expired {
		session.Runner.Stop()
	}
	if len(expired) > 0 {
		log.WithField("count", len(expired)).Info("expired sessions unloaded")
	}

	return len(expired)
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close stops every round loop. Sessions are not saved; call SaveAllSessions first.
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := make([]*service.Session, 0, len(m.sessions))
	for id, session := range m.sessions {
		sessions = append(sessions, session)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, session := range sessions {
		session.Runner.Stop()
	}
}

// generateSessionID generates a random 4-character session ID
func (m *Manager) generateSessionID() string {
	for {
		// Generate 2 random bytes (4 hex characters)
		bytes := make([]byte, 2)
		rand.Read(bytes)
		id := hex.EncodeToString(bytes)

		m.mu.RLock()
		taken := m.sessionExists(id)
		m.mu.RUnlock()
		if !taken {
			return id
		}
	}
}

// sessionExists checks if a session exists (case-insensitive); caller holds mu
func (m *Manager) sessionExists(id string) bool {
	_, exists := m.sessions[strings.ToLower(id)]
	return exists
}

func validateSessionID(id string) error {
	if len(id) > 64 || strings.ContainsAny(id, `/\. `) {
		return fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	}
	return nil
}

// LoadPersistedSessions loads all persisted sessions into memory
func (m *Manager) LoadPersistedSessions(ctx context.Context) error {
	if m.persistence == nil {
		return nil // No persistence configured
	}

	sessionIDs, err := m.persistence.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list persisted sessions: %w", err)
	}

	loadedCount := 0
	for _, id := range sessionIDs {
		// Skip if already loaded in memory
		m.mu.RLock()
		exists := m.sessionExists(id)
		m.mu.RUnlock()
		if exists {
			continue
		}

		data, err := m.persistence.Load(ctx, id)
		if err != nil {
			log.WithError(err).WithField("session", id).Warn("failed to load persisted session")
			continue
		}
		if _, err := m.adopt(data); err != nil {
			log.WithError(err).WithField("session", id).Warn("failed to restore persisted session")
			continue
		}
		loadedCount++
	}

	if loadedCount > 0 {
		log.WithField("count", loadedCount).Info("loaded persisted sessions from storage")
	}

	return nil
}

// SaveAllSessions saves all in-memory sessions to persistence
func (m *Manager) SaveAllSessions(ctx context.Context) error {
	if m.persistence == nil {
		return nil // No persistence configured
	}

	errorCount := 0
	for _, session := range m.List() {
		data, err := m.record(ctx, session)
		if err == nil {
			err = m.persistence.Save(ctx, data)
		}
		if err != nil {
			log.WithError(err).WithField("session", session.ID).Warn("failed to save session")
			errorCount++
		}
	}

	if errorCount > 0 {
		return fmt.Errorf("failed to save %d sessions", errorCount)
	}

	return nil
}
