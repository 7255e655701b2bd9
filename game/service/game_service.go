package service

import (
	"context"
	"sync"
	"time"

	"github.com/crneirav-code/juegoBE/game/engine"
	"github.com/crneirav-code/juegoBE/game/loop"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Round Operations
	StartRound(ctx context.Context, sessionID, configName string) (*engine.GameState, error)
	Move(ctx context.Context, sessionID, direction string, restart bool) (*MoveResult, error)
	BulkMove(ctx context.Context, sessionID string, moves []string, restart bool) (*BulkMoveResult, error)
	Tick(ctx context.Context, sessionID string) (*TickResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Round State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(ctx context.Context, id, configID string, config *engine.GameConfig) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	GetOrCreate(ctx context.Context, id, configID string, config *engine.GameConfig) (*Session, error)
	List() []*Session
	Delete(ctx context.Context, id string) error
	UpdateLastAccessed(id string) error
	Save(ctx context.Context, id string) error
}

// ConfigManager handles game configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	DefaultID() string
	SaveConfig(name string, config *engine.GameConfig) error
}

// Session represents an active game session. Its engine is owned by Runner;
// every read or write of round state goes through the runner.
type Session struct {
	ID        string
	Runner    *loop.Runner
	CreatedAt time.Time

	mu             sync.RWMutex
	configID       string
	config         *engine.GameConfig
	lastAccessedAt time.Time
}

// NewSession creates a session around a started runner
func NewSession(id string, runner *loop.Runner, configID string, config *engine.GameConfig, createdAt, lastAccessedAt time.Time) *Session {
	return &Session{
		ID:             id,
		Runner:         runner,
		CreatedAt:      createdAt,
		configID:       configID,
		config:         config,
		lastAccessedAt: lastAccessedAt,
	}
}

// Config returns the configuration of the current round
func (s *Session) Config() *engine.GameConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// ConfigID returns the identifier the current configuration was loaded by
func (s *Session) ConfigID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.configID
}

// SetConfig records a configuration change made through the runner
func (s *Session) SetConfig(configID string, config *engine.GameConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configID = configID
	s.config = config
}

// LastAccessedAt returns the time of the last operation on the session
func (s *Session) LastAccessedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastAccessedAt
}

// Touch marks the session as accessed now
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccessedAt = time.Now()
}
