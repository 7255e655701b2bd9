package session

import (
	"context"
	"time"

	"github.com/crneirav-code/juegoBE/game/engine"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session record to storage
	Save(ctx context.Context, data *PersistedSessionData) error

	// Load retrieves a session record from storage by ID
	Load(ctx context.Context, id string) (*PersistedSessionData, error)

	// Delete removes a session from storage
	Delete(ctx context.Context, id string) error

	// ListAll returns all persisted session IDs
	ListAll(ctx context.Context) ([]string, error)

	// Exists checks if a session exists in storage
	Exists(ctx context.Context, id string) bool
}

// PersistedSessionData is the stored form of a session. The full
// configuration travels with the state so a session can be restored even
// after its config file changes or disappears.
type PersistedSessionData struct {
	ID             string             `json:"id"`
	ConfigID       string             `json:"config_id"`
	GameConfig     *engine.GameConfig `json:"game_config"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
}
