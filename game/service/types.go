package service

import (
	"time"

	"github.com/crneirav-code/juegoBE/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success     bool              `json:"success"`
	GameState   *engine.GameState `json:"game_state"`
	Message     string            `json:"message"`
	Events      []GameEvent       `json:"events,omitempty"`
	Step        *StepInfo         `json:"step,omitempty"`
	AttemptedTo *AttemptInfo      `json:"attempted_to,omitempty"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	// Summary
	MovesExecuted  int               `json:"moves_executed"`
	RequestedMoves int               `json:"requested_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // blocked|invalid_direction|not_active|won|lost
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based index of the move that caused stop
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	// Start/end snapshot
	StartPos engine.Position `json:"start_pos"`
	EndPos   engine.Position `json:"end_pos"`

	// Per-step compact trace (only for this call)
	Steps []StepInfo `json:"steps,omitempty"`

	// Failure diagnostics
	AttemptedTo *AttemptInfo `json:"attempted_to,omitempty"`

	// Final status aids
	Outcome       engine.Outcome `json:"outcome"`
	Message       string         `json:"message,omitempty"`
	PossibleMoves []string       `json:"possible_moves,omitempty"`
	LocalView3x3  []string       `json:"local_view_3x3,omitempty"`
	Threat        string         `json:"threat,omitempty"`
}

// TickResult reports a manually requested pursuit tick
type TickResult struct {
	Applied   bool              `json:"applied"`
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
}

// StepInfo is a compact record for each executed move in the bulk call
type StepInfo struct {
	Idx      int             `json:"idx"`
	Dir      string          `json:"dir"`
	From     engine.Position `json:"from"`
	To       engine.Position `json:"to"`
	Success  bool            `json:"success"`
	Goal     bool            `json:"goal,omitempty"`
	Captured bool            `json:"captured,omitempty"`
}

// AttemptInfo details the first failed target cell attempted
type AttemptInfo struct {
	X        int    `json:"x"`
	Y        int    `json:"y"`
	TileType string `json:"tile_type"` // wall|boundary|floor
	Passable bool   `json:"passable"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string          `json:"type"` // "move", "blocked", "won", "lost", "restart"
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	Position  engine.Position `json:"position,omitempty"`
}

// HistoryOptions configures round history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated round history
type HistoryResponse struct {
	Events      []engine.EventRecord `json:"events"`
	TotalEvents int                  `json:"total_events"`
	Page        int                  `json:"page"`
	PageSize    int                  `json:"page_size"`
	TotalPages  int                  `json:"total_pages"`
	HasNext     bool                 `json:"has_next"`
	HasPrevious bool                 `json:"has_previous"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename       string  `json:"filename"`
	ConfigID       string  `json:"config_id"` // The identifier to use for session creation
	Name           string  `json:"name"`      // Display name
	Description    string  `json:"description"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	Pursuers       int     `json:"pursuers"`
	TickIntervalMs int     `json:"tick_interval_ms"`
	Greedy         float64 `json:"greedy_probability"`
}
