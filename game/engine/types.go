package engine

import "strings"

// Direction is an abstract directional command produced by the input layer
type Direction string

const (
	DirectionNone  Direction = ""
	DirectionUp    Direction = "up"
	DirectionDown  Direction = "down"
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

// Phase is the lifecycle phase of a round
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseActive    Phase = "active"
	PhaseConcluded Phase = "concluded"
)

// Outcome is the result of evaluating a round
type Outcome string

const (
	OutcomeOngoing Outcome = "ongoing"
	OutcomeWon     Outcome = "won"
	OutcomeLost    Outcome = "lost"
)

// Event kinds recorded in a round's history
const (
	EventCommand = "command"
	EventTick    = "tick"
)

const (
	// DefaultTickIntervalMs is the pursuit tick period used when a config omits it
	DefaultTickIntervalMs = 250

	// DefaultGreedyProbability is the chance a pursuer takes its best move
	DefaultGreedyProbability = 0.9

	MaxGridDimension = 200
	MaxPursuers      = 64
	MaxBulkMoves     = 50
)

// Position represents x,y coordinates
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns p shifted by the unit delta of d. DirectionNone yields p.
func (p Position) Add(d Direction) Position {
	dx, dy := d.Delta()
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// Delta returns the unit step for the direction
func (d Direction) Delta() (int, int) {
	switch d {
	case DirectionUp:
		return 0, -1
	case DirectionDown:
		return 0, 1
	case DirectionLeft:
		return -1, 0
	case DirectionRight:
		return 1, 0
	}
	return 0, 0
}

// Valid reports whether d is one of the four movement directions
func (d Direction) Valid() bool {
	switch d {
	case DirectionUp, DirectionDown, DirectionLeft, DirectionRight:
		return true
	}
	return false
}

// AllDirections lists the movement directions in a stable order
var AllDirections = []Direction{DirectionUp, DirectionDown, DirectionLeft, DirectionRight}

// ParseDirection maps raw input to a Direction. Arrow key names and WASD are
// accepted as well; anything unrecognized maps to DirectionNone.
func ParseDirection(raw string) Direction {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "up", "w", "arrowup", "north":
		return DirectionUp
	case "down", "s", "arrowdown", "south":
		return DirectionDown
	case "left", "a", "arrowleft", "west":
		return DirectionLeft
	case "right", "d", "arrowright", "east":
		return DirectionRight
	}
	return DirectionNone
}

// Pursuer is an autonomous agent chasing the player
type Pursuer struct {
	ID    string   `json:"id"`
	Label string   `json:"label"`
	Pos   Position `json:"pos"`
}

// PursuerConfig describes a pursuer at round start
type PursuerConfig struct {
	ID    string   `json:"id"`
	Label string   `json:"label"`
	Start Position `json:"start"`
}

// GameConfig represents a round configuration loaded from JSON
type GameConfig struct {
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	Layout            []string        `json:"layout"`
	Start             *Position       `json:"start,omitempty"`
	Goal              *Position       `json:"goal,omitempty"`
	Pursuers          []PursuerConfig `json:"pursuers"`
	TickIntervalMs    int             `json:"tick_interval_ms"`
	GreedyProbability *float64        `json:"greedy_probability,omitempty"`
	RNGSeed           *int64          `json:"rng_seed,omitempty"`
	Messages          Messages        `json:"messages"`
}

// Messages are the user-facing texts a config may override
type Messages struct {
	Welcome string `json:"welcome"`
	Won     string `json:"won"`
	Lost    string `json:"lost"`
	Blocked string `json:"blocked"`
}

// MoveResult is the outcome of a single directional command
type MoveResult struct {
	Accepted bool     `json:"accepted"`
	From     Position `json:"from"`
	To       Position `json:"to"`
}

// EventRecord is one applied command or tick in a round
type EventRecord struct {
	Seq       int       `json:"seq"`
	Kind      string    `json:"kind"`
	Direction Direction `json:"direction,omitempty"`
	Accepted  bool      `json:"accepted"`
	PlayerPos Position  `json:"player_pos"`
	Outcome   Outcome   `json:"outcome"`
	Timestamp int64     `json:"timestamp"`
}

// RoundStats accumulates results across the rounds of one engine
type RoundStats struct {
	RoundsPlayed int `json:"rounds_played"`
	Wins         int `json:"wins"`
	Losses       int `json:"losses"`
	BestWinMoves int `json:"best_win_moves,omitempty"`
	TotalMoves   int `json:"total_moves"`
	TotalTicks   int `json:"total_ticks"`
}

// GameState is a snapshot of the round for the rendering layer
type GameState struct {
	RoundID    string        `json:"round_id,omitempty"`
	Phase      Phase         `json:"phase"`
	Outcome    Outcome       `json:"outcome"`
	PlayerPos  Position      `json:"player_pos"`
	Moves      int           `json:"moves"`
	Ticks      int           `json:"ticks"`
	Goal       Position      `json:"goal"`
	Pursuers   []Pursuer     `json:"pursuers"`
	Message    string        `json:"message"`
	ConfigName string        `json:"config_name"`
	Seed       int64         `json:"seed"`
	History    []EventRecord `json:"history"`
	Stats      RoundStats    `json:"stats"`
	Width      int           `json:"width"`
	Height     int           `json:"height"`

	// Computed helper views
	Grid          []string    `json:"grid,omitempty"`
	PossibleMoves []Direction `json:"possible_moves,omitempty"`
	LocalView3x3  []string    `json:"local_view_3x3,omitempty"`
	Threat        string      `json:"threat,omitempty"`
}

// Concluded reports whether the round has a terminal outcome
func (s *GameState) Concluded() bool {
	return s.Phase == PhaseConcluded
}
