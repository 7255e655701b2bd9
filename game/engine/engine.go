package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidState = errors.New("invalid game state")

// Engine provides the main interface for round operations
type Engine interface {
	// Round lifecycle
	StartRound() *GameState
	Reset() *GameState
	Phase() Phase
	Outcome() Outcome

	// Inputs
	Command(direction Direction) MoveResult
	Tick() bool
	CanMove(direction Direction) bool
	GetPossibleMoves() []Direction

	// State
	GetState() *GameState
	SetState(state *GameState) error
	GetPlayerPosition() Position
	GetPursuers() []Pursuer
	GetMoves() int
	GetHistory() []EventRecord

	// Configuration
	GetConfig() *GameConfig
	SetConfig(config *GameConfig) error
	TickInterval() time.Duration
}

// Option customizes a GameEngine
type Option func(*GameEngine)

// WithSeed fixes the seed used for every round, overriding the config seed
func WithSeed(seed int64) Option {
	return func(e *GameEngine) {
		e.fixedSeed = &seed
	}
}

// GameEngine implements the Engine interface. It is not safe for concurrent
// use; callers serialize access (see the loop package).
type GameEngine struct {
	config    *GameConfig
	round     *Round
	policy    *PursuitPolicy
	rng       *rand.Rand
	seed      int64
	fixedSeed *int64

	roundID string
	phase   Phase
	outcome Outcome
	player  *PlayerController
	agents  *AgentSet
	ticks   int
	message string
	history []EventRecord
	stats   RoundStats
}

// NewEngine creates an idle engine for config. Invalid configurations fail here.
func NewEngine(config *GameConfig, opts ...Option) (*GameEngine, error) {
	e := &GameEngine{}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.SetConfig(config); err != nil {
		return nil, err
	}
	return e, nil
}

// NewEngineWithDefaults creates an idle engine for the built-in round
func NewEngineWithDefaults(opts ...Option) *GameEngine {
	e, err := NewEngine(DefaultGameConfig(), opts...)
	if err != nil {
		panic(fmt.Sprintf("default config is invalid: %v", err))
	}
	return e
}

// SetConfig validates config, installs it and returns the engine to idle
func (e *GameEngine) SetConfig(config *GameConfig) error {
	round, err := CompileConfig(config)
	if err != nil {
		return err
	}
	policy, err := NewPursuitPolicy(round.Grid, round.GreedyProbability)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	e.config = config
	e.round = round
	e.policy = policy
	e.toIdle()
	return nil
}

// GetConfig returns the current configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// Grid returns the maze of the current configuration
func (e *GameEngine) Grid() *MazeGrid {
	return e.round.Grid
}

// TickInterval returns the pursuit tick period of the current configuration
func (e *GameEngine) TickInterval() time.Duration {
	return e.round.TickInterval
}

// toIdle places agents at their start cells without starting a round
func (e *GameEngine) toIdle() {
	e.roundID = ""
	e.phase = PhaseIdle
	e.outcome = OutcomeOngoing
	e.player = NewPlayerController(e.round.Grid, e.round.Start)
	e.agents = NewAgentSet(e.round.Pursuers)
	e.ticks = 0
	e.history = nil
	e.message = ""
}

func (e *GameEngine) nextSeed() int64 {
	if e.fixedSeed != nil {
		return *e.fixedSeed
	}
	if e.config.RNGSeed != nil {
		return *e.config.RNGSeed
	}
	return time.Now().UnixNano()
}

// StartRound begins a fresh round from any phase
func (e *GameEngine) StartRound() *GameState {
	e.toIdle()
	e.seed = e.nextSeed()
	e.rng = rand.New(rand.NewSource(e.seed))
	e.roundID = uuid.NewString()
	e.phase = PhaseActive
	e.message = e.config.Messages.Welcome
	e.stats.RoundsPlayed++
	return e.GetState()
}

// StartRoundWith installs a new configuration and starts a round with it
func (e *GameEngine) StartRoundWith(config *GameConfig) (*GameState, error) {
	if err := e.SetConfig(config); err != nil {
		return nil, err
	}
	return e.StartRound(), nil
}

// Reset abandons the current round and returns to idle
func (e *GameEngine) Reset() *GameState {
	e.toIdle()
	return e.GetState()
}

// Phase returns the lifecycle phase
func (e *GameEngine) Phase() Phase {
	return e.phase
}

// Outcome returns the round outcome
func (e *GameEngine) Outcome() Outcome {
	return e.outcome
}

// Command applies a directional command. Outside an active round, or for an
// unrecognized direction, nothing changes.
func (e *GameEngine) Command(direction Direction) MoveResult {
	pos := e.player.Position()
	if e.phase != PhaseActive || !direction.Valid() {
		return MoveResult{From: pos, To: pos}
	}

	result := e.player.ApplyCommand(direction)
	if result.Accepted {
		e.stats.TotalMoves++
		e.evaluate()
	} else if e.config.Messages.Blocked != "" {
		e.message = e.config.Messages.Blocked
	}
	e.record(EventCommand, direction, result.Accepted)
	return result
}

// BulkMove applies commands in order. It stops after the first rejected
// command or once the round is over; the returned results end there.
func (e *GameEngine) BulkMove(directions []Direction) []MoveResult {
	results := make([]MoveResult, 0, len(directions))
	for _, dir := range directions {
		if e.phase != PhaseActive {
			break
		}
		result := e.Command(dir)
		results = append(results, result)
		if !result.Accepted {
			break
		}
	}
	return results
}

// Tick advances every pursuer once. It reports whether the tick applied;
// ticks outside an active round are ignored.
func (e *GameEngine) Tick() bool {
	if e.phase != PhaseActive {
		return false
	}

	e.agents.Tick(e.player.Position(), e.policy, e.rng)
	e.ticks++
	e.stats.TotalTicks++
	e.evaluate()
	e.record(EventTick, DirectionNone, true)
	return true
}

// evaluate concludes the round when a terminal outcome is reached
func (e *GameEngine) evaluate() {
	outcome := Evaluate(e.player.Position(), e.round.Goal, e.agents.Pursuers())
	if outcome == OutcomeOngoing {
		return
	}

	e.outcome = outcome
	e.phase = PhaseConcluded
	moves := e.player.Moves()
	switch outcome {
	case OutcomeWon:
		e.stats.Wins++
		if e.stats.BestWinMoves == 0 || moves < e.stats.BestWinMoves {
			e.stats.BestWinMoves = moves
		}
		e.message = formatMessage(e.config.Messages.Won, "You reached the goal!", moves)
	case OutcomeLost:
		e.stats.Losses++
		e.message = formatMessage(e.config.Messages.Lost, "You were caught!", moves)
	}
}

func (e *GameEngine) record(kind string, direction Direction, accepted bool) {
	e.history = append(e.history, EventRecord{
		Seq:       len(e.history) + 1,
		Kind:      kind,
		Direction: direction,
		Accepted:  accepted,
		PlayerPos: e.player.Position(),
		Outcome:   e.outcome,
		Timestamp: time.Now().UnixMilli(),
	})
}

func formatMessage(template, fallback string, moves int) string {
	if template == "" {
		return fallback
	}
	if strings.Contains(template, "%d") {
		return fmt.Sprintf(template, moves)
	}
	return template
}

// CanMove reports whether direction would currently be accepted
func (e *GameEngine) CanMove(direction Direction) bool {
	return e.phase == PhaseActive && e.player.CanMove(direction)
}

// GetPossibleMoves returns the directions the player can take right now
func (e *GameEngine) GetPossibleMoves() []Direction {
	if e.phase != PhaseActive {
		return nil
	}
	return e.player.PossibleMoves()
}

// GetPlayerPosition returns the player's cell
func (e *GameEngine) GetPlayerPosition() Position {
	return e.player.Position()
}

// GetPursuers returns the pursuers in iteration order
func (e *GameEngine) GetPursuers() []Pursuer {
	return e.agents.Pursuers()
}

// GetMoves returns the accepted move count of the round
func (e *GameEngine) GetMoves() int {
	return e.player.Moves()
}

// GetHistory returns the events of the current round
func (e *GameEngine) GetHistory() []EventRecord {
	out := make([]EventRecord, len(e.history))
	copy(out, e.history)
	return out
}

// GetStats returns results accumulated across rounds
func (e *GameEngine) GetStats() RoundStats {
	return e.stats
}

// RoundID identifies the current round; empty while idle
func (e *GameEngine) RoundID() string {
	return e.roundID
}

// GetState returns a snapshot of the round
func (e *GameEngine) GetState() *GameState {
	return &GameState{
		RoundID:       e.roundID,
		Phase:         e.phase,
		Outcome:       e.outcome,
		PlayerPos:     e.player.Position(),
		Moves:         e.player.Moves(),
		Ticks:         e.ticks,
		Goal:          e.round.Goal,
		Pursuers:      e.agents.Pursuers(),
		Message:       e.message,
		ConfigName:    e.config.Name,
		Seed:          e.seed,
		History:       e.GetHistory(),
		Stats:         e.stats,
		Width:         e.round.Grid.Width(),
		Height:        e.round.Grid.Height(),
		Grid:          e.round.Grid.Rows(),
		PossibleMoves: e.GetPossibleMoves(),
		LocalView3x3:  e.localView(),
	}
}

// localView renders the 3x3 neighborhood of the player: '@' player, '#' wall
// or outside the grid, 'X' pursuer, 'G' goal, '.' open floor
func (e *GameEngine) localView() []string {
	center := e.player.Position()
	lines := make([]string, 0, 3)
	for dy := -1; dy <= 1; dy++ {
		var row strings.Builder
		for dx := -1; dx <= 1; dx++ {
			p := Position{X: center.X + dx, Y: center.Y + dy}
			switch {
			case dx == 0 && dy == 0:
				row.WriteByte('@')
			case !e.round.Grid.Walkable(p):
				row.WriteByte('#')
			case e.agents.Occupied(p):
				row.WriteByte('X')
			case p == e.round.Goal:
				row.WriteByte('G')
			default:
				row.WriteByte('.')
			}
		}
		lines = append(lines, row.String())
	}
	return lines
}

// SetState restores a snapshot produced by GetState for the same
// configuration. The random source is rebuilt by replaying the recorded
// history from the snapshot seed.
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if state.ConfigName != "" && state.ConfigName != e.config.Name {
		return fmt.Errorf("%w: snapshot is for config %q, engine has %q", ErrInvalidState, state.ConfigName, e.config.Name)
	}
	switch state.Phase {
	case PhaseIdle, PhaseActive, PhaseConcluded:
	default:
		return fmt.Errorf("%w: unknown phase %q", ErrInvalidState, state.Phase)
	}
	if state.Phase == PhaseActive && state.Outcome != OutcomeOngoing {
		return fmt.Errorf("%w: active round with outcome %q", ErrInvalidState, state.Outcome)
	}
	if !e.round.Grid.Walkable(state.PlayerPos) {
		return fmt.Errorf("%w: player at (%d,%d) is not walkable", ErrInvalidState, state.PlayerPos.X, state.PlayerPos.Y)
	}
	for _, p := range state.Pursuers {
		if !e.round.Grid.Walkable(p.Pos) {
			return fmt.Errorf("%w: pursuer %q at (%d,%d) is not walkable", ErrInvalidState, p.ID, p.Pos.X, p.Pos.Y)
		}
	}

	e.toIdle()
	e.stats = state.Stats
	if state.Phase == PhaseIdle {
		return nil
	}

	e.roundID = state.RoundID
	e.phase = state.Phase
	e.outcome = state.Outcome
	e.seed = state.Seed
	e.ticks = state.Ticks
	e.message = state.Message
	e.player.player = Player{Pos: state.PlayerPos, Moves: state.Moves}
	e.agents.restore(state.Pursuers)
	e.history = append([]EventRecord(nil), state.History...)

	e.rng = rand.New(rand.NewSource(state.Seed))
	if replayed, err := replayEngine(e.config, state.Seed, state.History); err == nil &&
		replayed.player.Position() == state.PlayerPos &&
		samePositions(replayed.agents.Pursuers(), state.Pursuers) {
		e.rng = replayed.rng
	} else {
		// History does not reproduce the snapshot; continue on a derived stream
		e.rng = rand.New(rand.NewSource(state.Seed + int64(state.Ticks)))
	}
	return nil
}

func samePositions(a, b []Pursuer) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Pos != b[i].Pos {
			return false
		}
	}
	return true
}
