package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/crneirav-code/juegoBE/game/engine"
)

// gameServiceImpl implements the GameService interface. Round state is
// serialized by each session's runner, so the service holds no lock of its own.
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// resolveConfig loads a configuration by ID, falling back to the default
func (s *gameServiceImpl) resolveConfig(configName string) (string, *engine.GameConfig, error) {
	if configName == "" {
		return s.configs.DefaultID(), s.configs.GetDefault(), nil
	}

	config, err := s.configs.LoadConfig(configName)
	if err != nil {
		if errors.Is(err, ErrConfigNotFound) {
			// Provide helpful error message with available options
			availableConfigs, listErr := s.configs.ListConfigs()
			if listErr == nil && len(availableConfigs) > 0 {
				var configIDs []string
				for _, cfg := range availableConfigs {
					configIDs = append(configIDs, cfg.ConfigID)
				}
				return "", nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configName, configIDs)
			}
			return "", nil, fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, configName)
		}
		return "", nil, fmt.Errorf("failed to load config %s: %w", configName, err)
	}
	return configName, config, nil
}

func (s *gameServiceImpl) session(ctx context.Context, sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

func (s *gameServiceImpl) sessionInfo(ctx context.Context, sess *Session) (*SessionInfo, error) {
	state, err := sess.Runner.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     sess.ConfigID(),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt(),
		GameState:      enrich(state),
		GameConfig:     sess.Config(),
	}, nil
}

// persist saves a session after a mutation; failures are logged, not returned
func (s *gameServiceImpl) persist(ctx context.Context, sessionID, op string) {
	if err := s.sessions.Save(ctx, sessionID); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"session": sessionID,
			"op":      op,
		}).Warn("failed to persist session")
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	configID, config, err := s.resolveConfig(configName)
	if err != nil {
		return nil, err
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create(ctx, "", configID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return s.sessionInfo(ctx, sess)
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(ctx, sess)
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))

	for _, sess := range sessions {
		info, err := s.sessionInfo(ctx, sess)
		if err != nil {
			// Session closed while listing
			continue
		}
		result = append(result, info)
	}

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

// StartRound begins a new round, optionally switching configuration
func (s *gameServiceImpl) StartRound(ctx context.Context, sessionID, configName string) (*engine.GameState, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var state *engine.GameState
	if configName != "" {
		configID, config, err := s.resolveConfig(configName)
		if err != nil {
			return nil, err
		}
		if state, err = sess.Runner.StartRound(ctx, config); err != nil {
			return nil, err
		}
		sess.SetConfig(configID, config)
	} else if state, err = sess.Runner.StartRound(ctx, nil); err != nil {
		return nil, err
	}

	s.persist(ctx, sessionID, "start")
	return enrich(state), nil
}

// Move executes a single move for a session
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string, restart bool) (*MoveResult, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	events := []GameEvent{}
	if restart {
		if _, err := sess.Runner.StartRound(ctx, nil); err != nil {
			return nil, err
		}
		events = append(events, GameEvent{
			Type:      "restart",
			Message:   "New round started",
			Timestamp: time.Now(),
		})
	}

	dir := engine.ParseDirection(direction)
	moveResult, state, err := sess.Runner.Move(ctx, dir)
	if err != nil {
		return nil, err
	}
	enrich(state)

	result := &MoveResult{
		Success:   moveResult.Accepted,
		GameState: state,
		Message:   state.Message,
		Events:    events,
	}

	switch {
	case moveResult.Accepted:
		result.Events = append(result.Events, GameEvent{
			Type:      "move",
			Message:   fmt.Sprintf("Moved %s to (%d,%d)", dir, moveResult.To.X, moveResult.To.Y),
			Timestamp: time.Now(),
			Position:  moveResult.To,
		})
		result.Events = append(result.Events, outcomeEvents(state)...)
		result.Step = &StepInfo{
			Idx:      1,
			Dir:      string(dir),
			From:     moveResult.From,
			To:       moveResult.To,
			Success:  true,
			Goal:     state.Outcome == engine.OutcomeWon,
			Captured: state.Outcome == engine.OutcomeLost,
		}
	case dir == engine.DirectionNone:
		result.Message = fmt.Sprintf("Unknown direction '%s'. Use up, down, left or right", direction)
	case state.Phase != engine.PhaseActive:
		result.Message = inactiveMessage(state)
	default:
		result.AttemptedTo = attemptAt(state, moveResult.From.Add(dir))
		result.Events = append(result.Events, GameEvent{
			Type:      "blocked",
			Message:   fmt.Sprintf("Cannot move %s from (%d,%d)", dir, moveResult.From.X, moveResult.From.Y),
			Timestamp: time.Now(),
			Position:  moveResult.From,
		})
	}

	s.persist(ctx, sessionID, "move")
	return result, nil
}

// BulkMove executes multiple moves in sequence without ticks in between.
// It stops at the first blocked move or when the round concludes.
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string, restart bool) (*BulkMoveResult, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	result := &BulkMoveResult{
		RequestedMoves: len(moves),
		Events:         make([]GameEvent, 0),
		Success:        true,
	}

	if restart {
		if _, err := sess.Runner.StartRound(ctx, nil); err != nil {
			return nil, err
		}
		result.Events = append(result.Events, GameEvent{
			Type:      "restart",
			Message:   "New round started",
			Timestamp: time.Now(),
		})
	}

	// Limit moves to prevent abuse
	if len(moves) > engine.MaxBulkMoves {
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
		moves = moves[:engine.MaxBulkMoves]
	}

	// Unknown directions end the batch where they appear
	directions := make([]engine.Direction, 0, len(moves))
	invalidAt := -1
	for i, m := range moves {
		dir := engine.ParseDirection(m)
		if dir == engine.DirectionNone {
			invalidAt = i
			break
		}
		directions = append(directions, dir)
	}

	start, err := sess.Runner.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	result.StartPos = start.PlayerPos

	var state *engine.GameState
	var results []engine.MoveResult
	if start.Phase == engine.PhaseActive && len(directions) > 0 {
		if results, state, err = sess.Runner.BulkMove(ctx, directions); err != nil {
			return nil, err
		}
	} else {
		state = start
	}

	for i, r := range results {
		if !r.Accepted {
			result.Success = false
			result.StoppedOnMove = i + 1
			result.StoppedReason = fmt.Sprintf("move %d blocked: %s", i+1, directions[i])
			result.StopReasonCode = "blocked"
			result.AttemptedTo = attemptAt(state, r.From.Add(directions[i]))
			break
		}
		result.MovesExecuted++
		result.Steps = append(result.Steps, StepInfo{
			Idx:     i + 1,
			Dir:     string(directions[i]),
			From:    r.From,
			To:      r.To,
			Success: true,
		})
		result.Events = append(result.Events, GameEvent{
			Type:      "move",
			Message:   fmt.Sprintf("Moved %s to (%d,%d)", directions[i], r.To.X, r.To.Y),
			Timestamp: time.Now(),
			Position:  r.To,
		})
	}

	switch {
	case start.Phase != engine.PhaseActive:
		result.Success = false
		result.StopReasonCode = "not_active"
		result.StoppedReason = inactiveMessage(start)
		result.StoppedOnMove = 1
	case state.Concluded():
		if n := len(result.Steps); n > 0 {
			result.Steps[n-1].Goal = state.Outcome == engine.OutcomeWon
			result.Steps[n-1].Captured = state.Outcome == engine.OutcomeLost
		}
		result.StopReasonCode = string(state.Outcome)
		result.StoppedReason = state.Message
		if len(results) < len(directions) {
			result.StoppedOnMove = len(results)
		}
		result.Events = append(result.Events, outcomeEvents(state)...)
	case invalidAt >= 0 && result.StopReasonCode == "":
		result.Success = false
		result.StoppedOnMove = invalidAt + 1
		result.StopReasonCode = "invalid_direction"
		result.StoppedReason = fmt.Sprintf("move %d has unknown direction '%s'", invalidAt+1, moves[invalidAt])
	}

	enrich(state)
	result.GameState = state
	result.EndPos = state.PlayerPos
	result.Outcome = state.Outcome
	result.Message = state.Message
	result.LocalView3x3 = state.LocalView3x3
	result.Threat = state.Threat
	for _, d := range state.PossibleMoves {
		result.PossibleMoves = append(result.PossibleMoves, string(d))
	}

	s.persist(ctx, sessionID, "bulk_move")
	return result, nil
}

// Tick advances the pursuers once, outside the automatic schedule
func (s *gameServiceImpl) Tick(ctx context.Context, sessionID string) (*TickResult, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	applied, state, err := sess.Runner.Tick(ctx)
	if err != nil {
		return nil, err
	}
	enrich(state)

	result := &TickResult{Applied: applied, GameState: state, Message: state.Message}
	if !applied {
		result.Message = inactiveMessage(state)
	}

	s.persist(ctx, sessionID, "tick")
	return result, nil
}

// Reset abandons the current round and returns the session to idle
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	state, err := sess.Runner.Reset(ctx)
	if err != nil {
		return nil, err
	}

	s.persist(ctx, sessionID, "reset")
	return enrich(state), nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	state, err := sess.Runner.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return enrich(state), nil
}

// GetHistory returns the paginated event history of the current round
func (s *gameServiceImpl) GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	state, err := sess.Runner.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return paginate(state.History, opts), nil
}

func paginate(history []engine.EventRecord, opts HistoryOptions) *HistoryResponse {
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	// Calculate pagination
	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	// Pages past the end are empty and never compute an offset
	start := total
	if opts.Page <= totalPages {
		start = min((opts.Page-1)*opts.Limit, total)
	}
	end := min(start+opts.Limit, total)

	events := []engine.EventRecord{}
	if start < total {
		if opts.Order == "desc" {
			// Most recent first
			for i := total - 1 - start; i >= total-end; i-- {
				events = append(events, history[i])
			}
		} else {
			events = append(events, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Events:      events,
		TotalEvents: total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	if configName == "" || strings.ContainsAny(configName, `/\`) || strings.Contains(configName, "..") {
		return fmt.Errorf("%w: config name '%s'", ErrInvalidInput, configName)
	}
	return s.configs.SaveConfig(configName, config)
}

func outcomeEvents(state *engine.GameState) []GameEvent {
	switch state.Outcome {
	case engine.OutcomeWon:
		return []GameEvent{{
			Type:      "won",
			Message:   state.Message,
			Timestamp: time.Now(),
			Position:  state.PlayerPos,
		}}
	case engine.OutcomeLost:
		return []GameEvent{{
			Type:      "lost",
			Message:   state.Message,
			Timestamp: time.Now(),
			Position:  state.PlayerPos,
		}}
	}
	return nil
}

func inactiveMessage(state *engine.GameState) string {
	if state.Phase == engine.PhaseConcluded {
		return fmt.Sprintf("Round is over (%s). Start a new round to keep playing", state.Outcome)
	}
	return "No round in progress. Start a round first"
}

func attemptAt(state *engine.GameState, target engine.Position) *AttemptInfo {
	info := &AttemptInfo{X: target.X, Y: target.Y, TileType: "wall"}
	if target.X < 0 || target.Y < 0 || target.X >= state.Width || target.Y >= state.Height {
		info.TileType = "boundary"
	}
	return info
}

// enrich adds decision aids to a state snapshot
func enrich(state *engine.GameState) *engine.GameState {
	if state != nil {
		state.Threat = threatCode(engine.AnalyzeThreat(state))
	}
	return state
}

func threatCode(text string) string {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "caught"):
		return "CAUGHT"
	case strings.Contains(t, "danger"):
		return "DANGER"
	case strings.Contains(t, "caution"):
		return "CAUTION"
	case strings.Contains(t, "safe"):
		return "SAFE"
	default:
		return "UNKNOWN"
	}
}
