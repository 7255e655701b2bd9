package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrInvalidConfig wraps every configuration validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// Round is a validated configuration ready to start a round from
type Round struct {
	Grid              *MazeGrid
	Start             Position
	Goal              Position
	Pursuers          []PursuerConfig
	GreedyProbability float64
	TickInterval      time.Duration
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// CompileConfig validates config and resolves markers and defaults
func CompileConfig(config *GameConfig) (*Round, error) {
	if config == nil {
		return nil, invalid("config cannot be nil")
	}
	if config.Name == "" {
		return nil, invalid("name is required")
	}

	grid, markers, err := ParseLayout(config.Layout)
	if err != nil {
		return nil, invalid("layout: %v", err)
	}
	if grid.Width() > MaxGridDimension || grid.Height() > MaxGridDimension {
		return nil, invalid("grid must be at most %dx%d, got %dx%d",
			MaxGridDimension, MaxGridDimension, grid.Width(), grid.Height())
	}

	round := &Round{
		Grid:              grid,
		GreedyProbability: DefaultGreedyProbability,
		TickInterval:      DefaultTickIntervalMs * time.Millisecond,
	}

	// Explicit positions win over layout markers
	switch {
	case config.Start != nil:
		round.Start = *config.Start
	case markers.Start != nil:
		round.Start = *markers.Start
	default:
		return nil, invalid("start position is required (set start or place an 'S' in the layout)")
	}
	switch {
	case config.Goal != nil:
		round.Goal = *config.Goal
	case markers.Goal != nil:
		round.Goal = *markers.Goal
	default:
		return nil, invalid("goal position is required (set goal or place a 'G' in the layout)")
	}

	if !grid.Walkable(round.Start) {
		return nil, invalid("start (%d,%d) is not a walkable cell", round.Start.X, round.Start.Y)
	}
	if !grid.Walkable(round.Goal) {
		return nil, invalid("goal (%d,%d) is not a walkable cell", round.Goal.X, round.Goal.Y)
	}
	if round.Start == round.Goal {
		return nil, invalid("start and goal must differ")
	}

	pursuers := config.Pursuers
	if len(pursuers) == 0 {
		for i, pos := range markers.PursuerStarts {
			pursuers = append(pursuers, PursuerConfig{
				ID:    fmt.Sprintf("pursuer_%d", i),
				Label: fmt.Sprintf("Pursuer %d", i+1),
				Start: pos,
			})
		}
	}
	if len(pursuers) > MaxPursuers {
		return nil, invalid("at most %d pursuers are supported, got %d", MaxPursuers, len(pursuers))
	}

	seen := make(map[string]bool, len(pursuers))
	round.Pursuers = make([]PursuerConfig, len(pursuers))
	for i, pc := range pursuers {
		if pc.ID == "" {
			pc.ID = fmt.Sprintf("pursuer_%d", i)
		}
		if seen[pc.ID] {
			return nil, invalid("duplicate pursuer id %q", pc.ID)
		}
		seen[pc.ID] = true
		if !grid.Walkable(pc.Start) {
			return nil, invalid("pursuer %q start (%d,%d) is not a walkable cell", pc.ID, pc.Start.X, pc.Start.Y)
		}
		if pc.Start == round.Start {
			return nil, invalid("pursuer %q starts on the player start", pc.ID)
		}
		round.Pursuers[i] = pc
	}

	if config.TickIntervalMs < 0 {
		return nil, invalid("tick_interval_ms cannot be negative, got %d", config.TickIntervalMs)
	}
	if config.TickIntervalMs > 0 {
		round.TickInterval = time.Duration(config.TickIntervalMs) * time.Millisecond
	}

	if config.GreedyProbability != nil {
		p := *config.GreedyProbability
		if p < 0 || p > 1 {
			return nil, invalid("greedy_probability must be within [0,1], got %v", p)
		}
		round.GreedyProbability = p
	}

	return round, nil
}

// ValidateGameConfig validates a round configuration
func ValidateGameConfig(config *GameConfig) error {
	_, err := CompileConfig(config)
	return err
}

// LoadGameConfig loads a round configuration from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	// CONFIG_DIR replaces a leading "configs/" in the path
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", filename, err)
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// DefaultGameConfig returns the built-in 19x15 round with six pursuers
func DefaultGameConfig() *GameConfig {
	p := DefaultGreedyProbability
	return &GameConfig{
		Name:        "classic",
		Description: "Cross the city maze from the top-left corner to the bottom-right exit",
		Layout: []string{
			"###################",
			"#S.......#........#",
			"#.###.##.#.##.###.#",
			"#.................#",
			"#.###.#.###.#.###.#",
			"#.....#..#..#.....#",
			"#####.##.#.##.#####",
			"#.................#",
			"#.###.#.###.#.###.#",
			"#...#.#..#..#.#...#",
			"###.#.##.#.##.#.###",
			"#.................#",
			"#.###.##.#.##.###.#",
			"#........#.......G#",
			"###################",
		},
		Pursuers: []PursuerConfig{
			{ID: "chaser-1", Label: "Chaser 1", Start: Position{X: 17, Y: 1}},
			{ID: "chaser-2", Label: "Chaser 2", Start: Position{X: 1, Y: 13}},
			{ID: "chaser-3", Label: "Chaser 3", Start: Position{X: 9, Y: 7}},
			{ID: "chaser-4", Label: "Chaser 4", Start: Position{X: 15, Y: 10}},
			{ID: "chaser-5", Label: "Chaser 5", Start: Position{X: 17, Y: 13}},
			{ID: "chaser-6", Label: "Chaser 6", Start: Position{X: 3, Y: 3}},
		},
		TickIntervalMs:    DefaultTickIntervalMs,
		GreedyProbability: &p,
		Messages: Messages{
			Welcome: "Reach the exit before the chasers catch you!",
			Won:     "You escaped in %d moves!",
			Lost:    "Caught after %d moves!",
			Blocked: "Can't move there!",
		},
	}
}
