// Package validate checks maze configuration files beyond what the engine
// enforces at load time:
//   - JSON structure, rejecting unknown fields
//   - Engine validation (grid shape, markers, probabilities)
//   - Connectivity: the goal is reachable from the start
//   - Pursuers that can never reach the player's area
package validate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/crneirav-code/juegoBE/game/engine"
)

// Result captures the outcome of validating a single file. Errors make a
// file invalid; Info lines are reported either way.
type Result struct {
	File   string
	Valid  bool
	Errors []string
	Info   []string
}

func (r *Result) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) note(format string, args ...any) {
	r.Info = append(r.Info, fmt.Sprintf(format, args...))
}

// File loads and validates a single configuration JSON file
func File(path string) Result {
	result := Result{File: filepath.Base(path), Valid: true}

	data, err := os.ReadFile(path)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var config engine.GameConfig
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&config); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	checkConfig(&config, &result)
	return result
}

// Config validates an in-memory configuration
func Config(config *engine.GameConfig) Result {
	result := Result{File: config.Name, Valid: true}
	checkConfig(config, &result)
	return result
}

func checkConfig(config *engine.GameConfig, result *Result) {
	round, err := engine.CompileConfig(config)
	if err != nil {
		result.fail("%v", err)
		return
	}

	if config.Messages.Welcome == "" {
		result.note("No welcome message, the default is used")
	}

	dist := Distances(round.Grid, round.Start)
	pathLen, ok := dist[round.Goal]
	if !ok {
		result.fail("Connectivity failure: goal (%d,%d) unreachable from start (%d,%d)",
			round.Goal.X, round.Goal.Y, round.Start.X, round.Start.Y)
		return
	}
	result.note("Connectivity: goal reachable in %d moves", pathLen)

	stranded := 0
	for _, p := range round.Pursuers {
		if _, ok := dist[p.Start]; !ok {
			stranded++
			result.note("Pursuer %s at (%d,%d) cannot reach the player", p.ID, p.Start.X, p.Start.Y)
		}
	}
	if len(round.Pursuers) > 0 && stranded == len(round.Pursuers) {
		result.note("No pursuer can reach the player; the round cannot be lost")
	}
}

// Distances returns the shortest walking distance from origin to every
// reachable cell. Unreachable cells are absent.
func Distances(grid *engine.MazeGrid, origin engine.Position) map[engine.Position]int {
	dist := make(map[engine.Position]int)
	if !grid.Walkable(origin) {
		return dist
	}

	dist[origin] = 0
	queue := []engine.Position{origin}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, dir := range engine.AllDirections {
			next := current.Add(dir)
			if _, seen := dist[next]; seen || !grid.Walkable(next) {
				continue
			}
			dist[next] = dist[current] + 1
			queue = append(queue, next)
		}
	}
	return dist
}

// Dir validates every *.json file in dir, sorted by file name
func Dir(dir string) ([]Result, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	results := make([]Result, 0, len(files))
	for _, file := range files {
		results = append(results, File(file))
	}
	return results, nil
}
