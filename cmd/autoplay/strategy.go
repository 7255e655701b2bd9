package main

import (
	"github.com/crneirav-code/juegoBE/game/engine"
)

// EvasiveStrategy heads for the goal along the shortest path that keeps at
// least Margin+1 steps between the player and every pursuer. When no such
// path exists it falls back to the plain shortest path.
type EvasiveStrategy struct {
	Margin int
}

// NextMove returns the first step of the chosen path, or DirectionNone when
// the goal cannot be reached at all
func (s *EvasiveStrategy) NextMove(state *engine.GameState) engine.Direction {
	path := s.Plan(state)
	if len(path) == 0 {
		return engine.DirectionNone
	}
	return path[0]
}

// Plan returns the full route to the goal for the current snapshot
func (s *EvasiveStrategy) Plan(state *engine.GameState) []engine.Direction {
	danger := s.dangerZone(state)
	if path := BFS(state, state.PlayerPos, state.Goal, danger); path != nil {
		return path
	}
	return BFS(state, state.PlayerPos, state.Goal, nil)
}

func (s *EvasiveStrategy) dangerZone(state *engine.GameState) map[engine.Position]bool {
	danger := make(map[engine.Position]bool)
	for y := 0; y < len(state.Grid); y++ {
		for x := 0; x < len(state.Grid[y]); x++ {
			pos := engine.Position{X: x, Y: y}
			for _, p := range state.Pursuers {
				if engine.ManhattanDistance(pos, p.Pos) <= s.Margin {
					danger[pos] = true
					break
				}
			}
		}
	}
	// Reaching the goal ends the round, so it is never avoided
	delete(danger, state.Goal)
	return danger
}

// BFS finds the shortest path between two cells of the snapshot's grid,
// never entering cells marked in avoid. It returns nil when there is none
// and an empty path when start == goal.
func BFS(state *engine.GameState, start, goal engine.Position, avoid map[engine.Position]bool) []engine.Direction {
	if start == goal {
		return []engine.Direction{}
	}

	type queueItem struct {
		pos  engine.Position
		path []engine.Direction
	}

	queue := []queueItem{{pos: start, path: []engine.Direction{}}}
	visited := map[engine.Position]bool{start: true}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, dir := range engine.AllDirections {
			next := current.pos.Add(dir)
			if visited[next] || avoid[next] || !isOpen(state, next) {
				continue
			}

			path := append(append([]engine.Direction{}, current.path...), dir)
			if next == goal {
				return path
			}

			visited[next] = true
			queue = append(queue, queueItem{pos: next, path: path})
		}
	}

	return nil
}

func isOpen(state *engine.GameState, pos engine.Position) bool {
	if pos.Y < 0 || pos.Y >= len(state.Grid) {
		return false
	}
	row := state.Grid[pos.Y]
	if pos.X < 0 || pos.X >= len(row) {
		return false
	}
	return row[pos.X] != engine.WallChar
}
