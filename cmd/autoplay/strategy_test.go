package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crneirav-code/juegoBE/game/engine"
)

func openState(pursuers ...engine.Position) *engine.GameState {
	state := &engine.GameState{
		Grid: []string{
			"#####",
			"#...#",
			"#...#",
			"#...#",
			"#####",
		},
		PlayerPos: engine.Position{X: 1, Y: 1},
		Goal:      engine.Position{X: 3, Y: 3},
	}
	for i, p := range pursuers {
		state.Pursuers = append(state.Pursuers, engine.Pursuer{ID: string(rune('a' + i)), Pos: p})
	}
	return state
}

func TestBFS(t *testing.T) {
	state := openState()

	path := BFS(state, state.PlayerPos, state.Goal, nil)
	assert.Len(t, path, 4)
	assert.Equal(t, engine.DirectionDown, path[0])

	assert.Empty(t, BFS(state, state.Goal, state.Goal, nil))
	assert.NotNil(t, BFS(state, state.Goal, state.Goal, nil))

	// Start boxed in by avoided cells
	avoid := map[engine.Position]bool{{X: 2, Y: 1}: true, {X: 1, Y: 2}: true}
	assert.Nil(t, BFS(state, state.PlayerPos, state.Goal, avoid))
}

func TestBFS_Walls(t *testing.T) {
	state := &engine.GameState{
		Grid:      []string{"#####", "#.#.#", "#####"},
		PlayerPos: engine.Position{X: 1, Y: 1},
		Goal:      engine.Position{X: 3, Y: 1},
	}
	assert.Nil(t, BFS(state, state.PlayerPos, state.Goal, nil))

	strategy := &EvasiveStrategy{Margin: 1}
	assert.Equal(t, engine.DirectionNone, strategy.NextMove(state))
}

func TestEvasiveStrategy_NoPursuers(t *testing.T) {
	strategy := &EvasiveStrategy{Margin: 1}
	assert.Equal(t, engine.DirectionDown, strategy.NextMove(openState()))
}

func TestEvasiveStrategy_AvoidsPursuer(t *testing.T) {
	// A pursuer in the bottom-left corner guards the left column route
	state := openState(engine.Position{X: 1, Y: 3})
	strategy := &EvasiveStrategy{Margin: 1}

	plan := strategy.Plan(state)
	assert.Equal(t, engine.DirectionRight, plan[0])

	pos := state.PlayerPos
	for _, dir := range plan {
		pos = pos.Add(dir)
		if pos != state.Goal {
			assert.Greater(t, engine.ManhattanDistance(pos, state.Pursuers[0].Pos), 1, "route passes next to the pursuer at %v", pos)
		}
	}
	assert.Equal(t, state.Goal, pos)
}

func TestEvasiveStrategy_FallsBackWhenCornered(t *testing.T) {
	// Both exits of the start lie next to a pursuer
	state := openState(engine.Position{X: 2, Y: 2})
	strategy := &EvasiveStrategy{Margin: 1}

	assert.NotEqual(t, engine.DirectionNone, strategy.NextMove(state))
	assert.Len(t, strategy.Plan(state), 4)
}

func TestEvasiveStrategy_GoalNeverAvoided(t *testing.T) {
	state := openState(engine.Position{X: 3, Y: 2})
	state.PlayerPos = engine.Position{X: 2, Y: 3}

	strategy := &EvasiveStrategy{Margin: 1}
	assert.Equal(t, engine.DirectionRight, strategy.NextMove(state))
}
