package engine

import (
	"math/rand"
	"testing"
)

func TestAgentSet_TickInOrder(t *testing.T) {
	grid := mustGrid(t, openBox(7, 7))
	policy := mustPolicy(t, grid, 1)

	agents := NewAgentSet([]PursuerConfig{
		{ID: "east", Start: Position{X: 5, Y: 3}},
		{ID: "west", Start: Position{X: 1, Y: 3}},
		{ID: "south", Start: Position{X: 3, Y: 5}},
	})

	agents.Tick(Position{X: 3, Y: 3}, policy, rand.New(rand.NewSource(1)))

	want := map[string]Position{
		"east":  {4, 3},
		"west":  {2, 3},
		"south": {3, 4},
	}
	pursuers := agents.Pursuers()
	if len(pursuers) != 3 {
		t.Fatalf("Expected 3 pursuers, got %d", len(pursuers))
	}
	for i, id := range []string{"east", "west", "south"} {
		if pursuers[i].ID != id {
			t.Errorf("Expected pursuer %d to be %s, got %s", i, id, pursuers[i].ID)
		}
		if pursuers[i].Pos != want[id] {
			t.Errorf("Pursuer %s: expected %v, got %v", id, want[id], pursuers[i].Pos)
		}
	}
}

func TestAgentSet_PursuersMayOverlap(t *testing.T) {
	grid := mustGrid(t, []string{
		"#####",
		"#...#",
		"#####",
	})
	policy := mustPolicy(t, grid, 1)

	agents := NewAgentSet([]PursuerConfig{
		{ID: "a", Start: Position{X: 3, Y: 1}},
		{ID: "b", Start: Position{X: 3, Y: 1}},
	})
	agents.Tick(Position{X: 1, Y: 1}, policy, rand.New(rand.NewSource(1)))

	pursuers := agents.Pursuers()
	if pursuers[0].Pos != pursuers[1].Pos {
		t.Errorf("Expected both pursuers on the same cell, got %v and %v", pursuers[0].Pos, pursuers[1].Pos)
	}
	if !agents.Occupied(Position{X: 2, Y: 1}) {
		t.Error("Expected (2,1) to be occupied")
	}
}

func TestAgentSet_PursuersReturnsCopy(t *testing.T) {
	agents := NewAgentSet([]PursuerConfig{{ID: "a", Start: Position{X: 1, Y: 1}}})

	pursuers := agents.Pursuers()
	pursuers[0].Pos = Position{X: 9, Y: 9}

	if agents.Pursuers()[0].Pos != (Position{X: 1, Y: 1}) {
		t.Error("Expected AgentSet to be unaffected by changes to the returned slice")
	}
	if agents.Len() != 1 {
		t.Errorf("Expected 1 pursuer, got %d", agents.Len())
	}
}
