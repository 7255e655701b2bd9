package engine

import "testing"

func TestEvaluate(t *testing.T) {
	goal := Position{X: 3, Y: 3}

	tests := []struct {
		name     string
		player   Position
		pursuers []Pursuer
		want     Outcome
	}{
		{"ongoing", Position{1, 1}, []Pursuer{{ID: "a", Pos: Position{2, 2}}}, OutcomeOngoing},
		{"no pursuers", Position{1, 1}, nil, OutcomeOngoing},
		{"on goal", goal, []Pursuer{{ID: "a", Pos: Position{1, 1}}}, OutcomeWon},
		{"pursuer on previous cell", goal, []Pursuer{{ID: "a", Pos: Position{3, 2}}}, OutcomeWon},
		{"captured", Position{2, 2}, []Pursuer{{ID: "a", Pos: Position{1, 1}}, {ID: "b", Pos: Position{2, 2}}}, OutcomeLost},
		{"captured on goal", goal, []Pursuer{{ID: "a", Pos: goal}}, OutcomeLost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(tt.player, goal, tt.pursuers); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestAnalyzeThreat(t *testing.T) {
	state := &GameState{
		Phase:     PhaseActive,
		PlayerPos: Position{X: 1, Y: 1},
		Pursuers:  []Pursuer{{ID: "a", Pos: Position{X: 9, Y: 9}}},
	}
	if got := AnalyzeThreat(state); got != "SAFE: No pursuer nearby" {
		t.Errorf("Unexpected threat: %s", got)
	}

	state.Pursuers = append(state.Pursuers, Pursuer{ID: "b", Pos: Position{X: 1, Y: 2}})
	if got := AnalyzeThreat(state); got != "DANGER: Pursuer adjacent!" {
		t.Errorf("Unexpected threat: %s", got)
	}

	nearest, dist, ok := NearestPursuer(state.PlayerPos, state.Pursuers)
	if !ok || nearest.ID != "b" || dist != 1 {
		t.Errorf("Expected pursuer b at distance 1, got %s at %d", nearest.ID, dist)
	}

	state.Phase = PhaseConcluded
	state.Outcome = OutcomeLost
	if got := AnalyzeThreat(state); got != "CAUGHT: Round lost" {
		t.Errorf("Unexpected threat: %s", got)
	}
}
