package engine

import "testing"

func TestPlayerController_ApplyCommand(t *testing.T) {
	grid := mustGrid(t, openBox(5, 5))
	c := NewPlayerController(grid, Position{X: 1, Y: 1})

	tests := []struct {
		dir      Direction
		accepted bool
		want     Position
	}{
		{DirectionLeft, false, Position{1, 1}},
		{DirectionUp, false, Position{1, 1}},
		{DirectionRight, true, Position{2, 1}},
		{DirectionDown, true, Position{2, 2}},
		{DirectionNone, false, Position{2, 2}},
		{Direction("diagonal"), false, Position{2, 2}},
		{DirectionLeft, true, Position{1, 2}},
	}

	moves := 0
	for i, tt := range tests {
		result := c.ApplyCommand(tt.dir)
		if result.Accepted != tt.accepted {
			t.Errorf("Step %d (%s): expected accepted=%v", i, tt.dir, tt.accepted)
		}
		if result.To != tt.want || c.Position() != tt.want {
			t.Errorf("Step %d (%s): expected position %v, got %v", i, tt.dir, tt.want, c.Position())
		}
		if tt.accepted {
			moves++
		}
		if c.Moves() != moves {
			t.Errorf("Step %d: expected %d moves, got %d", i, moves, c.Moves())
		}
	}
}

func TestPlayerController_RejectedIsIdempotent(t *testing.T) {
	grid := mustGrid(t, openBox(5, 5))
	c := NewPlayerController(grid, Position{X: 1, Y: 1})

	for i := 0; i < 10; i++ {
		result := c.ApplyCommand(DirectionLeft)
		if result.Accepted || result.From != result.To {
			t.Fatalf("Expected rejection without movement, got %+v", result)
		}
	}
	if c.Position() != (Position{X: 1, Y: 1}) || c.Moves() != 0 {
		t.Errorf("Expected untouched player, got %v with %d moves", c.Position(), c.Moves())
	}
}

func TestPlayerController_PossibleMoves(t *testing.T) {
	grid := mustGrid(t, []string{
		"#####",
		"#...#",
		"##.##",
		"#####",
	})

	tests := []struct {
		start Position
		want  []Direction
	}{
		{Position{1, 1}, []Direction{DirectionRight}},
		{Position{2, 1}, []Direction{DirectionDown, DirectionLeft, DirectionRight}},
		{Position{2, 2}, []Direction{DirectionUp}},
	}

	for _, tt := range tests {
		c := NewPlayerController(grid, tt.start)
		got := c.PossibleMoves()
		if len(got) != len(tt.want) {
			t.Errorf("From %v: expected %v, got %v", tt.start, tt.want, got)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("From %v: expected %v, got %v", tt.start, tt.want, got)
				break
			}
		}
	}
}
