package engine

import (
	"errors"
	"testing"
)

func openBox(width, height int) []string {
	layout := make([]string, height)
	for y := 0; y < height; y++ {
		row := make([]byte, width)
		for x := 0; x < width; x++ {
			if x == 0 || y == 0 || x == width-1 || y == height-1 {
				row[x] = '#'
			} else {
				row[x] = '.'
			}
		}
		layout[y] = string(row)
	}
	return layout
}

func mustGrid(t *testing.T, layout []string) *MazeGrid {
	t.Helper()
	grid, _, err := ParseLayout(layout)
	if err != nil {
		t.Fatalf("Failed to parse layout: %v", err)
	}
	return grid
}

func TestParseLayout(t *testing.T) {
	grid, markers, err := ParseLayout([]string{
		"#####",
		"#S.P#",
		"#.#.#",
		"#P.G#",
		"#####",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if grid.Width() != 5 || grid.Height() != 5 {
		t.Errorf("Expected 5x5 grid, got %dx%d", grid.Width(), grid.Height())
	}
	if markers.Start == nil || *markers.Start != (Position{X: 1, Y: 1}) {
		t.Errorf("Expected start marker at (1,1), got %v", markers.Start)
	}
	if markers.Goal == nil || *markers.Goal != (Position{X: 3, Y: 3}) {
		t.Errorf("Expected goal marker at (3,3), got %v", markers.Goal)
	}
	if len(markers.PursuerStarts) != 2 {
		t.Fatalf("Expected 2 pursuer markers, got %d", len(markers.PursuerStarts))
	}
	if markers.PursuerStarts[0] != (Position{X: 3, Y: 1}) || markers.PursuerStarts[1] != (Position{X: 1, Y: 3}) {
		t.Errorf("Unexpected pursuer markers: %v", markers.PursuerStarts)
	}

	// Markers are walkable, '#' is not
	for _, p := range []Position{{1, 1}, {3, 1}, {1, 3}, {3, 3}, {2, 1}} {
		if !grid.Walkable(p) {
			t.Errorf("Expected (%d,%d) to be walkable", p.X, p.Y)
		}
	}
	if grid.IsWalkable(2, 2) {
		t.Error("Expected (2,2) to be a wall")
	}
	if grid.CountWalkable() != 8 {
		t.Errorf("Expected 8 walkable cells, got %d", grid.CountWalkable())
	}
}

func TestParseLayout_Errors(t *testing.T) {
	tests := []struct {
		name   string
		layout []string
		target error
	}{
		{"empty layout", nil, ErrEmptyGrid},
		{"empty first row", []string{""}, ErrEmptyGrid},
		{"ragged rows", []string{"###", "#.", "###"}, ErrRaggedGrid},
		{"unknown character", []string{"###", "#x#", "###"}, nil},
		{"two starts", []string{"#SS#"}, nil},
		{"two goals", []string{"#GG#"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseLayout(tt.layout)
			if err == nil {
				t.Fatal("Expected error")
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("Expected %v, got %v", tt.target, err)
			}
		})
	}
}

func TestIsWalkable_OutOfBounds(t *testing.T) {
	// No border walls: edges are open but anything past them is not
	grid := mustGrid(t, []string{
		"...",
		"...",
	})

	outside := []Position{
		{-1, 0}, {0, -1}, {3, 0}, {0, 2}, {-5, -5}, {100, 1}, {1, 100},
	}
	for _, p := range outside {
		if grid.Walkable(p) {
			t.Errorf("Expected out-of-bounds (%d,%d) to be non-walkable", p.X, p.Y)
		}
	}

	for y := 0; y < grid.Height(); y++ {
		for x := 0; x < grid.Width(); x++ {
			if !grid.IsWalkable(x, y) {
				t.Errorf("Expected (%d,%d) to be walkable", x, y)
			}
		}
	}
}

func TestNewMazeGrid(t *testing.T) {
	grid, err := NewMazeGrid([][]bool{
		{false, true},
		{true, false},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if grid.IsWalkable(0, 0) || !grid.IsWalkable(1, 0) || !grid.IsWalkable(0, 1) || grid.IsWalkable(1, 1) {
		t.Error("Grid cells do not match input rows")
	}

	rows := grid.Rows()
	if rows[0] != "#." || rows[1] != ".#" {
		t.Errorf("Unexpected rows rendering: %v", rows)
	}

	if _, err := NewMazeGrid(nil); !errors.Is(err, ErrEmptyGrid) {
		t.Errorf("Expected ErrEmptyGrid, got %v", err)
	}
}
