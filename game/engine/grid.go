package engine

import (
	"errors"
	"fmt"
)

// Layout characters
const (
	WallChar         = '#'
	PathChar         = '.'
	StartChar        = 'S'
	GoalChar         = 'G'
	PursuerStartChar = 'P'
)

var (
	ErrEmptyGrid  = errors.New("grid is empty")
	ErrRaggedGrid = errors.New("grid rows have different lengths")
)

// MazeGrid is an immutable walkability map. Positions outside the grid are
// never walkable.
type MazeGrid struct {
	width  int
	height int
	cells  []bool
}

// Markers holds the special cells found while parsing a layout
type Markers struct {
	Start         *Position
	Goal          *Position
	PursuerStarts []Position
}

// NewMazeGrid builds a grid from rows of walkability flags
func NewMazeGrid(rows [][]bool) (*MazeGrid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyGrid
	}

	width := len(rows[0])
	cells := make([]bool, 0, width*len(rows))
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d cells, expected %d", ErrRaggedGrid, y, len(row), width)
		}
		cells = append(cells, row...)
	}

	return &MazeGrid{width: width, height: len(rows), cells: cells}, nil
}

// ParseLayout builds a grid from layout strings and returns the markers it
// contains. Markers are walkable cells.
func ParseLayout(layout []string) (*MazeGrid, *Markers, error) {
	if len(layout) == 0 {
		return nil, nil, ErrEmptyGrid
	}

	markers := &Markers{}
	rows := make([][]bool, len(layout))
	for y, line := range layout {
		row := make([]bool, 0, len(line))
		for x, char := range []byte(line) {
			switch char {
			case WallChar:
				row = append(row, false)
				continue
			case PathChar:
			case StartChar:
				if markers.Start != nil {
					return nil, nil, fmt.Errorf("layout has more than one start marker (second at %d,%d)", x, y)
				}
				markers.Start = &Position{X: x, Y: y}
			case GoalChar:
				if markers.Goal != nil {
					return nil, nil, fmt.Errorf("layout has more than one goal marker (second at %d,%d)", x, y)
				}
				markers.Goal = &Position{X: x, Y: y}
			case PursuerStartChar:
				markers.PursuerStarts = append(markers.PursuerStarts, Position{X: x, Y: y})
			default:
				return nil, nil, fmt.Errorf("invalid character '%c' at row %d, col %d", char, y+1, x+1)
			}
			row = append(row, true)
		}
		rows[y] = row
	}

	grid, err := NewMazeGrid(rows)
	if err != nil {
		return nil, nil, err
	}
	return grid, markers, nil
}

// Width returns the number of columns
func (g *MazeGrid) Width() int {
	return g.width
}

// Height returns the number of rows
func (g *MazeGrid) Height() int {
	return g.height
}

// InBounds reports whether x,y lies inside the grid
func (g *MazeGrid) InBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// IsWalkable reports whether x,y is an open cell. Out of range is false.
func (g *MazeGrid) IsWalkable(x, y int) bool {
	if !g.InBounds(x, y) {
		return false
	}
	return g.cells[y*g.width+x]
}

// Walkable is IsWalkable for a Position
func (g *MazeGrid) Walkable(p Position) bool {
	return g.IsWalkable(p.X, p.Y)
}

// CountWalkable returns the number of open cells
func (g *MazeGrid) CountWalkable() int {
	count := 0
	for _, open := range g.cells {
		if open {
			count++
		}
	}
	return count
}

// Rows renders the grid back to layout strings using '#' and '.'
func (g *MazeGrid) Rows() []string {
	rows := make([]string, g.height)
	for y := 0; y < g.height; y++ {
		line := make([]byte, g.width)
		for x := 0; x < g.width; x++ {
			if g.cells[y*g.width+x] {
				line[x] = PathChar
			} else {
				line[x] = WallChar
			}
		}
		rows[y] = string(line)
	}
	return rows
}
