package engine

// Player is the controllable agent
type Player struct {
	Pos   Position
	Moves int
}

// PlayerController validates directional commands against the grid
type PlayerController struct {
	grid   *MazeGrid
	player Player
}

// NewPlayerController places the player at start with a zero move counter
func NewPlayerController(grid *MazeGrid, start Position) *PlayerController {
	return &PlayerController{
		grid:   grid,
		player: Player{Pos: start},
	}
}

// ApplyCommand moves the player one cell in direction if that cell is
// walkable. Blocked and unrecognized directions leave state untouched.
func (c *PlayerController) ApplyCommand(direction Direction) MoveResult {
	from := c.player.Pos
	if !direction.Valid() {
		return MoveResult{Accepted: false, From: from, To: from}
	}

	candidate := from.Add(direction)
	if !c.grid.Walkable(candidate) {
		return MoveResult{Accepted: false, From: from, To: from}
	}

	c.player.Pos = candidate
	c.player.Moves++
	return MoveResult{Accepted: true, From: from, To: candidate}
}

// CanMove reports whether direction would be accepted
func (c *PlayerController) CanMove(direction Direction) bool {
	return direction.Valid() && c.grid.Walkable(c.player.Pos.Add(direction))
}

// PossibleMoves lists the directions that would currently be accepted
func (c *PlayerController) PossibleMoves() []Direction {
	var possible []Direction
	for _, dir := range AllDirections {
		if c.CanMove(dir) {
			possible = append(possible, dir)
		}
	}
	return possible
}

// Position returns the player's current cell
func (c *PlayerController) Position() Position {
	return c.player.Pos
}

// Moves returns the number of accepted moves
func (c *PlayerController) Moves() int {
	return c.player.Moves
}
