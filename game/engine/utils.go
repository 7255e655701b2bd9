package engine

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	return abs(from.X-to.X) + abs(from.Y-to.Y)
}

// NearestPursuer returns the pursuer closest to pos by Manhattan distance.
// Ties go to the earlier pursuer.
func NearestPursuer(pos Position, pursuers []Pursuer) (Pursuer, int, bool) {
	best := -1
	var nearest Pursuer
	for _, p := range pursuers {
		d := ManhattanDistance(pos, p.Pos)
		if best == -1 || d < best {
			best = d
			nearest = p
		}
	}
	return nearest, best, best != -1
}

// AnalyzeThreat grades how close the nearest pursuer is to the player
func AnalyzeThreat(state *GameState) string {
	if state.Phase == PhaseConcluded {
		if state.Outcome == OutcomeLost {
			return "CAUGHT: Round lost"
		}
		return "SAFE: Round won"
	}

	_, dist, found := NearestPursuer(state.PlayerPos, state.Pursuers)
	switch {
	case !found:
		return "SAFE: No pursuers"
	case dist <= 1:
		return "DANGER: Pursuer adjacent!"
	case dist <= 3:
		return "CAUTION: Pursuer closing in"
	}
	return "SAFE: No pursuer nearby"
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
