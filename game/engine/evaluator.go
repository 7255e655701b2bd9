package engine

// Evaluate returns the round outcome for the given positions. Capture takes
// precedence over reaching the goal when both hold.
func Evaluate(player, goal Position, pursuers []Pursuer) Outcome {
	for _, p := range pursuers {
		if p.Pos == player {
			return OutcomeLost
		}
	}
	if player == goal {
		return OutcomeWon
	}
	return OutcomeOngoing
}
