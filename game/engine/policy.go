package engine

import (
	"cmp"
	"fmt"
	"slices"
)

// Rand is the random source a policy draws from. *math/rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Policy picks the next position of a pursuer
type Policy interface {
	ChooseMove(from, target Position, rng Rand) Position
}

// neighborOrder is the candidate generation order: +x, -x, +y, -y.
// Ties in distance keep this order.
var neighborOrder = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// PursuitPolicy moves toward the target with probability GreedyProbability
// and to a uniformly random open neighbor otherwise.
type PursuitPolicy struct {
	grid              *MazeGrid
	greedyProbability float64
}

// NewPursuitPolicy creates a policy over grid. p must lie in [0,1].
func NewPursuitPolicy(grid *MazeGrid, p float64) (*PursuitPolicy, error) {
	if grid == nil {
		return nil, fmt.Errorf("pursuit policy: grid cannot be nil")
	}
	if p < 0 || p > 1 {
		return nil, fmt.Errorf("pursuit policy: greedy probability must be within [0,1], got %v", p)
	}
	return &PursuitPolicy{grid: grid, greedyProbability: p}, nil
}

// GreedyProbability returns the configured probability of a greedy move
func (p *PursuitPolicy) GreedyProbability() float64 {
	return p.greedyProbability
}

// Candidates returns the walkable neighbors of from in generation order
func (p *PursuitPolicy) Candidates(from Position) []Position {
	candidates := make([]Position, 0, len(neighborOrder))
	for _, d := range neighborOrder {
		next := Position{X: from.X + d[0], Y: from.Y + d[1]}
		if p.grid.Walkable(next) {
			candidates = append(candidates, next)
		}
	}
	return candidates
}

// ChooseMove returns the next position for a pursuer at from chasing target.
// A pursuer with no open neighbor stays put. Exactly one Float64 is drawn per
// move, plus one Intn when the random branch is taken.
func (p *PursuitPolicy) ChooseMove(from, target Position, rng Rand) Position {
	candidates := p.Candidates(from)
	if len(candidates) == 0 {
		return from
	}

	if rng.Float64() < p.greedyProbability {
		return RankByDistance(candidates, target)[0]
	}
	return candidates[rng.Intn(len(candidates))]
}

// RankByDistance returns a copy of candidates stably sorted by Manhattan
// distance to target.
func RankByDistance(candidates []Position, target Position) []Position {
	ranked := slices.Clone(candidates)
	slices.SortStableFunc(ranked, func(a, b Position) int {
		return cmp.Compare(ManhattanDistance(a, target), ManhattanDistance(b, target))
	})
	return ranked
}
