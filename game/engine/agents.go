package engine

// AgentSet holds the pursuers of a round in insertion order
type AgentSet struct {
	pursuers []Pursuer
}

// NewAgentSet places pursuers at their configured start positions
func NewAgentSet(configs []PursuerConfig) *AgentSet {
	pursuers := make([]Pursuer, len(configs))
	for i, pc := range configs {
		pursuers[i] = Pursuer{ID: pc.ID, Label: pc.Label, Pos: pc.Start}
	}
	return &AgentSet{pursuers: pursuers}
}

// Tick moves every pursuer once toward player. Pursuers do not see each other
// and may share a cell.
func (a *AgentSet) Tick(player Position, policy Policy, rng Rand) {
	for i := range a.pursuers {
		a.pursuers[i].Pos = policy.ChooseMove(a.pursuers[i].Pos, player, rng)
	}
}

// Pursuers returns a copy of the pursuers in iteration order
func (a *AgentSet) Pursuers() []Pursuer {
	out := make([]Pursuer, len(a.pursuers))
	copy(out, a.pursuers)
	return out
}

// Len returns the number of pursuers
func (a *AgentSet) Len() int {
	return len(a.pursuers)
}

// Occupied reports whether any pursuer stands on p
func (a *AgentSet) Occupied(p Position) bool {
	for _, pursuer := range a.pursuers {
		if pursuer.Pos == p {
			return true
		}
	}
	return false
}

// restore replaces positions by pursuer ID, used when loading a snapshot
func (a *AgentSet) restore(pursuers []Pursuer) {
	byID := make(map[string]Position, len(pursuers))
	for _, p := range pursuers {
		byID[p.ID] = p.Pos
	}
	for i := range a.pursuers {
		if pos, ok := byID[a.pursuers[i].ID]; ok {
			a.pursuers[i].Pos = pos
		}
	}
}
