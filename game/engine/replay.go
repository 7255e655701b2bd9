package engine

import "fmt"

// Replay rebuilds a round from its seed and recorded events. Given the same
// configuration, seed and event sequence the resulting state matches the
// original round, apart from the round ID and timestamps.
func Replay(config *GameConfig, seed int64, events []EventRecord) (*GameState, error) {
	e, err := replayEngine(config, seed, events)
	if err != nil {
		return nil, err
	}
	return e.GetState(), nil
}

func replayEngine(config *GameConfig, seed int64, events []EventRecord) (*GameEngine, error) {
	e, err := NewEngine(config, WithSeed(seed))
	if err != nil {
		return nil, err
	}
	e.StartRound()

	for i, ev := range events {
		if e.phase != PhaseActive {
			return nil, fmt.Errorf("replay: event %d arrives after the round concluded", i+1)
		}
		switch ev.Kind {
		case EventCommand:
			e.Command(ev.Direction)
		case EventTick:
			e.Tick()
		default:
			return nil, fmt.Errorf("replay: event %d has unknown kind %q", i+1, ev.Kind)
		}
	}
	return e, nil
}
