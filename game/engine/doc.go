// Package engine provides the core logic of the maze chase game.
//
// The engine package implements:
//   - MazeGrid, an immutable walkability oracle over a bounded map
//   - PursuitPolicy, the mostly-greedy move rule of the pursuers
//   - AgentSet, the pursuers advanced once per tick
//   - PlayerController, validation of directional commands
//   - Evaluate, the win/lose check run after every position change
//   - GameEngine, the idle/active/concluded round state machine
//
// Usage:
//
//	gameEngine, err := engine.NewEngine(engine.DefaultGameConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine.StartRound()
//	gameEngine.Command(engine.DirectionRight)
//	gameEngine.Tick()
//	state := gameEngine.GetState()
//
// Rules:
//
// The player moves one cell per accepted command. Each tick every pursuer
// steps to the open neighbor closest to the player with probability
// greedy_probability, otherwise to a random open neighbor. The round is won
// when the player stands on the goal and lost when a pursuer shares the
// player's cell; capture wins over the goal when both happen at once.
//
// GameEngine is not safe for concurrent use. The loop package serializes
// commands and ticks onto a single goroutine.
package engine
