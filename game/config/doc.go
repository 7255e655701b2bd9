// Package config provides configuration management for maze rounds.
//
// Round configurations are JSON files in the configs directory, one per
// maze. Each file defines:
//   - The layout, one string per row ('#' wall, '.' floor, 'S' start,
//     'G' goal, 'P' pursuer start)
//   - Optional explicit pursuers with ids and labels
//   - The pursuit tick interval and greedy probability
//   - Messages shown on start, win, loss and blocked moves
//
// The manager caches parsed configurations and always has a default: the
// classic.json file when present and valid, otherwise the built-in classic
// maze from the engine package.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	tiny, err := manager.LoadConfig("tiny")
//	configs, err := manager.ListConfigs()
package config
