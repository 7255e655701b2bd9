// Package service provides the business logic layer for the maze chase game.
//
// The service package implements:
//   - Multi-session round management
//   - Configuration lookup with a default fallback
//   - Single and bulk move processing with per-step diagnostics
//   - Paginated round history
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, persistence and lifecycle.
// ConfigManager manages round configuration loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the round loop. Each session owns a loop.Runner, which in turn owns the
// session's engine; the service never touches an engine directly, so commands
// and pursuit ticks for one session are applied in a single order.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	state, err := gameService.StartRound(ctx, info.ID, "")
//	result, err := gameService.Move(ctx, info.ID, "right", false)
//
// Sessions are identified by 4-character IDs and survive restarts when the
// session manager is given a persistence backend.
package service
