// Package mcp exposes the maze chase game as Model Context Protocol tools.
//
// The Client is a thin proxy: every tool call becomes a request against the
// REST API, so an MCP agent and a browser share the same sessions. Tool
// results are plain text meant for language models, with the maze rendered
// as rows of characters:
//
//	@  player
//	X  pursuer
//	G  goal
//	#  wall
//	.  floor
//
// Tools:
//   - create_session, get_session, list_sessions
//   - start_round, game_state, move, bulk_move, tick, reset_round
//   - round_history, list_configs, game_instructions, describe_cell
//
// API failures are reported as tool errors (IsError results), never as Go
// errors, so the agent sees the server's message.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
