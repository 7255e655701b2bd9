// Package websocket provides WebSocket transport for the maze chase game.
//
// A central Hub tracks clients per session. The session manager's notifier
// feeds BroadcastToSession, so every state change of a round, including
// pursuit ticks nobody asked for, reaches all watchers of that session.
//
// Message Protocol:
//
// Outgoing messages are JSON objects:
//
//	{"session_id": "ab12", "event": "state_update", "game_state": {...}}
//	{"session_id": "ab12", "event": "move_result", "data": {...}}
//	{"session_id": "ab12", "event": "error", "data": "unknown action: fly"}
//
// When a GameService is attached, clients may also send commands:
//
//	{"action": "start", "config": "tiny"}
//	{"action": "move", "direction": "up"}
//	{"action": "bulk_move", "moves": ["up", "up", "left"]}
//	{"action": "tick"}
//	{"action": "reset"}
//
// The sender gets an <action>_result reply; everyone gets the state_update.
package websocket
