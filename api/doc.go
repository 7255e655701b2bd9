// Package api provides HTTP REST API handlers for the maze chase game.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session ({"config_id": "tiny"})
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/unified - Sessions for a multi-board view (?sessionIds=a,b or ?configName=x)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session
//
// Round Operations:
//   - POST /api/sessions/{id}/start - Start a round ({"config_name": "classic"})
//   - POST /api/sessions/{id}/move - {"direction": "up", "reset": false}
//   - POST /api/sessions/{id}/bulk-move - {"moves": ["up","left"], "reset": false}
//   - POST /api/sessions/{id}/tick - Advance pursuers once
//   - POST /api/sessions/{id}/reset - Restart the round with the same config
//   - GET /api/sessions/{id}/state - Current round state
//   - GET /api/sessions/{id}/history - Event history (?page=1&limit=20&order=desc)
//
// Configuration:
//   - GET /api/configs - List available maze configurations
//   - GET /api/configs/{name} - Get one configuration
//   - POST /api/configs - Save a configuration (body is a game config)
//
// Other:
//   - GET /ws?session={id} - WebSocket stream of round updates
//   - GET /health - Liveness probe
//
// Error Handling:
//
// Errors are returned as {"error": "message"}. Unknown sessions and configs
// map to 404, invalid input and configs to 400, stopped round loops to 410.
//
// Enriched Responses:
//
// Move responses carry the executed step, or attempted_to with the tile type
// (wall or boundary) when blocked. The embedded game state includes
// possible_moves, local_view_3x3 (player centered, '@' player, 'X' pursuer,
// 'G' goal, '#' wall) and the threat level SAFE|CAUTION|DANGER|CAUGHT.
//
// Bulk move responses add requested_moves, moves_executed, stop_reason_code
// (blocked|invalid_direction|not_active|won|lost), stopped_on_move, steps,
// truncated and limit.
package api
