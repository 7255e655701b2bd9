package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/crneirav-code/juegoBE/game/engine"
	"github.com/crneirav-code/juegoBE/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Maze Chase",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Maze Chase - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Walk the player (@) through the maze to the goal (G) before a pursuer (X)
lands on your cell. Pursuers move on their own clock, even while you think.

AVAILABLE TOOLS:
- create_session / get_session / list_sessions: manage sessions
- start_round: start a round, optionally with another maze config
- game_state: current round state with the maze rendered
- move: single move (up/down/left/right), requires intent
- bulk_move: up to 50 moves at once, requires intent
- tick: advance the pursuers once
- reset_round: restart the round with the same config
- round_history: past commands and ticks
- list_configs: available mazes
- game_instructions: rules and strategy
- describe_cell: what occupies one cell`),
	)

	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_name": map[string]interface{}{
					"type":        "string",
					"description": "Name of the maze config to use (optional, see list_configs)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetSession)

	// Round operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "start_round",
		Description: "Start a new round. Pursuers begin moving immediately.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"config_name": map[string]interface{}{
					"type":        "string",
					"description": "Switch to this maze config before starting (optional)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleStartRound)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current round state with the maze rendered",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move the player one cell",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"up", "down", "left", "right"},
					"description": "Direction to move",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Explain why you are making this move",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Start a new round before moving",
				},
			},
			Required: []string{"session_id", "direction", "intent"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_move",
		Description: fmt.Sprintf("Execute up to %d moves in order. Stops at the first blocked move, invalid direction or round end.", engine.MaxBulkMoves),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"moves": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string", "enum": []string{"up", "down", "left", "right"}},
					"description": "Directions to execute",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Explain the route you are taking",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Start a new round before moving",
				},
			},
			Required: []string{"session_id", "moves", "intent"},
		},
	}, c.handleBulkMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "tick",
		Description: "Advance every pursuer by one step",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleTick)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_round",
		Description: "Restart the round with the same maze",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "round_history",
		Description: "Get the commands and ticks of the current round, newest first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"page": map[string]interface{}{
					"type":        "number",
					"description": "Page number (default 1)",
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Events per page (default 20, max 100)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleRoundHistory)

	// Configuration and help
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available maze configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules of the game and tips for playing it",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Describe what occupies the cell at (x, y): wall, floor, goal, pursuer or player",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"x": map[string]interface{}{
					"type":        "number",
					"description": "Column, 0 at the left edge",
				},
				"y": map[string]interface{}{
					"type":        "number",
					"description": "Row, 0 at the top edge",
				},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleDescribeCell)
}

// GetMCPServer returns the underlying MCP server
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

func stringArg(args map[string]interface{}, key string) string {
	v, _ := args[key].(string)
	return v
}

func numberArg(args map[string]interface{}, key string) (int, bool) {
	v, ok := args[key].(float64)
	return int(v), ok
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	body := map[string]string{}
	if configName := stringArg(args, "config_name"); configName != "" {
		body["config_id"] = configName
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\nUse start_round to begin.\n", session.ID, session.ConfigName)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		phase := engine.PhaseIdle
		if s.GameState != nil {
			phase = s.GameState.Phase
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Round: %s, Created: %s)\n",
			s.ID, s.ConfigName, phase, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request.GetArguments(), "session_id")

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleStartRound(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID := stringArg(args, "session_id")

	body := map[string]string{}
	if configName := stringArg(args, "config_name"); configName != "" {
		body["config_name"] = configName
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/start"), body, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Round started.\n\n" + formatGameState(&state)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request.GetArguments(), "session_id")

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID := stringArg(args, "session_id")
	reset, _ := args["reset"].(bool)

	// intent is for the caller's own reasoning and is not sent
	body := map[string]interface{}{
		"direction": stringArg(args, "direction"),
		"reset":     reset,
	}

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleBulkMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID := stringArg(args, "session_id")
	movesRaw, _ := args["moves"].([]interface{})
	reset, _ := args["reset"].(bool)

	moves := make([]string, 0, len(movesRaw))
	for _, m := range movesRaw {
		if move, ok := m.(string); ok {
			moves = append(moves, move)
		}
	}
	if len(moves) == 0 {
		return mcp.NewToolResultError("moves must contain at least one direction"), nil
	}

	body := map[string]interface{}{
		"moves": moves,
		"reset": reset,
	}

	var result service.BulkMoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/bulk-move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkMoveResult(sessionID, &result)), nil
}

func (c *Client) handleTick(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request.GetArguments(), "session_id")

	var result service.TickResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/tick"), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := result.Message
	if result.GameState != nil {
		text += "\n\n" + formatGameState(result.GameState)
	}
	return mcp.NewToolResultText(text), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request.GetArguments(), "session_id")

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))), nil
}

func (c *Client) handleRoundHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID := stringArg(args, "session_id")

	query := url.Values{}
	if page, ok := numberArg(args, "page"); ok {
		query.Set("page", fmt.Sprint(page))
	}
	if limit, ok := numberArg(args, "limit"); ok {
		query.Set("limit", fmt.Sprint(limit))
	}
	path := sessionPath(sessionID, "/history")
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&b, "• %s (%s)\n  %s\n  Maze: %dx%d, Pursuers: %d, Tick: %dms, Greedy: %.2f\n\n",
			config.ConfigID, config.Name, config.Description,
			config.Width, config.Height, config.Pursuers, config.TickIntervalMs, config.Greedy)
	}

	return mcp.NewToolResultText(b.String()), nil
}

const instructions = `Maze Chase - Instructions

OBJECTIVE:
Reach the goal cell before any pursuer shares your cell.

LEGEND (game_state rendering):
• @ - You
• X - Pursuer (several on one cell still show one X)
• G - Goal
• # - Wall (impassable)
• . - Open floor

RULES:
• Each accepted move changes your position by exactly one cell.
• Moves into walls or off the maze are rejected and change nothing.
• Pursuers move once per tick, on a timer that runs whether or not you act.
• Each tick a pursuer takes its best step toward you with the config's greedy
  probability, otherwise it steps to a random open neighbor.
• Capture wins over the goal: if a pursuer lands on you as you reach G,
  the round is lost.
• Once a round concludes, further moves do nothing until you start a new one.

STRATEGY:
• Read local_view_3x3 and possible_moves before every decision.
• Threat levels: SAFE (no pursuer within 3), CAUTION (2-3 cells), DANGER (adjacent).
• Prefer bulk_move for corridors you are sure of; the timer keeps running
  between tool calls.
• Pursuers do not see each other, so they tend to bunch up in corridors.
  Lure them to one side before crossing.
• describe_cell checks one coordinate when the rendering is ambiguous.

SESSIONS:
• Every session has a 4-character ID and an independent round.
• start_round with config_name switches mazes; reset_round keeps the maze.`

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID := stringArg(args, "session_id")
	x, okX := numberArg(args, "x")
	y, okY := numberArg(args, "y")
	if !okX || !okY {
		return mcp.NewToolResultError("x and y are required numbers"), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(describeCell(&state, x, y)), nil
}

// describeCell reports what occupies (x, y) in the given state
func describeCell(state *engine.GameState, x, y int) string {
	if x < 0 || y < 0 || x >= state.Width || y >= state.Height {
		return fmt.Sprintf("Cell (%d,%d) is outside the %dx%d maze", x, y, state.Width, state.Height)
	}

	pos := engine.Position{X: x, Y: y}
	var occupants []string
	if state.PlayerPos == pos {
		occupants = append(occupants, "player")
	}
	for _, p := range state.Pursuers {
		if p.Pos == pos {
			occupants = append(occupants, "pursuer "+p.ID)
		}
	}
	if state.Goal == pos {
		occupants = append(occupants, "goal")
	}

	terrain := "unknown"
	passable := false
	if y < len(state.Grid) && x < len(state.Grid[y]) {
		if state.Grid[y][x] == '#' {
			terrain = "wall"
		} else {
			terrain = "floor"
			passable = true
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Cell (%d,%d)\n", x, y)
	fmt.Fprintf(&b, "Terrain: %s\n", terrain)
	fmt.Fprintf(&b, "Passable: %v\n", passable)
	if len(occupants) > 0 {
		fmt.Fprintf(&b, "Occupied by: %s\n", strings.Join(occupants, ", "))
	}
	dist := engine.ManhattanDistance(state.PlayerPos, pos)
	fmt.Fprintf(&b, "Distance from player: %d\n", dist)
	return b.String()
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\nConfig: %s\nCreated: %s\nLast accessed: %s\n",
		session.ID, session.ConfigName,
		session.CreatedAt.Format(time.RFC3339), session.LastAccessedAt.Format(time.RFC3339))
	if session.GameState != nil {
		b.WriteString("\n")
		b.WriteString(formatGameState(session.GameState))
	}
	return b.String()
}

// renderMaze overlays the goal, pursuers and the player on the grid rows
func renderMaze(state *engine.GameState) []string {
	if len(state.Grid) == 0 {
		return nil
	}
	rows := make([][]byte, len(state.Grid))
	for i, row := range state.Grid {
		rows[i] = []byte(row)
	}
	put := func(p engine.Position, c byte) {
		if p.Y >= 0 && p.Y < len(rows) && p.X >= 0 && p.X < len(rows[p.Y]) {
			rows[p.Y][p.X] = c
		}
	}
	put(state.Goal, 'G')
	for _, p := range state.Pursuers {
		put(p.Pos, 'X')
	}
	put(state.PlayerPos, '@')

	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = string(row)
	}
	return out
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder
	switch {
	case state.Phase == engine.PhaseIdle:
		b.WriteString("Round: not started\n")
	case state.Outcome == engine.OutcomeWon:
		b.WriteString("Round: WON\n")
	case state.Outcome == engine.OutcomeLost:
		b.WriteString("Round: LOST\n")
	default:
		b.WriteString("Round: in progress\n")
	}

	fmt.Fprintf(&b, "Config: %s\n", state.ConfigName)
	fmt.Fprintf(&b, "Position: (%d,%d)\n", state.PlayerPos.X, state.PlayerPos.Y)
	fmt.Fprintf(&b, "Goal: (%d,%d)\n", state.Goal.X, state.Goal.Y)
	fmt.Fprintf(&b, "Moves: %d, Ticks: %d\n", state.Moves, state.Ticks)
	if state.Threat != "" {
		fmt.Fprintf(&b, "Threat: %s\n", state.Threat)
	}

	if len(state.Pursuers) > 0 {
		b.WriteString("Pursuers:")
		for _, p := range state.Pursuers {
			fmt.Fprintf(&b, " %s(%d,%d)", p.ID, p.Pos.X, p.Pos.Y)
		}
		b.WriteString("\n")
	}

	if len(state.PossibleMoves) > 0 {
		moves := make([]string, len(state.PossibleMoves))
		for i, d := range state.PossibleMoves {
			moves[i] = string(d)
		}
		fmt.Fprintf(&b, "Possible moves: %s\n", strings.Join(moves, ", "))
	}

	if state.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", state.Message)
	}

	if maze := renderMaze(state); len(maze) > 0 {
		b.WriteString("\nMaze:\n")
		for y, row := range maze {
			fmt.Fprintf(&b, "%3d %s\n", y, row)
		}
	}

	return b.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	if result.Success {
		b.WriteString("Move successful")
		if result.Step != nil {
			fmt.Fprintf(&b, ": (%d,%d) -> (%d,%d)", result.Step.From.X, result.Step.From.Y, result.Step.To.X, result.Step.To.Y)
		}
		b.WriteString("\n")
	} else {
		fmt.Fprintf(&b, "Move failed: %s\n", result.Message)
		if result.AttemptedTo != nil {
			fmt.Fprintf(&b, "Attempted: (%d,%d) %s\n", result.AttemptedTo.X, result.AttemptedTo.Y, result.AttemptedTo.TileType)
		}
	}

	for _, event := range result.Events {
		if event.Type == "won" || event.Type == "lost" {
			fmt.Fprintf(&b, "%s\n", event.Message)
		}
	}

	if result.GameState != nil {
		if len(result.GameState.LocalView3x3) > 0 {
			b.WriteString("\nLocal view:\n")
			for _, row := range result.GameState.LocalView3x3 {
				fmt.Fprintf(&b, "  %s\n", row)
			}
		}
		b.WriteString("\n")
		b.WriteString(formatGameState(result.GameState))
	}

	return b.String()
}

func formatBulkMoveResult(sessionID string, result *service.BulkMoveResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session %s: executed %d/%d moves\n", sessionID, result.MovesExecuted, result.RequestedMoves)
	if result.Truncated {
		fmt.Fprintf(&b, "Request truncated to %d moves\n", result.Limit)
	}
	fmt.Fprintf(&b, "Start: (%d,%d)  End: (%d,%d)\n", result.StartPos.X, result.StartPos.Y, result.EndPos.X, result.EndPos.Y)

	if result.StopReasonCode != "" {
		fmt.Fprintf(&b, "Stopped: %s", result.StopReasonCode)
		if result.StoppedOnMove > 0 {
			fmt.Fprintf(&b, " on move %d", result.StoppedOnMove)
		}
		if result.StoppedReason != "" {
			fmt.Fprintf(&b, " (%s)", result.StoppedReason)
		}
		b.WriteString("\n")
	}
	if result.AttemptedTo != nil {
		fmt.Fprintf(&b, "Attempted: (%d,%d) %s\n", result.AttemptedTo.X, result.AttemptedTo.Y, result.AttemptedTo.TileType)
	}

	if len(result.Steps) > 0 {
		b.WriteString("\nSteps:\n")
		for _, step := range result.Steps {
			fmt.Fprintf(&b, "  %2d %-5s (%d,%d) -> (%d,%d)", step.Idx, step.Dir, step.From.X, step.From.Y, step.To.X, step.To.Y)
			if step.Goal {
				b.WriteString(" GOAL")
			}
			if step.Captured {
				b.WriteString(" CAUGHT")
			}
			b.WriteString("\n")
		}
	}

	if len(result.LocalView3x3) > 0 {
		b.WriteString("\nLocal view:\n")
		for _, row := range result.LocalView3x3 {
			fmt.Fprintf(&b, "  %s\n", row)
		}
	}
	if len(result.PossibleMoves) > 0 {
		fmt.Fprintf(&b, "Possible moves: %s\n", strings.Join(result.PossibleMoves, ", "))
	}
	if result.Threat != "" {
		fmt.Fprintf(&b, "Threat: %s\n", result.Threat)
	}
	if result.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", result.Message)
	}

	if result.GameState != nil {
		if maze := renderMaze(result.GameState); len(maze) > 0 {
			b.WriteString("\nMaze:\n")
			for y, row := range maze {
				fmt.Fprintf(&b, "%3d %s\n", y, row)
			}
		}
	}

	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Round History (page %d/%d, %d events):\n\n", history.Page, history.TotalPages, history.TotalEvents)

	for _, ev := range history.Events {
		switch ev.Kind {
		case engine.EventTick:
			fmt.Fprintf(&b, "#%d tick, player at (%d,%d)", ev.Seq, ev.PlayerPos.X, ev.PlayerPos.Y)
		default:
			status := "ok"
			if !ev.Accepted {
				status = "blocked"
			}
			fmt.Fprintf(&b, "#%d %s %s -> (%d,%d)", ev.Seq, ev.Direction, status, ev.PlayerPos.X, ev.PlayerPos.Y)
		}
		if ev.Outcome != "" && ev.Outcome != engine.OutcomeOngoing {
			fmt.Fprintf(&b, " [%s]", ev.Outcome)
		}
		b.WriteString("\n")
	}

	if history.HasNext {
		b.WriteString("\nMore events on the next page.\n")
	}
	return b.String()
}
