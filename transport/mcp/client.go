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

	"github.com/wricardo/maze-runner/game/engine"
	"github.com/wricardo/maze-runner/game/service"
)

// Version is reported to MCP clients during initialization.
const Version = "1.0.0"

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

const instructions = `Maze Runner - MCP Interface

This is a thin client that proxies all requests to the REST API server.

OBJECTIVE:
Walk from the entrance at the top edge to the exit at the bottom edge.
'#' is wall, ' ' is open path, '.' marks the solver's shortest route and
'@' is you. Walls and the grid boundary block movement.

AVAILABLE TOOLS:
- create_maze: Carve a new maze (width, height, optional seed)
- maze_state: Render the maze and player
- move / bulk_move: Walk the maze - requires intent explanation
- reset_player: Return to the entrance
- hint: Next step toward the exit
- solve_maze / clear_solution: Toggle the shortest-route overlay
- regenerate: Carve a fresh maze in the same session
- describe_cell: Inspect one cell
- move_history: View past moves
- list_sessions / get_session: Session management
- list_maps / save_map / load_map / delete_map: Saved maze library

NOTE: The 'intent' parameter on move/bulk_move tools serves as rubber duck debugging - explain your reasoning!`

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Maze Runner",
		Version,
		server.WithToolCapabilities(true),
		server.WithInstructions(instructions),
	)

	c.registerTools()
}

func sessionProp() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func intProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "integer", "description": description}
}

func sessionTool(name, description string) mcp.Tool {
	return mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProp()},
			Required:   []string{"session_id"},
		},
	}
}

func emptyTool(name, description string) mcp.Tool {
	return mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_maze",
		Description: "Carve a new maze and open a session on it. Even dimensions are rounded down to odd.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"width":  intProp(fmt.Sprintf("Grid width (%d-%d)", engine.MinDimension, engine.MaxDimension)),
				"height": intProp(fmt.Sprintf("Grid height (%d-%d)", engine.MinDimension, engine.MaxDimension)),
				"seed":   intProp("Seed for a reproducible maze (optional)"),
			},
			Required: []string{"width", "height"},
		},
	}, c.handleCreateMaze)

	c.mcpServer.AddTool(emptyTool("list_sessions", "List all active maze sessions"), c.handleListSessions)
	c.mcpServer.AddTool(sessionTool("get_session", "Get details of a specific session"), c.handleGetSession)

	// Maze operations
	c.mcpServer.AddTool(sessionTool("maze_state", "Render the maze with the player's position"), c.handleMazeState)
	c.mcpServer.AddTool(sessionTool("solve_maze", "Overlay the shortest entrance-to-exit route on the maze"), c.handleSolve)
	c.mcpServer.AddTool(sessionTool("clear_solution", "Remove the solution overlay"), c.handleClearSolution)
	c.mcpServer.AddTool(sessionTool("hint", "Suggest the next step from the player toward the exit"), c.handleHint)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "regenerate",
		Description: "Carve a new maze of the same size in this session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"seed":       intProp("Seed for a reproducible maze (optional)"),
			},
			Required: []string{"session_id"},
		},
	}, c.handleRegenerate)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Get detailed information about a specific cell: wall, path or solution, and whether it is the entrance, exit or player position.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"x":          intProp("X coordinate (column), 0-based"),
				"y":          intProp("Y coordinate (row), 0-based"),
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleDescribeCell)

	// Player operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move the player one cell",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        engine.Directions,
					"description": "Direction to move",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Return to the entrance before moving",
				},
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_move",
		Description: fmt.Sprintf("Execute up to %d moves in sequence, stopping at the first blocked one", engine.MaxBulkMoves),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"moves": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
						"enum": engine.Directions,
					},
					"description": "Array of moves",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this sequence of moves (serves as a rubber duck to help explain your reasoning)",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Return to the entrance before moving",
				},
			},
			Required: []string{"session_id", "moves"},
		},
	}, c.handleBulkMove)

	c.mcpServer.AddTool(sessionTool("reset_player", "Return the player to the entrance"), c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get move history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"page":       intProp("Page number"),
				"limit":      intProp("Items per page"),
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	// Map library
	c.mcpServer.AddTool(emptyTool("list_maps", "List saved mazes"), c.handleListMaps)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "save_map",
		Description: "Save the session's maze (including any solution overlay) to the library",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Map name (letters, digits, '-' or '_'); omitted picks mapN",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleSaveMap)

	nameTool := func(name, description string) mcp.Tool {
		return mcp.Tool{
			Name:        name,
			Description: description,
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"name": map[string]interface{}{"type": "string", "description": "Map name"},
				},
				Required: []string{"name"},
			},
		}
	}
	c.mcpServer.AddTool(nameTool("load_map", "Open a new session on a saved maze"), c.handleLoadMap)
	c.mcpServer.AddTool(nameTool("delete_map", "Delete a saved maze"), c.handleDeleteMap)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// ServeStdio serves MCP over stdin/stdout until the input closes.
func (c *Client) ServeStdio() error {
	return server.ServeStdio(c.mcpServer)
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
		var errResp struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	if args, ok := request.Params.Arguments.(map[string]interface{}); ok {
		return args
	}
	return map[string]interface{}{}
}

func stringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return s
}

// intArg reads a JSON number argument. ok is false when it is absent.
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	}
	return 0, false
}

func sessionPath(args map[string]interface{}, suffix string) string {
	return "/api/sessions/" + url.PathEscape(stringArg(args, "session_id")) + suffix
}

// Tool handlers

func (c *Client) handleCreateMaze(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	body := map[string]interface{}{}
	if w, ok := intArg(args, "width"); ok {
		body["width"] = w
	}
	if h, ok := intArg(args, "height"); ok {
		body["height"] = h
	}
	if seed, ok := intArg(args, "seed"); ok && seed >= 0 {
		body["seed"] = seed
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
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
		fmt.Fprintf(&b, "- %s %dx%d seed=%d", s.ID, s.Width, s.Height, s.Seed)
		if s.MapName != "" {
			fmt.Fprintf(&b, " map=%s", s.MapName)
		}
		fmt.Fprintf(&b, " (created %s)\n", s.CreatedAt.Format("15:04:05"))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(arguments(request), ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleMazeState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(arguments(request), "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleSolve(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var result service.SolveResult
	if err := c.apiCall(ctx, "POST", sessionPath(arguments(request), "/solve"), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text := fmt.Sprintf("Shortest route: %d cells from entrance to exit\n\n%s",
		result.Length, formatGameState(result.GameState))
	return mcp.NewToolResultText(text), nil
}

func (c *Client) handleClearSolution(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var state engine.GameState
	if err := c.apiCall(ctx, "DELETE", sessionPath(arguments(request), "/solution"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Solution cleared\n\n" + formatGameState(&state)), nil
}

func (c *Client) handleHint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var hint service.HintResult
	if err := c.apiCall(ctx, "GET", sessionPath(arguments(request), "/hint"), nil, &hint); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text := fmt.Sprintf("%s\nFrom (%d,%d): %d steps by path, %d by straight-line distance",
		hint.Message, hint.From.X, hint.From.Y, hint.StepsToExit, hint.DistanceToExit)
	return mcp.NewToolResultText(text), nil
}

func (c *Client) handleRegenerate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	body := map[string]interface{}{}
	if seed, ok := intArg(args, "seed"); ok && seed >= 0 {
		body["seed"] = seed
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "POST", sessionPath(args, "/generate"), body, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("New maze (seed %d)\n\n%s", state.Seed, formatGameState(&state))), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	x, okX := intArg(args, "x")
	y, okY := intArg(args, "y")
	if !okX || !okY {
		return mcp.NewToolResultError("x and y are required integers"), nil
	}
	if x < 0 || y < 0 {
		return mcp.NewToolResultError(fmt.Sprintf("(%d,%d) is outside the maze", x, y)), nil
	}

	var cell service.CellInfo
	if err := c.apiCall(ctx, "GET", sessionPath(args, fmt.Sprintf("/cells/%d/%d", x, y)), nil, &cell); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatCell(&cell)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	reset, _ := args["reset"].(bool)

	// Intent is for the caller's benefit only
	_ = stringArg(args, "intent")

	body := map[string]interface{}{
		"direction": stringArg(args, "direction"),
		"reset":     reset,
	}

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(args, "/move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleBulkMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	reset, _ := args["reset"].(bool)
	movesRaw, _ := args["moves"].([]interface{})

	moves := make([]string, 0, len(movesRaw))
	for _, m := range movesRaw {
		if s, ok := m.(string); ok {
			moves = append(moves, s)
		}
	}
	if len(moves) == 0 {
		return mcp.NewToolResultError("moves must be a non-empty array of directions"), nil
	}

	body := map[string]interface{}{
		"moves": moves,
		"reset": reset,
	}

	var result service.BulkMoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(args, "/bulk-move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatBulkMoveResult(stringArg(args, "session_id"), &result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Message string           `json:"message"`
		State   engine.GameState `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", sessionPath(arguments(request), "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(response.Message + "\n\n" + formatGameState(&response.State)), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	query := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		query.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		query.Set("limit", fmt.Sprint(limit))
	}
	path := sessionPath(args, "/history")
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListMaps(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var maps []service.MapInfo
	if err := c.apiCall(ctx, "GET", "/api/maps", nil, &maps); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(maps) == 0 {
		return mcp.NewToolResultText("No saved maps"), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Saved Maps (%d):\n\n", len(maps))
	for _, m := range maps {
		solved := ""
		if m.Solved {
			solved = " solved"
		}
		fmt.Fprintf(&b, "- %s %dx%d%s\n", m.Name, m.Width, m.Height, solved)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleSaveMap(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	body := map[string]string{}
	if name := stringArg(args, "name"); name != "" {
		body["name"] = name
	}

	var info service.MapInfo
	if err := c.apiCall(ctx, "POST", sessionPath(args, "/save"), body, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Saved map %s (%dx%d)", info.Name, info.Width, info.Height)), nil
}

func (c *Client) handleLoadMap(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := stringArg(arguments(request), "name")

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/maps/"+url.PathEscape(name)+"/load", nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleDeleteMap(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := stringArg(arguments(request), "name")
	if err := c.apiCall(ctx, "DELETE", "/api/maps/"+url.PathEscape(name), nil, nil); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Deleted map %s", name)), nil
}

// Formatting

func formatSessionInfo(session *service.SessionInfo) string {
	header := fmt.Sprintf("Session: %s\nSize: %dx%d\nSeed: %d\n", session.ID, session.Width, session.Height, session.Seed)
	if session.MapName != "" {
		header += fmt.Sprintf("Map: %s\n", session.MapName)
	}
	if !session.CreatedAt.IsZero() {
		header += fmt.Sprintf("Created: %s\n", session.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return header + "\n" + formatGameState(session.GameState)
}

// renderRows draws the grid rows with the player marked as '@'.
func renderRows(state *engine.GameState) string {
	var b strings.Builder
	for y, row := range state.Rows {
		if y == state.PlayerPos.Y && state.PlayerPos.X >= 0 && state.PlayerPos.X < len(row) {
			b.WriteString(row[:state.PlayerPos.X])
			b.WriteByte('@')
			b.WriteString(row[state.PlayerPos.X+1:])
		} else {
			b.WriteString(row)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Position: (%d,%d) | Exit: (%d,%d) | Visited: %d | Moves: %d\n",
		state.PlayerPos.X, state.PlayerPos.Y, state.Exit.X, state.Exit.Y,
		state.VisitedCount, state.TotalMoves)
	if state.Solved {
		fmt.Fprintf(&b, "Solution overlay: %d cells\n", state.SolutionLength)
	}
	if len(state.PossibleMoves) > 0 {
		fmt.Fprintf(&b, "Possible moves: %s\n", strings.Join(state.PossibleMoves, ","))
	}
	b.WriteString("\n")
	b.WriteString(renderRows(state))

	if state.Victory {
		b.WriteString("\nVICTORY! You reached the exit.")
	}
	if state.Message != "" {
		fmt.Fprintf(&b, "\nMessage: %s", state.Message)
	}
	return b.String()
}

func formatCell(cell *service.CellInfo) string {
	var tags []string
	if cell.Entrance {
		tags = append(tags, "entrance")
	}
	if cell.Exit {
		tags = append(tags, "exit")
	}
	if cell.Player {
		tags = append(tags, "player")
	}
	if cell.Visited {
		tags = append(tags, "visited")
	}
	passable := "impassable"
	if cell.Walkable {
		passable = "passable"
	}
	text := fmt.Sprintf("Cell (%d,%d): %s '%c' (%s)", cell.X, cell.Y, cell.Cell, cell.Cell.Char(), passable)
	if len(tags) > 0 {
		text += " [" + strings.Join(tags, ", ") + "]"
	}
	return text
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	if result.Success {
		b.WriteString("✓ Move successful\n")
	} else {
		b.WriteString("✗ Move failed\n")
	}

	if s := result.Step; s != nil {
		fmt.Fprintf(&b, "Step: %s (%d,%d)→(%d,%d) %s\n", s.Dir, s.From.X, s.From.Y, s.To.X, s.To.Y, s.Cell)
	}
	if a := result.AttemptedTo; a != nil {
		fmt.Fprintf(&b, "Blocked: attempted (%d,%d) %s\n", a.X, a.Y, a.CellType)
	}

	if len(result.Events) > 0 {
		b.WriteString("Events:\n")
		for _, event := range result.Events {
			fmt.Fprintf(&b, "- %s: %s\n", event.Type, event.Message)
		}
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatBulkMoveResult(sessionID string, result *service.BulkMoveResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Session: %s\n", sessionID)
	fmt.Fprintf(&b, "Executed %d/%d moves", result.MovesExecuted, result.RequestedMoves)
	if result.Truncated {
		fmt.Fprintf(&b, " (truncated to %d)", result.Limit)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Start (%d,%d) → End (%d,%d)\n", result.StartPos.X, result.StartPos.Y, result.EndPos.X, result.EndPos.Y)

	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped on move %d [%s]: %s\n", result.StoppedOnMove, result.StopReasonCode, result.StoppedReason)
	}

	if len(result.Steps) > 0 {
		b.WriteString("\nSteps:\n")
		for _, s := range result.Steps {
			status := "✓"
			if !s.Success {
				status = "✗"
			}
			fmt.Fprintf(&b, "%d. %s (%d,%d)→(%d,%d) %s\n", s.Idx, s.Dir, s.From.X, s.From.Y, s.To.X, s.To.Y, status)
		}
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (Page %d/%d, Total: %d):\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	for _, move := range history.Moves {
		status := "✓"
		if !move.Success {
			status = "✗"
		}
		fmt.Fprintf(&b, "%d. %s %s (%d,%d)→(%d,%d)\n",
			move.MoveNumber, status, move.Action,
			move.FromPosition.X, move.FromPosition.Y,
			move.ToPosition.X, move.ToPosition.Y)
	}
	return b.String()
}
