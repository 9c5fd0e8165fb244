// Package mcp exposes the maze runner to AI agents over the Model Context
// Protocol.
//
// Client is a thin proxy: every tool call becomes a request against the REST
// API, so agents see exactly the state that browsers and HTTP clients see.
// Tool output is plain text with the maze rendered row by row ('#' wall,
// ' ' path, '.' solution, '@' player).
//
// Tools:
//   - create_maze, list_sessions, get_session
//   - maze_state, solve_maze, clear_solution, hint, regenerate, describe_cell
//   - move, bulk_move, reset_player, move_history
//   - list_maps, save_map, load_map, delete_map
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := client.ServeStdio(); err != nil {
//		log.Fatal(err)
//	}
//
// The server binary also mounts the same MCP server on POST /mcp.
package mcp
