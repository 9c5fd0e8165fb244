// Package service provides the business logic layer for the maze runner.
//
// The service package implements:
//   - Multi-session maze management
//   - Generation, solving and cell inspection per session
//   - Move processing and validation
//   - The saved-map library (save, load, list, delete, export)
//   - Move history tracking
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// MapLibrary stores named mazes in the codec format.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the maze engine. Every operation on a session runs under that session's
// lock and mutations are persisted through the SessionManager afterwards.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	maps, _ := library.NewLibrary("maps")
//	gameService := service.NewGameService(sessionMgr, maps)
//
//	info, err := gameService.CreateSession(ctx, service.CreateOptions{Width: 21, Height: 11})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Move(ctx, info.ID, "right", false)
//	solved, err := gameService.Solve(ctx, info.ID)
//	saved, err := gameService.SaveMap(ctx, info.ID, "")
//
// Errors:
//
// Missing sessions and maps wrap ErrSessionNotFound and ErrMapNotFound; bad
// dimensions, coordinates and names wrap ErrInvalidInput. A maze without a
// route from entrance to exit makes Solve fail with engine.ErrUnreachable.
package service
