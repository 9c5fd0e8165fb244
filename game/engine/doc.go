// Package engine provides the core maze logic for the maze runner.
//
// The engine package implements:
//   - An odd-dimensioned Grid of Wall, Path and Solution cells
//   - Perfect-maze generation with an iterative recursive backtracker
//   - Breadth-first shortest-path solving with a Solution overlay
//   - Structural validation (connectivity, loops)
//   - A player that walks the maze from entrance to exit
//
// Core Types:
//
// Grid stores cells row-major and never panics on out-of-range access:
// Get reports absence and Set ignores the write. The entrance is (1, 0) and
// the exit is (width-2, height-1). Generator owns a seedable *rand.Rand so the
// same seed always carves the same maze. MazeEngine ties a grid, its seed and
// a player together and implements the Engine interface used by the service
// layer.
//
// Usage:
//
//	grid, err := engine.NewGrid(21, 11)
//	if err != nil {
//		log.Fatal(err)
//	}
//	engine.NewSeededGenerator(42).Generate(grid)
//
//	route, err := engine.Solve(grid)
//	if errors.Is(err, engine.ErrUnreachable) {
//		// grid left untouched
//	}
//	fmt.Println(grid)
//
//	maze, _ := engine.NewEngine(21, 11, 42)
//	maze.Move("right")
//	state := maze.GetState()
//
// Game Rules:
//
// The player starts on the entrance and may step onto any Path or Solution
// cell. Reaching the exit wins; further moves are rejected until Reset.
package engine
