// Package api exposes the maze service over HTTP.
//
// Endpoints:
//
// Sessions:
//   - POST   /api/sessions                     create {width, height, seed?}
//   - GET    /api/sessions                     list (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET    /api/sessions/{id}                session info with game state
//   - DELETE /api/sessions/{id}                delete
//
// Maze:
//   - GET    /api/sessions/{id}/state          rendered grid and player
//   - GET    /api/sessions/{id}/cells/{x}/{y}  single cell
//   - GET    /api/sessions/{id}/hint           next step toward the exit
//   - POST   /api/sessions/{id}/generate       carve a new maze {seed?}
//   - POST   /api/sessions/{id}/solve          overlay the shortest route
//   - DELETE /api/sessions/{id}/solution       remove the overlay
//   - POST   /api/sessions/{id}/save           save to the map library {name?}
//
// Player:
//   - POST   /api/sessions/{id}/move           {direction, reset?}
//   - POST   /api/sessions/{id}/bulk-move      {moves: [...], reset?}
//   - POST   /api/sessions/{id}/reset
//   - GET    /api/sessions/{id}/history        ?page=&limit=&order=
//
// Map library:
//   - GET    /api/maps                         saved maps
//   - GET    /api/maps/{name}                  raw encoded bytes
//   - DELETE /api/maps/{name}
//   - POST   /api/maps/{name}/load             open a new session on the map
//
// WebSocket:
//   - GET    /ws?session={id}                  live state updates
//
// Errors are JSON objects {"error": "...", "code": N}. Missing sessions and
// maps are 404, bad input is 400, a maze whose exit cannot be reached or a
// corrupt map file is 422.
package api
