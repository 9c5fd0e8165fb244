// Package websocket pushes maze session updates to browsers.
//
// A central Hub keeps a set of clients per session ID. Each connection gets
// a uuid and two goroutines: readPump keeps the connection alive and answers
// pings, writePump drains the client's send queue. Broadcasts never block the
// caller; a message that does not fit in the hub queue is dropped and a slow
// client whose own queue is full is disconnected.
//
// Outgoing messages are JSON:
//
//	{"session_id": "a1b2", "event": "state_update", "game_state": {...}}
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//	hub.BroadcastToSession("a1b2", state)
package websocket
