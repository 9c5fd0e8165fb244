// Package session provides session management for the maze runner.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Lazy loading of evicted sessions from persistence
//   - File and Redis persistence backends
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// Each service.Session owns its own maze engine together with metadata like
// creation time, last access time and the saved map it was loaded from.
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs for easy reference, compared
// case-insensitively. IDs containing path or key separators are rejected.
//
// Persistence:
//
// FilePersistence writes one JSON document per session into a directory.
// RedisPersistence stores the same document under <prefix>:session:<id> and
// serialises writers with a redsync mutex. In both, the grid is embedded in
// the compact binary form produced by the codec package.
//
// Usage:
//
//	store, err := session.NewFilePersistence("sessions")
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(store)
//
//	maze, _ := engine.NewEngine(21, 11, 42)
//	sess, err := manager.Create("", maze, "")
//
//	// Retrieve existing session
//	sess, err = manager.Get(sess.ID)
//
// Cleanup:
//
// CleanupExpiredSessions evicts idle sessions from memory. Their persisted
// copies remain and are reloaded on the next Get.
package session
