// Package session provides session management for the maze chase game.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique 4-character session ID generation
//   - One round loop per session, started on creation and stopped on delete
//   - Session persistence to files, Redis or MongoDB
//   - Expiry of idle sessions
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// SessionPersistence is the storage contract; FilePersistence,
// RedisPersistence and MongoPersistence implement it. A stored record
// carries the session's configuration together with its round snapshot, so
// restoring never depends on the config directory.
//
// Concurrency:
//
// The manager guards its session map with a RWMutex. Round state is never
// touched directly: saves take a snapshot through the session's runner, and
// restores build a fresh engine before its runner starts.
//
// Usage:
//
//	store, err := session.NewFilePersistence("sessions")
//	manager := session.NewManagerWithPersistence(store,
//		session.WithNotifier(hub.BroadcastToSession))
//	defer manager.Close()
//
//	sess, err := manager.Create(ctx, "", "classic", cfg)
package session
