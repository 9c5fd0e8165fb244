package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/wricardo/maze-runner/game/codec"
	"github.com/wricardo/maze-runner/game/engine"
	"github.com/wricardo/maze-runner/game/service"
)

// SessionPersistence defines the interface for persisting sessions.
// Implementations take the session lock while snapshotting, so Save must
// not be called by a goroutine that already holds it.
type SessionPersistence interface {
	// Save persists a session to storage
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

const persistedVersion = 1

// PersistedSessionData is the stored form of a session. Grid holds the
// codec encoding, which encoding/json writes as base64.
type PersistedSessionData struct {
	Version        int                `json:"version"`
	ID             string             `json:"id"`
	MapName        string             `json:"map_name,omitempty"`
	Seed           uint64             `json:"seed"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	Grid           []byte             `json:"grid"`
	Player         engine.PlayerState `json:"player"`
}

// marshalSession snapshots a session under its lock.
func marshalSession(sess *service.Session, indent bool) ([]byte, error) {
	if sess == nil {
		return nil, fmt.Errorf("session cannot be nil")
	}

	sess.Lock()
	grid, err := codec.Marshal(sess.Engine.Grid())
	data := PersistedSessionData{
		Version:        persistedVersion,
		ID:             sess.ID,
		MapName:        sess.MapName,
		Seed:           sess.Engine.Seed(),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		Grid:           grid,
		Player:         sess.Engine.PlayerState(),
	}
	sess.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to encode grid: %w", err)
	}

	if indent {
		return json.MarshalIndent(data, "", "  ")
	}
	return json.Marshal(data)
}

// unmarshalSession rebuilds a session and its engine from stored bytes.
func unmarshalSession(raw []byte) (*service.Session, error) {
	var data PersistedSessionData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}
	if data.Version != persistedVersion {
		return nil, fmt.Errorf("unsupported session version %d", data.Version)
	}

	grid, err := codec.Unmarshal(data.Grid)
	if err != nil {
		return nil, fmt.Errorf("failed to decode grid: %w", err)
	}
	maze, err := engine.NewEngineFromGrid(grid, data.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to create maze engine: %w", err)
	}
	if err := maze.RestorePlayer(data.Player); err != nil {
		return nil, fmt.Errorf("failed to restore player: %w", err)
	}

	return &service.Session{
		ID:             data.ID,
		Engine:         maze,
		MapName:        data.MapName,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}, nil
}
