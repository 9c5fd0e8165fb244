package service

import (
	"context"
	"sync"
	"time"

	"github.com/wricardo/maze-runner/game/engine"
)

// GameService defines all maze-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, opts CreateOptions) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Maze Operations
	Regenerate(ctx context.Context, sessionID string, seed *uint64) (*engine.GameState, error)
	Solve(ctx context.Context, sessionID string) (*SolveResult, error)
	ClearSolution(ctx context.Context, sessionID string) (*engine.GameState, error)
	CellAt(ctx context.Context, sessionID string, x, y int) (*CellInfo, error)
	Hint(ctx context.Context, sessionID string) (*HintResult, error)

	// Game Operations
	Move(ctx context.Context, sessionID, direction string, reset bool) (*MoveResult, error)
	BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*BulkMoveResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Map Library
	ListMaps(ctx context.Context) ([]*MapInfo, error)
	SaveMap(ctx context.Context, sessionID, name string) (*MapInfo, error)
	LoadMap(ctx context.Context, name string) (*SessionInfo, error)
	DeleteMap(ctx context.Context, name string) error
	ExportMap(ctx context.Context, name string) ([]byte, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, maze *engine.MazeEngine, mapName string) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	Save(id string) error
}

// MapLibrary stores named mazes on disk
type MapLibrary interface {
	List() ([]*MapInfo, error)
	Load(name string) (*engine.Grid, error)
	Save(name string, grid *engine.Grid) (*MapInfo, error)
	Delete(name string) error
	Exists(name string) bool
	NextDefaultName() (string, error)
	Export(name string) ([]byte, error)
}

// Session represents an active maze session
type Session struct {
	ID             string
	Engine         *engine.MazeEngine
	MapName        string
	CreatedAt      time.Time
	LastAccessedAt time.Time // guarded by mu

	// mu serialises operations on Engine and LastAccessedAt.
	mu sync.Mutex
}

// Lock acquires exclusive access to the session's engine.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the lock taken by Lock.
func (s *Session) Unlock() { s.mu.Unlock() }
