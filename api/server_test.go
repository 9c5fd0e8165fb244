package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/wricardo/maze-runner/game/codec"
	"github.com/wricardo/maze-runner/game/engine"
	"github.com/wricardo/maze-runner/game/library"
	"github.com/wricardo/maze-runner/game/service"
	"github.com/wricardo/maze-runner/game/session"
	"github.com/wricardo/maze-runner/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	// Session Management
	CreateSessionFunc func(ctx context.Context, opts service.CreateOptions) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	// Maze Operations
	RegenerateFunc    func(ctx context.Context, sessionID string, seed *uint64) (*engine.GameState, error)
	SolveFunc         func(ctx context.Context, sessionID string) (*service.SolveResult, error)
	ClearSolutionFunc func(ctx context.Context, sessionID string) (*engine.GameState, error)
	CellAtFunc        func(ctx context.Context, sessionID string, x, y int) (*service.CellInfo, error)
	HintFunc          func(ctx context.Context, sessionID string) (*service.HintResult, error)

	// Game Operations
	MoveFunc     func(ctx context.Context, sessionID, direction string, reset bool) (*service.MoveResult, error)
	BulkMoveFunc func(ctx context.Context, sessionID string, moves []string, reset bool) (*service.BulkMoveResult, error)
	ResetFunc    func(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameStateFunc   func(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetMoveHistoryFunc func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error)

	// Map Library
	ListMapsFunc  func(ctx context.Context) ([]*service.MapInfo, error)
	SaveMapFunc   func(ctx context.Context, sessionID, name string) (*service.MapInfo, error)
	LoadMapFunc   func(ctx context.Context, name string) (*service.SessionInfo, error)
	DeleteMapFunc func(ctx context.Context, name string) error
	ExportMapFunc func(ctx context.Context, name string) ([]byte, error)
}

func (m *MockGameService) CreateSession(ctx context.Context, opts service.CreateOptions) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, opts)
	}
	return &service.SessionInfo{ID: "test-session", Width: opts.Width, Height: opts.Height, CreatedAt: time.Now()}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{ID: sessionID, CreatedAt: time.Now()}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockGameService) Regenerate(ctx context.Context, sessionID string, seed *uint64) (*engine.GameState, error) {
	if m.RegenerateFunc != nil {
		return m.RegenerateFunc(ctx, sessionID, seed)
	}
	return &engine.GameState{}, nil
}

func (m *MockGameService) Solve(ctx context.Context, sessionID string) (*service.SolveResult, error) {
	if m.SolveFunc != nil {
		return m.SolveFunc(ctx, sessionID)
	}
	return &service.SolveResult{Solved: true, GameState: &engine.GameState{Solved: true}}, nil
}

func (m *MockGameService) ClearSolution(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.ClearSolutionFunc != nil {
		return m.ClearSolutionFunc(ctx, sessionID)
	}
	return &engine.GameState{}, nil
}

func (m *MockGameService) CellAt(ctx context.Context, sessionID string, x, y int) (*service.CellInfo, error) {
	if m.CellAtFunc != nil {
		return m.CellAtFunc(ctx, sessionID, x, y)
	}
	return &service.CellInfo{X: x, Y: y}, nil
}

func (m *MockGameService) Hint(ctx context.Context, sessionID string) (*service.HintResult, error) {
	if m.HintFunc != nil {
		return m.HintFunc(ctx, sessionID)
	}
	return &service.HintResult{}, nil
}

func (m *MockGameService) Move(ctx context.Context, sessionID, direction string, reset bool) (*service.MoveResult, error) {
	if m.MoveFunc != nil {
		return m.MoveFunc(ctx, sessionID, direction, reset)
	}
	return &service.MoveResult{Success: true, GameState: &engine.GameState{}}, nil
}

func (m *MockGameService) BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*service.BulkMoveResult, error) {
	if m.BulkMoveFunc != nil {
		return m.BulkMoveFunc(ctx, sessionID, moves, reset)
	}
	return &service.BulkMoveResult{Success: true, GameState: &engine.GameState{}}, nil
}

func (m *MockGameService) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.ResetFunc != nil {
		return m.ResetFunc(ctx, sessionID)
	}
	return &engine.GameState{}, nil
}

func (m *MockGameService) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.GetGameStateFunc != nil {
		return m.GetGameStateFunc(ctx, sessionID)
	}
	return &engine.GameState{}, nil
}

func (m *MockGameService) GetMoveHistory(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
	if m.GetMoveHistoryFunc != nil {
		return m.GetMoveHistoryFunc(ctx, sessionID, opts)
	}
	return &service.HistoryResponse{
		Moves:      []engine.MoveHistoryEntry{},
		Page:       opts.Page,
		PageSize:   opts.Limit,
		TotalPages: 1,
	}, nil
}

func (m *MockGameService) ListMaps(ctx context.Context) ([]*service.MapInfo, error) {
	if m.ListMapsFunc != nil {
		return m.ListMapsFunc(ctx)
	}
	return nil, nil
}

func (m *MockGameService) SaveMap(ctx context.Context, sessionID, name string) (*service.MapInfo, error) {
	if m.SaveMapFunc != nil {
		return m.SaveMapFunc(ctx, sessionID, name)
	}
	return &service.MapInfo{Name: name}, nil
}

func (m *MockGameService) LoadMap(ctx context.Context, name string) (*service.SessionInfo, error) {
	if m.LoadMapFunc != nil {
		return m.LoadMapFunc(ctx, name)
	}
	return &service.SessionInfo{ID: "loaded", MapName: name}, nil
}

func (m *MockGameService) DeleteMap(ctx context.Context, name string) error {
	if m.DeleteMapFunc != nil {
		return m.DeleteMapFunc(ctx, name)
	}
	return nil
}

func (m *MockGameService) ExportMap(ctx context.Context, name string) ([]byte, error) {
	if m.ExportMapFunc != nil {
		return m.ExportMapFunc(ctx, name)
	}
	return []byte{}, nil
}

// Test helpers
func setupTestServer(t *testing.T, mockService service.GameService) *Server {
	t.Helper()
	hub := websocket.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return NewServer(mockService, hub)
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
}

func do(t *testing.T, server *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest(method, path, body))
	return w
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: abcd", service.ErrSessionNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: x", service.ErrMapNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: width", service.ErrInvalidInput), http.StatusBadRequest},
		{library.ErrInvalidName, http.StatusBadRequest},
		{engine.ErrUnreachable, http.StatusUnprocessableEntity},
		{&codec.CorruptError{Reason: codec.ErrTruncated}, http.StatusUnprocessableEntity},
		{fmt.Errorf("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

// Session Management Tests

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:        "Create session with dimensions and seed",
			requestBody: map[string]interface{}{"width": 21, "height": 11, "seed": 42},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, opts service.CreateOptions) (*service.SessionInfo, error) {
					if opts.Width != 21 || opts.Height != 11 || opts.Seed == nil || *opts.Seed != 42 {
						t.Errorf("Unexpected options %+v", opts)
					}
					return &service.SessionInfo{ID: "ab12", Width: 21, Height: 11, Seed: 42}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ID != "ab12" || resp.Seed != 42 {
					t.Errorf("Unexpected session %+v", resp)
				}
			},
		},
		{
			name:        "Invalid dimensions",
			requestBody: map[string]int{"width": 2, "height": 2},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, opts service.CreateOptions) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("%w: width too small", service.ErrInvalidInput)
				}
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Malformed body",
			requestBody:    "not an object",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Handle service error",
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, opts service.CreateOptions) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("service error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]interface{}
				parseResponse(t, w, &resp)
				if resp["error"] != "service error" {
					t.Errorf("Expected error message 'service error', got %v", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			w := do(t, setupTestServer(t, mockService), "POST", "/api/sessions", tt.requestBody)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestListSessions(t *testing.T) {
	now := time.Now()
	mockService := &MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "old", CreatedAt: now.Add(-2 * time.Hour), LastAccessedAt: now},
				{ID: "new", CreatedAt: now, LastAccessedAt: now.Add(-time.Hour)},
			}, nil
		},
	}
	server := setupTestServer(t, mockService)

	tests := []struct {
		query     string
		wantFirst string
		wantCount int
	}{
		{"", "old", 2},
		{"?sort=created", "new", 2},
		{"?sort=created&order=asc", "old", 2},
		{"?limit=1", "old", 1},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := do(t, server, "GET", "/api/sessions"+tt.query, nil)
			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}
			var resp struct {
				Count    int                    `json:"count"`
				Total    int                    `json:"total"`
				Sessions []*service.SessionInfo `json:"sessions"`
			}
			parseResponse(t, w, &resp)
			if resp.Count != tt.wantCount || resp.Total != 2 {
				t.Errorf("Expected count %d of 2, got %d of %d", tt.wantCount, resp.Count, resp.Total)
			}
			if resp.Sessions[0].ID != tt.wantFirst {
				t.Errorf("Expected %s first, got %s", tt.wantFirst, resp.Sessions[0].ID)
			}
		})
	}
}

func TestGetAndDeleteSession(t *testing.T) {
	mockService := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			if sessionID != "ab12" {
				return nil, fmt.Errorf("%w: %s", service.ErrSessionNotFound, sessionID)
			}
			return &service.SessionInfo{ID: sessionID, Width: 5, Height: 5}, nil
		},
		DeleteSessionFunc: func(ctx context.Context, sessionID string) error {
			if sessionID != "ab12" {
				return service.ErrSessionNotFound
			}
			return nil
		},
	}
	server := setupTestServer(t, mockService)

	if w := do(t, server, "GET", "/api/sessions/ab12", nil); w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
	if w := do(t, server, "GET", "/api/sessions/zz99", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
	if w := do(t, server, "DELETE", "/api/sessions/ab12", nil); w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
	if w := do(t, server, "DELETE", "/api/sessions/zz99", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

// Maze Tests

func TestCellAt(t *testing.T) {
	var gotX, gotY int
	mockService := &MockGameService{
		CellAtFunc: func(ctx context.Context, sessionID string, x, y int) (*service.CellInfo, error) {
			gotX, gotY = x, y
			if x > 20 {
				return nil, fmt.Errorf("%w: out of bounds", service.ErrInvalidInput)
			}
			return &service.CellInfo{X: x, Y: y, Cell: engine.Path, Walkable: true}, nil
		},
	}
	server := setupTestServer(t, mockService)

	w := do(t, server, "GET", "/api/sessions/ab12/cells/3/7", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if gotX != 3 || gotY != 7 {
		t.Errorf("Expected (3,7), got (%d,%d)", gotX, gotY)
	}
	var cell service.CellInfo
	parseResponse(t, w, &cell)
	if cell.Cell != engine.Path || !cell.Walkable {
		t.Errorf("Unexpected cell %+v", cell)
	}

	if w := do(t, server, "GET", "/api/sessions/ab12/cells/99/0", nil); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
	if w := do(t, server, "GET", "/api/sessions/ab12/cells/-1/0", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unmatched route, got %d", w.Code)
	}
}

func TestGenerate(t *testing.T) {
	var gotSeed *uint64
	mockService := &MockGameService{
		RegenerateFunc: func(ctx context.Context, sessionID string, seed *uint64) (*engine.GameState, error) {
			gotSeed = seed
			return &engine.GameState{Seed: 9}, nil
		},
	}
	server := setupTestServer(t, mockService)

	if w := do(t, server, "POST", "/api/sessions/ab12/generate", map[string]uint64{"seed": 9}); w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if gotSeed == nil || *gotSeed != 9 {
		t.Errorf("Expected seed 9, got %v", gotSeed)
	}

	if w := do(t, server, "POST", "/api/sessions/ab12/generate", nil); w.Code != http.StatusOK {
		t.Fatalf("Expected 200 without body, got %d", w.Code)
	}
	if gotSeed != nil {
		t.Error("Expected nil seed without body")
	}
}

func TestSolve(t *testing.T) {
	tests := []struct {
		name           string
		solveErr       error
		expectedStatus int
	}{
		{"solved", nil, http.StatusOK},
		{"unreachable", engine.ErrUnreachable, http.StatusUnprocessableEntity},
		{"missing session", service.ErrSessionNotFound, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{
				SolveFunc: func(ctx context.Context, sessionID string) (*service.SolveResult, error) {
					if tt.solveErr != nil {
						return nil, tt.solveErr
					}
					return &service.SolveResult{Solved: true, Length: 3, GameState: &engine.GameState{Solved: true}}, nil
				},
			}
			w := do(t, setupTestServer(t, mockService), "POST", "/api/sessions/ab12/solve", nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestClearSolutionAndHint(t *testing.T) {
	cleared := false
	mockService := &MockGameService{
		ClearSolutionFunc: func(ctx context.Context, sessionID string) (*engine.GameState, error) {
			cleared = true
			return &engine.GameState{}, nil
		},
		HintFunc: func(ctx context.Context, sessionID string) (*service.HintResult, error) {
			return &service.HintResult{Direction: "right", StepsToExit: 12}, nil
		},
	}
	server := setupTestServer(t, mockService)

	if w := do(t, server, "DELETE", "/api/sessions/ab12/solution", nil); w.Code != http.StatusOK || !cleared {
		t.Errorf("Expected overlay cleared, got status %d", w.Code)
	}

	w := do(t, server, "GET", "/api/sessions/ab12/hint", nil)
	var hint service.HintResult
	parseResponse(t, w, &hint)
	if hint.Direction != "right" || hint.StepsToExit != 12 {
		t.Errorf("Unexpected hint %+v", hint)
	}
}

// Player Tests

func TestMove(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		setupMock      func(*MockGameService)
		expectedStatus int
	}{
		{
			name: "successful move",
			body: map[string]interface{}{"direction": "right", "reset": true},
			setupMock: func(m *MockGameService) {
				m.MoveFunc = func(ctx context.Context, sessionID, direction string, reset bool) (*service.MoveResult, error) {
					if direction != "right" || !reset {
						t.Errorf("Unexpected move %q reset=%v", direction, reset)
					}
					return &service.MoveResult{
						Success:   true,
						GameState: &engine.GameState{PlayerPos: engine.Position{X: 2, Y: 0}},
						Step:      &service.StepInfo{Dir: "right", From: engine.Position{X: 1}, To: engine.Position{X: 2}, Success: true},
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "blocked move is still 200",
			body: map[string]string{"direction": "up"},
			setupMock: func(m *MockGameService) {
				m.MoveFunc = func(ctx context.Context, sessionID, direction string, reset bool) (*service.MoveResult, error) {
					return &service.MoveResult{
						GameState:   &engine.GameState{},
						AttemptedTo: &service.AttemptInfo{X: 1, Y: -1, CellType: "boundary"},
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid body",
			body:           "up",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unknown session",
			body: map[string]string{"direction": "up"},
			setupMock: func(m *MockGameService) {
				m.MoveFunc = func(ctx context.Context, sessionID, direction string, reset bool) (*service.MoveResult, error) {
					return nil, service.ErrSessionNotFound
				}
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}
			w := do(t, setupTestServer(t, mockService), "POST", "/api/sessions/ab12/move", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestBulkMove(t *testing.T) {
	mockService := &MockGameService{
		BulkMoveFunc: func(ctx context.Context, sessionID string, moves []string, reset bool) (*service.BulkMoveResult, error) {
			return &service.BulkMoveResult{
				MovesExecuted:  1,
				RequestedMoves: len(moves),
				StopReasonCode: "blocked_wall",
				StoppedOnMove:  2,
				GameState:      &engine.GameState{},
			}, nil
		},
	}
	w := do(t, setupTestServer(t, mockService), "POST", "/api/sessions/ab12/bulk-move",
		map[string]interface{}{"moves": []string{"right", "down", "left"}})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var resp service.BulkMoveResult
	parseResponse(t, w, &resp)
	if resp.RequestedMoves != 3 || resp.StopReasonCode != "blocked_wall" || resp.StoppedOnMove != 2 {
		t.Errorf("Unexpected result %+v", resp)
	}
}

func TestReset(t *testing.T) {
	mockService := &MockGameService{
		ResetFunc: func(ctx context.Context, sessionID string) (*engine.GameState, error) {
			return &engine.GameState{PlayerPos: engine.Position{X: 1, Y: 0}}, nil
		},
	}
	w := do(t, setupTestServer(t, mockService), "POST", "/api/sessions/ab12/reset", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var resp struct {
		State engine.GameState `json:"state"`
	}
	parseResponse(t, w, &resp)
	if resp.State.PlayerPos != (engine.Position{X: 1, Y: 0}) {
		t.Errorf("Unexpected position %v", resp.State.PlayerPos)
	}
}

func TestGetHistory(t *testing.T) {
	var got service.HistoryOptions
	mockService := &MockGameService{
		GetMoveHistoryFunc: func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
			got = opts
			return &service.HistoryResponse{Page: opts.Page, PageSize: opts.Limit}, nil
		},
	}
	server := setupTestServer(t, mockService)

	do(t, server, "GET", "/api/sessions/ab12/history", nil)
	if got.Page != 1 || got.Limit != 20 || got.Order != "desc" {
		t.Errorf("Unexpected defaults %+v", got)
	}

	do(t, server, "GET", "/api/sessions/ab12/history?page=3&limit=5&order=asc", nil)
	if got.Page != 3 || got.Limit != 5 || got.Order != "asc" {
		t.Errorf("Unexpected options %+v", got)
	}

	do(t, server, "GET", "/api/sessions/ab12/history?page=-1&order=sideways", nil)
	if got.Page != 1 || got.Order != "desc" {
		t.Errorf("Invalid values should fall back to defaults, got %+v", got)
	}
}

// Map Library Tests

func TestMaps(t *testing.T) {
	mockService := &MockGameService{
		ListMapsFunc: func(ctx context.Context) ([]*service.MapInfo, error) {
			return []*service.MapInfo{{Name: "map1", Width: 21, Height: 11}}, nil
		},
		ExportMapFunc: func(ctx context.Context, name string) ([]byte, error) {
			if name != "map1" {
				return nil, service.ErrMapNotFound
			}
			return []byte{5, 0, 0, 0, 0, 0, 0, 0}, nil
		},
		SaveMapFunc: func(ctx context.Context, sessionID, name string) (*service.MapInfo, error) {
			if name == "../etc" {
				return nil, library.ErrInvalidName
			}
			return &service.MapInfo{Name: name}, nil
		},
	}
	server := setupTestServer(t, mockService)

	w := do(t, server, "GET", "/api/maps", nil)
	var maps []service.MapInfo
	parseResponse(t, w, &maps)
	if len(maps) != 1 || maps[0].Name != "map1" {
		t.Errorf("Unexpected maps %+v", maps)
	}

	w = do(t, server, "GET", "/api/maps/map1", nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "application/octet-stream" {
		t.Errorf("Expected binary export, got %d %s", w.Code, w.Header().Get("Content-Type"))
	}
	if w.Body.Len() != 8 {
		t.Errorf("Expected 8 bytes, got %d", w.Body.Len())
	}
	if w := do(t, server, "GET", "/api/maps/nope", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}

	if w := do(t, server, "POST", "/api/sessions/ab12/save", map[string]string{"name": "keep"}); w.Code != http.StatusCreated {
		t.Errorf("Expected 201, got %d", w.Code)
	}
	if w := do(t, server, "POST", "/api/sessions/ab12/save", map[string]string{"name": "../etc"}); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}

	w = do(t, server, "POST", "/api/maps/map1/load", nil)
	var info service.SessionInfo
	parseResponse(t, w, &info)
	if w.Code != http.StatusCreated || info.MapName != "map1" {
		t.Errorf("Unexpected load response %d %+v", w.Code, info)
	}

	if w := do(t, server, "DELETE", "/api/maps/map1", nil); w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	w := do(t, setupTestServer(t, &MockGameService{}), "GET", "/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
}

func TestWebSocket(t *testing.T) {
	tests := []struct {
		name           string
		queryParams    string
		setupMock      func(*MockGameService)
		expectedStatus int
	}{
		{
			name:           "Missing session parameter",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Invalid session",
			queryParams: "?session=invalid",
			setupMock: func(m *MockGameService) {
				m.GetSessionFunc = func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
					return nil, service.ErrSessionNotFound
				}
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			w := httptest.NewRecorder()
			setupTestServer(t, mockService).ServeHTTP(w, httptest.NewRequest("GET", "/ws"+tt.queryParams, nil))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

// TestEndToEnd drives the real service stack through the router.
func TestEndToEnd(t *testing.T) {
	maps, err := library.NewLibrary(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	server := setupTestServer(t, service.NewGameService(session.NewManager(), maps))

	w := do(t, server, "POST", "/api/sessions", map[string]interface{}{"width": 11, "height": 9, "seed": 3})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	var info service.SessionInfo
	parseResponse(t, w, &info)

	w = do(t, server, "POST", "/api/sessions/"+info.ID+"/solve", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("solve: %d %s", w.Code, w.Body.String())
	}
	var solved service.SolveResult
	parseResponse(t, w, &solved)
	if !solved.Solved || solved.Path[0] != (engine.Position{X: 1, Y: 0}) || solved.Path[len(solved.Path)-1] != (engine.Position{X: 9, Y: 8}) {
		t.Errorf("Unexpected route %v", solved.Path)
	}

	w = do(t, server, "POST", "/api/sessions/"+info.ID+"/save", map[string]string{"name": "e2e"})
	if w.Code != http.StatusCreated {
		t.Fatalf("save: %d %s", w.Code, w.Body.String())
	}

	w = do(t, server, "GET", "/api/maps/e2e", nil)
	grid, err := codec.Unmarshal(w.Body.Bytes())
	if err != nil {
		t.Fatalf("exported bytes do not decode: %v", err)
	}
	if grid.Width() != 11 || grid.Height() != 9 || grid.Count(engine.Solution) != solved.Length-2 {
		t.Errorf("Unexpected exported grid %dx%d with %d solution cells", grid.Width(), grid.Height(), grid.Count(engine.Solution))
	}

	w = do(t, server, "POST", "/api/maps/e2e/load", nil)
	var loaded service.SessionInfo
	parseResponse(t, w, &loaded)
	if !loaded.GameState.Solved || loaded.ID == info.ID {
		t.Errorf("Expected a new solved session, got %+v", loaded)
	}
}
