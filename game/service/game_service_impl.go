package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wricardo/maze-runner/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	maps     MapLibrary
	log      logrus.FieldLogger
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, maps MapLibrary) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		maps:     maps,
		log:      logrus.StandardLogger().WithField("component", "service"),
	}
}

// withSession runs fn while holding the session lock. Persisting happens
// afterwards so the session manager can take the lock itself.
func (s *gameServiceImpl) withSession(sessionID string, fn func(sess *Session) error) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	sess.Lock()
	defer sess.Unlock()
	sess.LastAccessedAt = time.Now()
	if err := fn(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *gameServiceImpl) persist(sessionID string) {
	if err := s.sessions.Save(sessionID); err != nil {
		s.log.WithError(err).WithField("session", sessionID).Warn("failed to persist session")
	}
}

func sessionInfo(sess *Session) *SessionInfo {
	grid := sess.Engine.Grid()
	return &SessionInfo{
		ID:             sess.ID,
		MapName:        sess.MapName,
		Width:          grid.Width(),
		Height:         grid.Height(),
		Seed:           sess.Engine.Seed(),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState(),
	}
}

// CreateSession carves a new maze and opens a session on it
func (s *gameServiceImpl) CreateSession(ctx context.Context, opts CreateOptions) (*SessionInfo, error) {
	if err := engine.ValidateDimensions(opts.Width, opts.Height); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	seed := rand.Uint64()
	if opts.Seed != nil {
		seed = *opts.Seed
	}

	maze, err := engine.NewEngine(opts.Width, opts.Height, seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", maze, "")
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.log.WithFields(logrus.Fields{
		"session": sess.ID,
		"width":   maze.Grid().Width(),
		"height":  maze.Grid().Height(),
		"seed":    seed,
	}).Info("session created")

	sess.Lock()
	defer sess.Unlock()
	return sessionInfo(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	var info *SessionInfo
	_, err := s.withSession(sessionID, func(sess *Session) error {
		info = sessionInfo(sess)
		return nil
	})
	return info, err
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		sess.Lock()
		result = append(result, sessionInfo(sess))
		sess.Unlock()
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return nil
}

// Regenerate carves a new maze into the session, optionally from a fixed seed
func (s *gameServiceImpl) Regenerate(ctx context.Context, sessionID string, seed *uint64) (*engine.GameState, error) {
	next := rand.Uint64()
	if seed != nil {
		next = *seed
	}
	var state *engine.GameState
	sess, err := s.withSession(sessionID, func(sess *Session) error {
		sess.Engine.Regenerate(next)
		sess.MapName = ""
		state = sess.Engine.GetState()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.persist(sess.ID)
	return state, nil
}

// Solve overlays the shortest route on the session's maze
func (s *gameServiceImpl) Solve(ctx context.Context, sessionID string) (*SolveResult, error) {
	var result *SolveResult
	sess, err := s.withSession(sessionID, func(sess *Session) error {
		route, err := sess.Engine.Solve()
		if err != nil {
			return err
		}
		result = &SolveResult{
			Solved:    true,
			Length:    len(route),
			Path:      route,
			GameState: sess.Engine.GetState(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.persist(sess.ID)
	return result, nil
}

// ClearSolution removes the solution overlay
func (s *gameServiceImpl) ClearSolution(ctx context.Context, sessionID string) (*engine.GameState, error) {
	var state *engine.GameState
	sess, err := s.withSession(sessionID, func(sess *Session) error {
		sess.Engine.ClearSolution()
		state = sess.Engine.GetState()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.persist(sess.ID)
	return state, nil
}

// CellAt describes a single cell of the session's maze
func (s *gameServiceImpl) CellAt(ctx context.Context, sessionID string, x, y int) (*CellInfo, error) {
	var info *CellInfo
	_, err := s.withSession(sessionID, func(sess *Session) error {
		cell, err := sess.Engine.CellAt(x, y)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		pos := engine.Position{X: x, Y: y}
		grid := sess.Engine.Grid()
		info = &CellInfo{
			X:        x,
			Y:        y,
			Cell:     cell,
			Walkable: cell.Walkable(),
			Visited:  sess.Engine.IsVisited(pos),
			Player:   sess.Engine.GetPlayerPosition() == pos,
			Entrance: grid.Entrance() == pos,
			Exit:     grid.Exit() == pos,
		}
		return nil
	})
	return info, err
}

// Hint suggests the next step from the player's position toward the exit
func (s *gameServiceImpl) Hint(ctx context.Context, sessionID string) (*HintResult, error) {
	var hint *HintResult
	_, err := s.withSession(sessionID, func(sess *Session) error {
		grid := sess.Engine.Grid()
		pos := sess.Engine.GetPlayerPosition()
		hint = &HintResult{
			From:           pos,
			DistanceToExit: engine.ManhattanDistance(pos, grid.Exit()),
		}
		route, err := engine.RouteToExit(grid, pos)
		if err != nil {
			return err
		}
		hint.StepsToExit = len(route) - 1
		if hint.StepsToExit == 0 {
			hint.Message = "You are standing on the exit."
			return nil
		}
		hint.Direction = engine.NextStepToExit(grid, pos)
		hint.Message = fmt.Sprintf("Go %s; %d steps to the exit.", hint.Direction, hint.StepsToExit)
		return nil
	})
	return hint, err
}

// Move executes a single move for a session
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string, reset bool) (*MoveResult, error) {
	direction = strings.ToLower(strings.TrimSpace(direction))

	var result *MoveResult
	sess, err := s.withSession(sessionID, func(sess *Session) error {
		events := []GameEvent{}
		if reset {
			sess.Engine.Reset()
			events = append(events, GameEvent{
				Type:      "reset",
				Message:   "Player returned to the entrance",
				Timestamp: time.Now(),
			})
		}

		step, attempt, success := s.step(sess, 1, direction)
		state := sess.Engine.GetState()
		result = &MoveResult{
			Success:     success,
			GameState:   state,
			Message:     state.Message,
			Events:      append(events, stepEvents(step, state)...),
			AttemptedTo: attempt,
		}
		if success {
			result.Step = &step
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.persist(sess.ID)
	return result, nil
}

// BulkMove executes multiple moves in sequence, stopping at the first blocked move
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*BulkMoveResult, error) {
	var result *BulkMoveResult
	sess, err := s.withSession(sessionID, func(sess *Session) error {
		result = &BulkMoveResult{
			RequestedMoves: len(moves),
			Events:         make([]GameEvent, 0),
			Success:        true,
		}

		if reset {
			sess.Engine.Reset()
			result.Events = append(result.Events, GameEvent{
				Type:      "reset",
				Message:   "Player returned to the entrance",
				Timestamp: time.Now(),
			})
		}
		result.StartPos = sess.Engine.GetPlayerPosition()

		// Limit moves to prevent abuse
		if len(moves) > engine.MaxBulkMoves {
			result.Truncated = true
			result.Limit = engine.MaxBulkMoves
			moves = moves[:engine.MaxBulkMoves]
		}

		for i, move := range moves {
			if sess.Engine.IsVictory() {
				result.StoppedReason = "maze already completed"
				result.StopReasonCode = "victory"
				result.StoppedOnMove = i + 1
				break
			}

			direction := strings.ToLower(strings.TrimSpace(move))
			step, attempt, success := s.step(sess, i+1, direction)
			result.Steps = append(result.Steps, step)
			if !success {
				result.Success = false
				result.StoppedOnMove = i + 1
				result.AttemptedTo = attempt
				switch {
				case attempt == nil:
					result.StopReasonCode = "invalid_direction"
					result.StoppedReason = fmt.Sprintf("move %d: unknown direction %q", i+1, move)
				case attempt.CellType == "boundary":
					result.StopReasonCode = "blocked_boundary"
					result.StoppedReason = fmt.Sprintf("move %d blocked: %s leaves the maze", i+1, direction)
				default:
					result.StopReasonCode = "blocked_wall"
					result.StoppedReason = fmt.Sprintf("move %d blocked: wall at (%d,%d)", i+1, attempt.X, attempt.Y)
				}
				break
			}
			result.MovesExecuted++
			result.Events = append(result.Events, stepEvents(step, nil)...)
		}

		state := sess.Engine.GetState()
		result.GameState = state
		result.EndPos = state.PlayerPos
		result.Victory = state.Victory
		result.Message = state.Message
		result.PossibleMoves = state.PossibleMoves
		if state.Victory && result.MovesExecuted > 0 {
			result.Events = append(result.Events, GameEvent{
				Type:      "victory",
				Message:   state.Message,
				Timestamp: time.Now(),
				Position:  state.PlayerPos,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.persist(sess.ID)
	return result, nil
}

// step performs one move and describes it. attempt is non-nil only for a
// blocked move in a valid direction.
func (s *gameServiceImpl) step(sess *Session, idx int, direction string) (StepInfo, *AttemptInfo, bool) {
	from := sess.Engine.GetPlayerPosition()
	target, dirErr := from.Offset(direction)
	newVisit := dirErr == nil && !sess.Engine.IsVisited(target)

	success := sess.Engine.Move(direction)
	to := sess.Engine.GetPlayerPosition()
	cell, _ := sess.Engine.Grid().Get(to.X, to.Y)

	info := StepInfo{
		Idx:      idx,
		Dir:      direction,
		From:     from,
		To:       to,
		Cell:     cell,
		Success:  success,
		NewVisit: success && newVisit,
		Victory:  success && sess.Engine.IsVictory(),
	}
	if success || dirErr != nil {
		return info, nil, success
	}
	return info, attemptInfo(sess.Engine.Grid(), target), false
}

func attemptInfo(grid *engine.Grid, target engine.Position) *AttemptInfo {
	c, ok := grid.Get(target.X, target.Y)
	if !ok {
		return &AttemptInfo{X: target.X, Y: target.Y, CellType: "boundary"}
	}
	return &AttemptInfo{X: target.X, Y: target.Y, CellType: c.String(), Passable: c.Walkable()}
}

// stepEvents generates events from a move
func stepEvents(step StepInfo, state *engine.GameState) []GameEvent {
	if !step.Success {
		return nil
	}
	events := []GameEvent{{
		Type:      "move",
		Message:   fmt.Sprintf("Moved %s to (%d,%d)", step.Dir, step.To.X, step.To.Y),
		Timestamp: time.Now(),
		Position:  step.To,
	}}
	if step.NewVisit {
		events = append(events, GameEvent{
			Type:      "visit",
			Message:   fmt.Sprintf("First visit to (%d,%d)", step.To.X, step.To.Y),
			Timestamp: time.Now(),
			Position:  step.To,
		})
	}
	if step.Victory && state != nil {
		events = append(events, GameEvent{
			Type:      "victory",
			Message:   state.Message,
			Timestamp: time.Now(),
			Position:  step.To,
		})
	}
	return events
}

// Reset returns the player to the entrance
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	var state *engine.GameState
	sess, err := s.withSession(sessionID, func(sess *Session) error {
		state = sess.Engine.Reset()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.persist(sess.ID)
	return state, nil
}

// GetGameState returns the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	var state *engine.GameState
	_, err := s.withSession(sessionID, func(sess *Session) error {
		state = sess.Engine.GetState()
		return nil
	})
	return state, err
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	var history []engine.MoveHistoryEntry
	_, err := s.withSession(sessionID, func(sess *Session) error {
		src := sess.Engine.GetMoveHistory()
		history = make([]engine.MoveHistoryEntry, len(src))
		copy(history, src)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit < 1 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if strings.EqualFold(opts.Order, "desc") {
		for l, r := 0, len(history)-1; l < r; l, r = l+1, r-1 {
			history[l], history[r] = history[r], history[l]
		}
	}

	total := len(history)
	totalPages := (total + opts.Limit - 1) / opts.Limit
	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return &HistoryResponse{
		Moves:       history[start:end],
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListMaps returns the saved mazes
func (s *gameServiceImpl) ListMaps(ctx context.Context) ([]*MapInfo, error) {
	return s.maps.List()
}

// SaveMap writes the session's maze (including any solution overlay) to the
// library. An empty name picks the next free default name.
func (s *gameServiceImpl) SaveMap(ctx context.Context, sessionID, name string) (*MapInfo, error) {
	if name == "" {
		next, err := s.maps.NextDefaultName()
		if err != nil {
			return nil, err
		}
		name = next
	}

	var grid *engine.Grid
	sess, err := s.withSession(sessionID, func(sess *Session) error {
		grid = sess.Engine.Grid().Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	info, err := s.maps.Save(name, grid)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	sess.MapName = info.Name
	sess.Unlock()
	s.persist(sess.ID)

	s.log.WithFields(logrus.Fields{"session": sess.ID, "map": info.Name}).Info("map saved")
	return info, nil
}

// LoadMap opens a new session on a saved maze
func (s *gameServiceImpl) LoadMap(ctx context.Context, name string) (*SessionInfo, error) {
	grid, err := s.maps.Load(name)
	if err != nil {
		return nil, err
	}
	maze, err := engine.NewEngineFromGrid(grid, 0)
	if err != nil {
		return nil, err
	}
	sess, err := s.sessions.Create("", maze, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.log.WithFields(logrus.Fields{"session": sess.ID, "map": name}).Info("map loaded")

	sess.Lock()
	defer sess.Unlock()
	return sessionInfo(sess), nil
}

// DeleteMap removes a saved maze
func (s *gameServiceImpl) DeleteMap(ctx context.Context, name string) error {
	return s.maps.Delete(name)
}

// ExportMap returns the encoded bytes of a saved maze
func (s *gameServiceImpl) ExportMap(ctx context.Context, name string) ([]byte, error) {
	return s.maps.Export(name)
}

// IsNotFound reports whether err means a session or map does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrMapNotFound)
}
