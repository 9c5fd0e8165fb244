package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/maze-runner/game/engine"
	"github.com/wricardo/maze-runner/game/service"
)

// apiClient drives a running maze server over its REST API.
type apiClient struct {
	baseURL string
	client  *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *apiClient) do(ctx context.Context, method, path string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %d %s", method, path, resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}
	if result == nil {
		return nil
	}
	return json.Unmarshal(data, result)
}

func (c *apiClient) createSession(ctx context.Context, opts service.CreateOptions) (*service.SessionInfo, error) {
	var info service.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/api/sessions", opts, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *apiClient) state(ctx context.Context, sessionID string) (*engine.GameState, error) {
	var state engine.GameState
	if err := c.do(ctx, http.MethodGet, "/api/sessions/"+sessionID+"/state", nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *apiClient) bulkMove(ctx context.Context, sessionID string, moves []string) (*service.BulkMoveResult, error) {
	var result service.BulkMoveResult
	body := map[string]interface{}{"moves": moves}
	if err := c.do(ctx, http.MethodPost, "/api/sessions/"+sessionID+"/bulk-move", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// gridFromState rebuilds the maze a client sees from its rendered rows.
func gridFromState(state *engine.GameState) (*engine.Grid, error) {
	cells := make([]engine.Cell, 0, state.Width*state.Height)
	for _, row := range state.Rows {
		for i := 0; i < len(row); i++ {
			if row[i] == engine.Wall.Char() {
				cells = append(cells, engine.Wall)
			} else {
				cells = append(cells, engine.Path)
			}
		}
	}
	return engine.NewGridFromCells(state.Width, state.Height, cells)
}

// wallFollowerRoute walks with the right hand on the wall until it reaches
// the exit. In a perfect maze this always arrives; limit stops it otherwise.
func wallFollowerRoute(g *engine.Grid, start engine.Position, limit int) ([]string, error) {
	// Clockwise order so turning right is +1.
	headings := []string{engine.Up, engine.Right, engine.Down, engine.Left}
	open := func(p engine.Position, dir string) (engine.Position, bool) {
		next, err := p.Offset(dir)
		if err != nil {
			return p, false
		}
		c, ok := g.Get(next.X, next.Y)
		return next, ok && c.Walkable()
	}

	var moves []string
	pos, heading, exit := start, 2, g.Exit()
	for pos != exit {
		if len(moves) >= limit {
			return nil, fmt.Errorf("%w: gave up after %d moves", engine.ErrUnreachable, limit)
		}
		stepped := false
		for _, turn := range []int{1, 0, 3, 2} {
			h := (heading + turn) % 4
			if next, ok := open(pos, headings[h]); ok {
				pos, heading = next, h
				moves = append(moves, headings[h])
				stepped = true
				break
			}
		}
		if !stepped {
			return nil, fmt.Errorf("%w: player is boxed in at %v", engine.ErrUnreachable, pos)
		}
	}
	return moves, nil
}

// shortestRoute converts the shortest path from start into directions.
func shortestRoute(g *engine.Grid, start engine.Position) ([]string, error) {
	route, err := engine.RouteToExit(g, start)
	if err != nil {
		return nil, err
	}
	moves := make([]string, 0, len(route)-1)
	for i := 1; i < len(route); i++ {
		dx, dy := route[i].X-route[i-1].X, route[i].Y-route[i-1].Y
		switch {
		case dx == 1:
			moves = append(moves, engine.Right)
		case dx == -1:
			moves = append(moves, engine.Left)
		case dy == 1:
			moves = append(moves, engine.Down)
		case dy == -1:
			moves = append(moves, engine.Up)
		}
	}
	return moves, nil
}

func playCommand() *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "create a session on a running server and walk it to the exit",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "server", Value: "http://localhost:8080", Usage: "server base URL", Sources: cli.EnvVars("MAZE_SERVER")},
			&cli.StringFlag{Name: "session", Usage: "play an existing session instead of creating one"},
			&cli.IntFlag{Name: "width", Aliases: []string{"W"}, Value: 21, Usage: "maze width for a new session"},
			&cli.IntFlag{Name: "height", Aliases: []string{"H"}, Value: 21, Usage: "maze height for a new session"},
			&cli.Uint64Flag{Name: "seed", Aliases: []string{"s"}, Usage: "seed for a new session"},
			&cli.StringFlag{Name: "strategy", Value: "wall", Usage: "wall (right-hand rule) or shortest"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client := newAPIClient(cmd.String("server"))

			sessionID := cmd.String("session")
			if sessionID == "" {
				opts := service.CreateOptions{Width: int(cmd.Int("width")), Height: int(cmd.Int("height"))}
				if cmd.IsSet("seed") {
					seed := uint64(cmd.Uint64("seed"))
					opts.Seed = &seed
				}
				info, err := client.createSession(ctx, opts)
				if err != nil {
					return err
				}
				sessionID = info.ID
				logrus.WithFields(logrus.Fields{"session": sessionID, "seed": info.Seed}).Info("session created")
			}

			state, err := client.state(ctx, sessionID)
			if err != nil {
				return err
			}
			grid, err := gridFromState(state)
			if err != nil {
				return err
			}

			var moves []string
			switch cmd.String("strategy") {
			case "wall":
				moves, err = wallFollowerRoute(grid, state.PlayerPos, 4*grid.Width()*grid.Height())
			case "shortest":
				moves, err = shortestRoute(grid, state.PlayerPos)
			default:
				return fmt.Errorf("play: unknown strategy %q", cmd.String("strategy"))
			}
			if err != nil {
				return err
			}

			sent := 0
			victory := state.Victory
			for sent < len(moves) && !victory {
				end := min(sent+engine.MaxBulkMoves, len(moves))
				result, err := client.bulkMove(ctx, sessionID, moves[sent:end])
				if err != nil {
					return err
				}
				sent += result.MovesExecuted
				victory = result.GameState != nil && result.GameState.Victory
				logrus.WithFields(logrus.Fields{
					"executed": result.MovesExecuted,
					"stop":     result.StopReasonCode,
				}).Debug("batch sent")
				if !result.Success && !victory {
					return fmt.Errorf("play: batch stopped after %d moves: %s", sent, result.StoppedReason)
				}
			}

			if !victory {
				return fmt.Errorf("play: route ended without reaching the exit")
			}
			fmt.Fprintf(out(cmd), "session %s escaped in %d moves (%s)\n", sessionID, sent, cmd.String("strategy"))
			return nil
		},
	}
}
