package engine

import (
	"fmt"
	"time"
)

// player tracks the walker inside a maze.
type player struct {
	pos               Position
	visited           map[Position]bool
	moveHistory       []MoveHistoryEntry
	totalMoves        int
	currentMovesCount int
	victory           bool
	message           string
}

func newPlayer(start Position) *player {
	return &player{
		pos:         start,
		visited:     map[Position]bool{start: true},
		moveHistory: []MoveHistoryEntry{},
	}
}

// CanMoveTo checks if the player can step onto the specified coordinates
func (e *MazeEngine) CanMoveTo(x, y int) bool {
	c, ok := e.grid.Get(x, y)
	return ok && c.Walkable()
}

// movePlayer attempts to move the player in the specified direction
func (e *MazeEngine) movePlayer(direction string) bool {
	p := e.player
	if p.victory {
		p.message = "Maze already completed. Reset to play again."
		return false
	}

	target, err := p.pos.Offset(direction)
	if err != nil {
		p.message = fmt.Sprintf("Unknown direction %q. Use up, down, left or right.", direction)
		return false
	}

	if !e.CanMoveTo(target.X, target.Y) {
		obstacle := "boundary"
		if c, ok := e.grid.Get(target.X, target.Y); ok {
			obstacle = c.String()
		}
		p.message = fmt.Sprintf("Can't move %s: %s at (%d,%d)", direction, obstacle, target.X, target.Y)
		return false
	}

	p.pos = target
	p.visited[target] = true

	if target == e.grid.Exit() {
		p.victory = true
		p.message = fmt.Sprintf("You escaped the maze in %d moves!", p.currentMovesCount+1)
		return true
	}
	p.message = fmt.Sprintf("Moved %s to (%d,%d)", direction, target.X, target.Y)
	return true
}

// addMoveToHistory adds a move to the cumulative history and the current segment counter
func (p *player) addMoveToHistory(action string, from, to Position, success bool) {
	p.moveHistory = append(p.moveHistory, MoveHistoryEntry{
		Action:       action,
		FromPosition: from,
		ToPosition:   to,
		Timestamp:    time.Now().Unix(),
		Success:      success,
		MoveNumber:   p.totalMoves + 1,
	})
	p.totalMoves++
	p.currentMovesCount++
}
