package service

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrMapNotFound     = errors.New("map not found")
	ErrInvalidInput    = errors.New("invalid input")
)
