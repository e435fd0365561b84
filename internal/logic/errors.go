package logic

import "errors"

var (
	// ErrNotFound is returned when a game or team reference does not exist
	ErrNotFound = errors.New("not found")

	// ErrInsufficientHistory is returned when there are too few games to train on
	ErrInsufficientHistory = errors.New("insufficient game history")
)
