package models

import "errors"

// Discovery errors
var (
	ErrNoModelDirs         = errors.New("no model directories configured")
	ErrModelDirUnavailable = errors.New("model directory unavailable")
	ErrNotADirectory       = errors.New("not a directory")
)
