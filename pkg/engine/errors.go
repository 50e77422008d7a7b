package engine

import "errors"

var (
	// ErrNoSurface is returned by New when no surface is supplied. A missing
	// surface is engine misuse, so it fails hard at construction time.
	ErrNoSurface = errors.New("engine: surface is required")

	// ErrNoSchema is returned by operations invoked before a schema loaded.
	ErrNoSchema = errors.New("engine: no schema loaded")

	// ErrBusy is returned when an operation arrives while a submission is
	// outstanding; interactive controls are disabled during that window.
	ErrBusy = errors.New("engine: submission in progress")
)
