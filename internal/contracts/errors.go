package contracts

import "errors"

// Error taxonomy. None of these is fatal to a run: every one degrades a
// single symbol or a single report section
var (
	// ErrUnavailable marks an upstream call that failed or returned
	// unusable data for a symbol
	ErrUnavailable = errors.New("upstream data unavailable")

	// ErrInsufficientHistory marks a series shorter than the longest
	// window the active policy needs
	ErrInsufficientHistory = errors.New("insufficient price history")
)
