// Package errors defines all exported error sentinels for the textsieve module.
//
// This is the single source of truth for error values. Both the top-level
// textsieve package and the CLI import from here, ensuring errors.Is checks
// work across package boundaries.
package errors

import "errors"

// Configuration errors: invalid parameters, reported before any work starts.
var (
	ErrExpectedItems     = errors.New("textsieve: expected items must be positive")
	ErrFalsePositiveRate = errors.New("textsieve: false positive rate must be in the open interval (0, 1)")
	ErrSampleSize        = errors.New("textsieve: sample size must be positive")
	ErrColumnIndex       = errors.New("textsieve: column index must be non-negative")
	ErrChunkWindow       = errors.New("textsieve: chunk window must hold at least one line")
)

// Resource errors: temporary chunk storage and handle limits.
var (
	ErrChunkStorage   = errors.New("textsieve: chunk storage failure")
	ErrOpenChunkLimit = errors.New("textsieve: max open chunks must be at least 2")
)

// Chunk format errors: a sealed chunk failed integrity checks when read back.
var (
	ErrChunkMagic     = errors.New("textsieve: invalid chunk magic")
	ErrChunkTruncated = errors.New("textsieve: chunk file is truncated")
	ErrChunkChecksum  = errors.New("textsieve: chunk checksum verification failed")
)

// Parse errors: malformed input in the stats column scan. Fatal for the run,
// never silently skipped.
var (
	ErrNotNumeric    = errors.New("textsieve: non-numeric value in selected column")
	ErrMissingColumn = errors.New("textsieve: line has no field at selected column")
)
