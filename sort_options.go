package textsieve

import sieveerrors "github.com/textsieve/textsieve/errors"

const (
	// defaultChunkLines is the in-memory window size in records.
	defaultChunkLines = 500_000

	// defaultMaxOpenChunks bounds simultaneously open chunk readers during a
	// merge pass. Merges over larger chunk sets run in multiple rounds.
	defaultMaxOpenChunks = 128

	// defaultLineBytes is the assumed average record size when deriving a
	// window from a byte budget without a caller-supplied estimate.
	defaultLineBytes = 64
)

// SortOption is a functional option for configuring an external sort run.
type SortOption func(*sortConfig)

type sortConfig struct {
	order      Order
	numeric    bool
	chunkLines int
	maxOpen    int
	workers    int
	tempDir    string // "" means the system temp directory
}

func defaultSortConfig() *sortConfig {
	return &sortConfig{
		order:      Ascending,
		chunkLines: defaultChunkLines,
		maxOpen:    defaultMaxOpenChunks,
		workers:    1,
	}
}

func (c *sortConfig) validate() error {
	if c.chunkLines < 1 {
		return sieveerrors.ErrChunkWindow
	}
	if c.maxOpen < 2 {
		return sieveerrors.ErrOpenChunkLimit
	}
	if c.workers < 1 {
		c.workers = 1
	}
	return nil
}

// WithReverse sorts in descending order.
func WithReverse() SortOption {
	return func(c *sortConfig) {
		c.order = Descending
	}
}

// WithNumeric orders lines by their parsed float value. Lines that do not
// parse sort after every numeric line.
func WithNumeric() SortOption {
	return func(c *sortConfig) {
		c.numeric = true
	}
}

// WithChunkLines caps how many lines one in-memory sort window holds.
func WithChunkLines(n int) SortOption {
	return func(c *sortConfig) {
		c.chunkLines = n
	}
}

// WithChunkBytes derives the window size from a byte budget and an estimated
// average line length (0 means assume defaultLineBytes).
func WithChunkBytes(budget int64, avgLineBytes int) SortOption {
	return func(c *sortConfig) {
		if avgLineBytes <= 0 {
			avgLineBytes = defaultLineBytes
		}
		n := int(budget / int64(avgLineBytes))
		if n < 1 {
			n = 1
		}
		c.chunkLines = n
	}
}

// WithMaxOpenChunks bounds how many chunk readers a merge pass may hold open
// at once. Must be at least 2.
func WithMaxOpenChunks(n int) SortOption {
	return func(c *sortConfig) {
		c.maxOpen = n
	}
}

// WithWorkers sets the number of concurrent window sort-and-flush workers.
// Peak memory scales with workers × window size; observable output does not
// change.
func WithWorkers(n int) SortOption {
	return func(c *sortConfig) {
		c.workers = n
	}
}

// WithTempDir places the per-run scratch directory under dir instead of the
// system default. The directory must exist and be on a local filesystem.
func WithTempDir(dir string) SortOption {
	return func(c *sortConfig) {
		c.tempDir = dir
	}
}
