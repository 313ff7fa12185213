package textsieve

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	sieveerrors "github.com/textsieve/textsieve/errors"
)

const outputBufferSize = 256 << 10

// Sort externally sorts the newline-delimited records of r into w.
// Records are split into bounded in-memory windows, each window stable-sorted
// and sealed to a scratch chunk file, and the chunks k-way merged back into a
// single ordered stream. Output order is fully determined by input content
// and the configured comparison: equal keys keep their original input order
// whatever the window size or merge shape.
//
// All scratch storage lives in a per-run directory that is removed on every
// exit path.
func Sort(ctx context.Context, r io.Reader, w io.Writer, opts ...SortOption) error {
	cfg := defaultSortConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.validate(); err != nil {
		return err
	}
	cmp := comparator{order: cfg.order, numeric: cfg.numeric}

	dir, err := os.MkdirTemp(cfg.tempDir, "extsort-")
	if err != nil {
		return fmt.Errorf("%w: create scratch directory: %v", sieveerrors.ErrChunkStorage, err)
	}
	// Chunks are deleted as they are consumed; the deferred removal sweeps
	// whatever an error path left behind.
	defer os.RemoveAll(dir)

	chunks, err := writeSortedChunks(ctx, NewLineScanner(r), cmp, cfg, dir)
	if err != nil {
		return err
	}

	bw := bufio.NewWriterSize(w, outputBufferSize)
	if err := mergeAll(ctx, chunks, cmp, cfg.maxOpen, dir, &textSink{w: bw}); err != nil {
		return err
	}
	return bw.Flush()
}

// SortFile is Sort over named files. The partially written output is removed
// if the sort fails.
func SortFile(ctx context.Context, inPath, outPath string, opts ...SortOption) error {
	in, err := OpenSequential(inPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}

	if err := Sort(ctx, in, out, opts...); err != nil {
		return errors.Join(err, out.Close(), os.Remove(outPath))
	}
	return out.Close()
}
