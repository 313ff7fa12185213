package textsieve

import (
	"context"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
)

// contextCheckInterval is how often streaming loops poll for cancellation.
const contextCheckInterval = 10_000

// writeSortedChunks consumes the scanner in windows of at most
// cfg.chunkLines records, stable-sorts each window under cmp, and seals it
// into dir. Chunks are returned in creation order, which merging relies on
// for stability.
//
// Windows are handed to an errgroup so sorting and flushing overlap with
// reading the next window; with workers > 1 several windows are in flight at
// once. Ordinals are assigned at read time, before the handoff, so chunk
// creation order is identical however many workers run.
//
// Failed flushes remove their own partial file; completed chunks are left
// for the caller's scratch-directory cleanup.
func writeSortedChunks(ctx context.Context, sc *LineScanner, cmp comparator, cfg *sortConfig, dir string) ([]*chunk, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers)

	var (
		mu     sync.Mutex
		chunks []*chunk
	)
	flush := func(window [][]byte, ordinal int) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slices.SortStableFunc(window, cmp.compare)
			c, err := writeChunk(dir, ordinal, window)
			if err != nil {
				return err
			}
			mu.Lock()
			chunks = append(chunks, c)
			mu.Unlock()
			return nil
		})
	}

	var (
		window  [][]byte
		ordinal int
		counter int
	)
	for sc.Scan() {
		counter++
		if counter >= contextCheckInterval {
			counter = 0
			if err := gctx.Err(); err != nil {
				break
			}
		}
		// The scanner reuses its buffer; the window owns copies.
		window = append(window, append([]byte(nil), sc.Bytes()...))
		if len(window) >= cfg.chunkLines {
			flush(window, ordinal)
			ordinal++
			window = nil
		}
	}
	if len(window) > 0 {
		flush(window, ordinal)
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slices.SortFunc(chunks, func(a, b *chunk) int { return a.ordinal - b.ordinal })
	return chunks, nil
}
