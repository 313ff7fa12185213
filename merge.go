package textsieve

import (
	"bufio"
	"context"
	"errors"
)

// lineSink receives merged records in order. chunkWriter implements it for
// intermediate rounds; textSink implements it for final output.
type lineSink interface {
	append(line []byte) error
}

// textSink writes records back out as newline-terminated text.
type textSink struct {
	w *bufio.Writer
}

func (s *textSink) append(line []byte) error {
	if _, err := s.w.Write(line); err != nil {
		return err
	}
	return s.w.WriteByte('\n')
}

// frontier is one chunk's current unconsumed head line inside the merge
// heap. src is the chunk's position in this merge's input order; it breaks
// ties deterministically, preserving chunk-creation order for equal keys.
type frontier struct {
	line []byte
	src  int
	r    *chunkReader
}

// mergeHeap is an explicit binary heap over chunk frontiers: a min-heap
// under ascending order, a max-heap under descending (the comparator itself
// flips). At most one entry exists per open chunk. Correctness depends on
// the explicit (key, src) ordering, not on any incidental stability.
type mergeHeap struct {
	cmp     comparator
	entries []frontier
}

func (h *mergeHeap) len() int { return len(h.entries) }

func (h *mergeHeap) push(e frontier) {
	h.entries = append(h.entries, e)
	h.up(len(h.entries) - 1)
}

func (h *mergeHeap) pop() frontier {
	n := len(h.entries) - 1
	h.swap(0, n)
	h.down(0, n)
	e := h.entries[n]
	h.entries[n] = frontier{}
	h.entries = h.entries[:n]
	return e
}

func (h *mergeHeap) less(i, j int) bool {
	a, b := &h.entries[i], &h.entries[j]
	if h.cmp.less(a.line, b.line) {
		return true
	}
	if h.cmp.less(b.line, a.line) {
		return false
	}
	return a.src < b.src
}

func (h *mergeHeap) swap(i, j int) {
	h.entries[i], h.entries[j] = h.entries[j], h.entries[i]
}

func (h *mergeHeap) up(j int) {
	for {
		i := (j - 1) / 2 // parent
		if i == j || !h.less(j, i) {
			break
		}
		h.swap(i, j)
		j = i
	}
}

func (h *mergeHeap) down(i, n int) {
	for {
		j1 := 2*i + 1
		if j1 >= n {
			break
		}
		j := j1 // left child
		if j2 := j1 + 1; j2 < n && h.less(j2, j1) {
			j = j2 // right child
		}
		if !h.less(j, i) {
			break
		}
		h.swap(i, j)
		i = j
	}
}

// mergeInto runs one merge pass over chunks, writing the merged sequence to
// sink. The caller guarantees len(chunks) fits the open-handle limit. Each
// chunk's file is released the moment it is fully consumed; on error every
// still-open reader is closed (file removal falls to the scratch-directory
// cleanup).
func mergeInto(ctx context.Context, chunks []*chunk, cmp comparator, sink lineSink) (err error) {
	readers := make([]*chunkReader, 0, len(chunks))
	defer func() {
		for _, r := range readers {
			err = errors.Join(err, r.close())
		}
	}()

	h := &mergeHeap{cmp: cmp, entries: make([]frontier, 0, len(chunks))}
	for src, c := range chunks {
		r, err := openChunk(c)
		if err != nil {
			return err
		}
		readers = append(readers, r)
		line, ok, err := r.next()
		if err != nil {
			return err
		}
		if !ok {
			// Degenerate empty chunk: verified, released, skipped.
			if err := releaseReader(r); err != nil {
				return err
			}
			readers = removeReader(readers, r)
			continue
		}
		h.push(frontier{line: line, src: src, r: r})
	}

	counter := 0
	for h.len() > 0 {
		counter++
		if counter >= contextCheckInterval {
			counter = 0
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		e := h.pop()
		if err := sink.append(e.line); err != nil {
			return err
		}
		line, ok, err := e.r.next()
		if err != nil {
			return err
		}
		if ok {
			h.push(frontier{line: line, src: e.src, r: e.r})
			continue
		}
		if err := releaseReader(e.r); err != nil {
			return err
		}
		readers = removeReader(readers, e.r)
	}
	return nil
}

// releaseReader closes an exhausted reader and deletes its chunk file.
func releaseReader(r *chunkReader) error {
	return errors.Join(r.close(), r.c.remove())
}

func removeReader(readers []*chunkReader, r *chunkReader) []*chunkReader {
	for i, candidate := range readers {
		if candidate == r {
			return append(readers[:i], readers[i+1:]...)
		}
	}
	return readers
}

// mergeAll merges sealed chunks into sink. When the chunk set exceeds
// maxOpen it first runs intermediate rounds: chunks are partitioned into
// groups of maxOpen in creation order, each group merged into a new sealed
// chunk, and the surviving set merged again, so no more than maxOpen readers
// are ever open regardless of input size. A leftover group of one chunk
// passes through a round untouched; new ordinals are assigned in group
// order, which keeps equal-key output in chunk-creation order across rounds.
func mergeAll(ctx context.Context, chunks []*chunk, cmp comparator, maxOpen int, dir string, sink lineSink) error {
	nextOrdinal := len(chunks)
	for len(chunks) > maxOpen {
		var next []*chunk
		for start := 0; start < len(chunks); start += maxOpen {
			group := chunks[start:min(start+maxOpen, len(chunks))]
			if len(group) == 1 {
				next = append(next, group[0])
				continue
			}
			cw, err := newChunkWriter(dir, nextOrdinal)
			if err != nil {
				return err
			}
			nextOrdinal++
			if err := mergeInto(ctx, group, cmp, cw); err != nil {
				return errors.Join(err, cw.abort())
			}
			c, err := cw.seal()
			if err != nil {
				return err
			}
			next = append(next, c)
		}
		chunks = next
	}
	return mergeInto(ctx, chunks, cmp, sink)
}
