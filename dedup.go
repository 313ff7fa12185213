package textsieve

import (
	"bufio"
	"context"
	"io"
)

// DedupResult summarizes one deduplication pass.
type DedupResult struct {
	LinesRead    uint64
	LinesWritten uint64
}

// DedupApprox streams r to w, keeping each line the filter has (probably)
// not seen before. Output is a subsequence of the input in original order. A
// genuinely repeated line is never emitted twice: its first occurrence is
// added to the filter before any later occurrence is checked. A true first
// occurrence may be dropped with probability bounded by the filter's
// false-positive rate; that is the documented trade, not an error.
//
// The filter is mutated by every kept line and is not reusable across inputs
// unless that sharing is intended.
func DedupApprox(ctx context.Context, r io.Reader, w io.Writer, filter *Filter) (DedupResult, error) {
	return dedupLines(ctx, r, w, func(line []byte) bool {
		if filter.ProbablyContains(line) {
			return false
		}
		filter.Add(line)
		return true
	})
}

// DedupExact streams r to w keeping the first occurrence of every distinct
// line, with no false positives or negatives. Memory grows with the number
// of distinct lines.
func DedupExact(ctx context.Context, r io.Reader, w io.Writer) (DedupResult, error) {
	seen := make(map[string]struct{})
	return dedupLines(ctx, r, w, func(line []byte) bool {
		if _, dup := seen[string(line)]; dup {
			return false
		}
		seen[string(line)] = struct{}{}
		return true
	})
}

// dedupLines is the shared single-pass skeleton: keep decides, per line in
// input order, whether the line is a first occurrence.
func dedupLines(ctx context.Context, r io.Reader, w io.Writer, keep func(line []byte) bool) (DedupResult, error) {
	var res DedupResult
	sc := NewLineScanner(r)
	bw := bufio.NewWriterSize(w, outputBufferSize)

	counter := 0
	for sc.Scan() {
		counter++
		if counter >= contextCheckInterval {
			counter = 0
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}
		res.LinesRead++
		line := sc.Bytes()
		if !keep(line) {
			continue
		}
		if _, err := bw.Write(line); err != nil {
			return res, err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return res, err
		}
		res.LinesWritten++
	}
	if err := sc.Err(); err != nil {
		return res, err
	}
	return res, bw.Flush()
}
