// Package textsieve implements bounded-memory streaming algorithms for
// line-oriented files that are too large to load wholesale: approximate
// deduplication behind a bloom filter, external sorting via chunked in-memory
// sorts plus a disk-backed k-way merge, reservoir sampling, and streaming
// column statistics.
//
// # Basic Usage
//
// Externally sorting a file:
//
//	err := textsieve.SortFile(ctx, "access.log", "access.sorted",
//	    textsieve.WithChunkLines(500_000))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Approximate deduplication:
//
//	filter, err := textsieve.NewFilter(10_000_000, 0.001)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := textsieve.DedupApprox(ctx, in, out, filter)
//
// # Package Structure
//
// The implementation is organized as follows:
//
//   - Membership filter: bloom.go (NewFilter, Add, ProbablyContains)
//   - Line streaming: scan.go (LineScanner, OpenSequential)
//   - External sort: sort.go (Sort, SortFile), sort_options.go (SortOption),
//     sorter.go (window sorting), chunk.go / chunk_reader.go (sealed chunk
//     format), merge.go (k-way merge engine), order.go (comparators)
//   - Single-pass tools: dedup.go, sample.go, stats.go
//   - Errors: errors/ (sentinel values shared with the CLI)
//   - Platform: fadvise_*.go (OS-specific read hints)
//
// All temporary chunk storage lives in a per-run scratch directory that is
// removed on every exit path; no state persists between runs.
package textsieve
