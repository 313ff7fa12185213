// Sievebench measures external sort throughput and memory usage over
// synthetic line files.
//
// Usage:
//
//	go run ./cmd/sievebench -lines 10000000 -chunk-lines 500000 -workers 4
//
// Flags:
//
//	-lines        Number of input lines to generate (default: 10,000,000)
//	-line-len     Approximate length of each line in bytes (default: 32)
//	-chunk-lines  Lines per in-memory sort window (default: 500,000)
//	-max-open     Open chunk limit per merge pass (default: 128)
//	-workers      Concurrent chunk sort workers (default: 1)
//	-reverse      Sort descending (default: false)
package main

import (
	"bufio"
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/zeebo/xxh3"

	"github.com/textsieve/textsieve"
)

// getMaxRSS returns the maximum resident set size in bytes.
// Uses getrusage(RUSAGE_SELF) which tracks peak RSS since process start.
func getMaxRSS() uint64 {
	var rusage syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &rusage); err != nil {
		return 0
	}
	// On macOS, MaxRss is in bytes. On Linux, it's in kilobytes.
	maxRSS := uint64(rusage.Maxrss)
	if runtime.GOOS == "linux" {
		maxRSS *= 1024 // Convert KB to bytes on Linux
	}
	return maxRSS
}

func main() {
	linesFlag := flag.Int("lines", 10_000_000, "number of input lines")
	lineLenFlag := flag.Int("line-len", 32, "approximate line length in bytes")
	chunkLinesFlag := flag.Int("chunk-lines", 500_000, "lines per in-memory sort window")
	maxOpenFlag := flag.Int("max-open", 128, "open chunk limit per merge pass")
	workersFlag := flag.Int("workers", 1, "concurrent chunk sort workers")
	reverseFlag := flag.Bool("reverse", false, "sort descending")
	flag.Parse()

	if err := run(*linesFlag, *lineLenFlag, *chunkLinesFlag, *maxOpenFlag, *workersFlag, *reverseFlag); err != nil {
		fmt.Fprintln(os.Stderr, "sievebench:", err)
		os.Exit(1)
	}
}

func run(lines, lineLen, chunkLines, maxOpen, workers int, reverse bool) error {
	dir, err := os.MkdirTemp("", "sievebench-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	inPath := filepath.Join(dir, "input.txt")
	outPath := filepath.Join(dir, "output.txt")

	genStart := time.Now()
	inputBytes, err := generateInput(inPath, lines, lineLen)
	if err != nil {
		return err
	}
	fmt.Printf("generated %d lines (%.1f MB) in %v\n",
		lines, float64(inputBytes)/(1<<20), time.Since(genStart).Round(time.Millisecond))

	opts := []textsieve.SortOption{
		textsieve.WithChunkLines(chunkLines),
		textsieve.WithMaxOpenChunks(maxOpen),
		textsieve.WithWorkers(workers),
		textsieve.WithTempDir(dir),
	}
	if reverse {
		opts = append(opts, textsieve.WithReverse())
	}

	sortStart := time.Now()
	if err := textsieve.SortFile(context.Background(), inPath, outPath, opts...); err != nil {
		return err
	}
	elapsed := time.Since(sortStart)

	fmt.Printf("sorted in %v\n", elapsed.Round(time.Millisecond))
	fmt.Printf("  %.0f lines/s\n", float64(lines)/elapsed.Seconds())
	fmt.Printf("  %.1f MB/s\n", float64(inputBytes)/(1<<20)/elapsed.Seconds())
	fmt.Printf("  max RSS: %.1f MB\n", float64(getMaxRSS())/(1<<20))
	return nil
}

// generateInput writes n pseudo-random lines: each is the hex of an
// xxh3-mixed counter, repeated to roughly lineLen bytes. Deterministic, well
// dispersed, and cheap to produce.
func generateInput(path string, n, lineLen int) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	w := bufio.NewWriterSize(f, 1<<20)

	var counter [8]byte
	reps := (lineLen + 16) / 17 // "%016x-" blocks
	if reps < 1 {
		reps = 1
	}
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint64(counter[:], uint64(i))
		h := xxh3.Hash(counter[:])
		for r := 0; r < reps; r++ {
			fmt.Fprintf(w, "%016x", h+uint64(r))
			if r < reps-1 {
				w.WriteByte('-')
			}
		}
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return 0, err
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return 0, err
	}
	return stat.Size(), f.Close()
}
