// Sieve is a CLI for processing line-oriented files too large to fit in
// memory: deduplication (approximate and exact), uniform sampling, streaming
// column statistics, and external sorting.
//
// Usage:
//
//	sieve dedup-approx access.log unique.log --expected 10000000 --fpr 0.001
//	sieve dedup-exact access.log unique.log
//	sieve sample access.log 100
//	sieve stats metrics.csv --col 2
//	sieve sort access.log access.sorted --chunk-lines 500000
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/textsieve/textsieve"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rootCmd := &cobra.Command{
		Use:           "sieve",
		Short:         "Bounded-memory utilities for large line-oriented files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// dedup-approx
	dedupApproxCmd := &cobra.Command{
		Use:   "dedup-approx <input> <output>",
		Short: "Approximate deduplication using a bloom filter (low memory, small false-positive rate)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fpr, _ := cmd.Flags().GetFloat64("fpr")
			expected, _ := cmd.Flags().GetInt("expected")

			filter, err := textsieve.NewFilter(expected, fpr)
			if err != nil {
				return err
			}
			var res textsieve.DedupResult
			err = withFiles(args[0], args[1], func(in *os.File, out *os.File) error {
				var runErr error
				res, runErr = textsieve.DedupApprox(ctx, in, out, filter)
				return runErr
			})
			if err != nil {
				return err
			}
			logger.Info("wrote unique lines (approximate)",
				"read", res.LinesRead,
				"written", res.LinesWritten,
				"fpr", fpr,
				"k", filter.Hashes(),
				"m_bits", filter.Bits(),
			)
			return nil
		},
	}
	dedupApproxCmd.Flags().Float64("fpr", 0.001, "Target false positive rate")
	dedupApproxCmd.Flags().Int("expected", 0, "Expected number of unique lines (required)")
	_ = dedupApproxCmd.MarkFlagRequired("expected")
	rootCmd.AddCommand(dedupApproxCmd)

	// dedup-exact
	dedupExactCmd := &cobra.Command{
		Use:   "dedup-exact <input> <output>",
		Short: "Exact deduplication using a hash set (memory grows with unique lines)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var res textsieve.DedupResult
			err := withFiles(args[0], args[1], func(in *os.File, out *os.File) error {
				var err error
				res, err = textsieve.DedupExact(ctx, in, out)
				return err
			})
			if err != nil {
				return err
			}
			logger.Info("wrote unique lines (exact)",
				"read", res.LinesRead,
				"written", res.LinesWritten,
			)
			return nil
		},
	}
	rootCmd.AddCommand(dedupExactCmd)

	// sample
	sampleCmd := &cobra.Command{
		Use:   "sample <input> <k>",
		Short: "Reservoir-sample k lines uniformly at random to stdout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid sample size %q: %w", args[1], err)
			}
			in, err := textsieve.OpenSequential(args[0])
			if err != nil {
				return err
			}
			defer in.Close()
			lines, err := textsieve.Reservoir(ctx, in, k, nil)
			if err != nil {
				return err
			}
			for _, line := range lines {
				fmt.Println(line)
			}
			return nil
		},
	}
	rootCmd.AddCommand(sampleCmd)

	// stats
	statsCmd := &cobra.Command{
		Use:   "stats <input>",
		Short: "Streaming mean/variance/stddev of a numeric column (Welford)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			col, _ := cmd.Flags().GetInt("col")
			in, err := textsieve.OpenSequential(args[0])
			if err != nil {
				return err
			}
			defer in.Close()
			stats, err := textsieve.ColumnStats(ctx, in, col)
			if err != nil {
				return err
			}
			if stats.Count() == 0 {
				return fmt.Errorf("no numeric values found for column %d", col)
			}
			fmt.Println("count:", stats.Count())
			fmt.Println("mean:", stats.Mean())
			fmt.Println("variance:", stats.Variance())
			fmt.Println("stddev:", stats.StdDev())
			fmt.Println("min:", stats.Min())
			fmt.Println("max:", stats.Max())
			return nil
		},
	}
	statsCmd.Flags().Int("col", 0, "0-based column index to analyze")
	rootCmd.AddCommand(statsCmd)

	// sort
	sortCmd := &cobra.Command{
		Use:   "sort <input> <output>",
		Short: "External sort: bounded in-memory chunks plus k-way heap merge",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reverse, _ := cmd.Flags().GetBool("reverse")
			numeric, _ := cmd.Flags().GetBool("numeric")
			chunkLines, _ := cmd.Flags().GetInt("chunk-lines")
			maxOpen, _ := cmd.Flags().GetInt("max-open")
			workers, _ := cmd.Flags().GetInt("workers")
			tmpDir, _ := cmd.Flags().GetString("tmpdir")

			opts := []textsieve.SortOption{
				textsieve.WithChunkLines(chunkLines),
				textsieve.WithMaxOpenChunks(maxOpen),
				textsieve.WithWorkers(workers),
				textsieve.WithTempDir(tmpDir),
			}
			if reverse {
				opts = append(opts, textsieve.WithReverse())
			}
			if numeric {
				opts = append(opts, textsieve.WithNumeric())
			}
			return textsieve.SortFile(ctx, args[0], args[1], opts...)
		},
	}
	sortCmd.Flags().Bool("reverse", false, "Reverse sort order")
	sortCmd.Flags().Bool("numeric", false, "Sort numerically (parse float); unparsable lines sort last")
	sortCmd.Flags().Int("chunk-lines", 500_000, "Lines per in-memory chunk")
	sortCmd.Flags().Int("max-open", 128, "Maximum chunk files open during one merge pass")
	sortCmd.Flags().Int("workers", 1, "Concurrent chunk sort workers (memory scales with workers)")
	sortCmd.Flags().String("tmpdir", "", "Temp directory for sort chunks (default: system temp)")
	rootCmd.AddCommand(sortCmd)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// withFiles opens input for sequential reading, creates output, and removes
// the partial output if fn fails.
func withFiles(inPath, outPath string, fn func(in, out *os.File) error) error {
	in, err := textsieve.OpenSequential(inPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := fn(in, out); err != nil {
		out.Close()
		os.Remove(outPath)
		return err
	}
	return out.Close()
}
