package textsieve

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
)

func benchmarkFilterAddN(b *testing.B, n int) {
	lines := make([][]byte, n)
	for i := range lines {
		lines[i] = []byte(fmt.Sprintf("record-%012d", i))
	}

	b.ResetTimer()
	b.ReportAllocs()
	for range b.N {
		filter, err := NewFilter(n, 0.01)
		if err != nil {
			b.Fatal(err)
		}
		for _, line := range lines {
			filter.Add(line)
		}
	}
}

func BenchmarkFilterAdd1K(b *testing.B)   { benchmarkFilterAddN(b, 1000) }
func BenchmarkFilterAdd100K(b *testing.B) { benchmarkFilterAddN(b, 100000) }

func benchmarkFilterContainsN(b *testing.B, n int) {
	filter, err := NewFilter(n, 0.01)
	if err != nil {
		b.Fatal(err)
	}
	lines := make([][]byte, n)
	for i := range lines {
		lines[i] = []byte(fmt.Sprintf("record-%012d", i))
		filter.Add(lines[i])
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := range b.N {
		_ = filter.ProbablyContains(lines[i%n])
	}
}

func BenchmarkFilterContains1K(b *testing.B)   { benchmarkFilterContainsN(b, 1000) }
func BenchmarkFilterContains100K(b *testing.B) { benchmarkFilterContainsN(b, 100000) }

func benchmarkSortN(b *testing.B, n, chunkLines int) {
	rng := newTestRNG(b)
	input := joinLines(randomLines(rng, n, n))
	ctx := context.Background()
	dir := b.TempDir()

	b.SetBytes(int64(len(input)))
	b.ResetTimer()
	b.ReportAllocs()
	for range b.N {
		err := Sort(ctx, strings.NewReader(input), io.Discard,
			WithTempDir(dir), WithChunkLines(chunkLines))
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSort10K(b *testing.B)          { benchmarkSortN(b, 10000, defaultChunkLines) }
func BenchmarkSort10KManyChunks(b *testing.B) { benchmarkSortN(b, 10000, 500) }

func benchmarkDedupApproxN(b *testing.B, n int) {
	rng := newTestRNG(b)
	input := joinLines(randomLines(rng, n, n/2))
	ctx := context.Background()

	b.SetBytes(int64(len(input)))
	b.ResetTimer()
	b.ReportAllocs()
	for range b.N {
		filter, err := NewFilter(n, 0.01)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := DedupApprox(ctx, strings.NewReader(input), io.Discard, filter); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDedupApprox10K(b *testing.B)  { benchmarkDedupApproxN(b, 10000) }
func BenchmarkDedupApprox100K(b *testing.B) { benchmarkDedupApproxN(b, 100000) }

func BenchmarkLineScanner(b *testing.B) {
	var sb bytes.Buffer
	for i := range 10000 {
		fmt.Fprintf(&sb, "line-%08d some padding text to look like real data\n", i)
	}
	data := sb.Bytes()

	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	b.ReportAllocs()
	for range b.N {
		sc := NewLineScanner(bytes.NewReader(data))
		for sc.Scan() {
		}
		if err := sc.Err(); err != nil {
			b.Fatal(err)
		}
	}
}
