package textsieve

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"
	"testing"
)

func TestDedupExact(t *testing.T) {
	input := joinLines([]string{"apple", "banana", "apple", "cherry", "banana", "apple"})

	var buf bytes.Buffer
	res, err := DedupExact(context.Background(), strings.NewReader(input), &buf)
	if err != nil {
		t.Fatal(err)
	}

	got := splitLines(t, buf.String())
	want := []string{"apple", "banana", "cherry"}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if res.LinesRead != 6 || res.LinesWritten != 3 {
		t.Errorf("result = %+v, want 6 read / 3 written", res)
	}
}

func TestDedupExactAllDistinct(t *testing.T) {
	lines := randomLines(newTestRNG(t), 500, 1_000_000)
	distinct := slices.Compact(slices.Sorted(slices.Values(lines)))

	var buf bytes.Buffer
	res, err := DedupExact(context.Background(), strings.NewReader(joinLines(lines)), &buf)
	if err != nil {
		t.Fatal(err)
	}
	got := splitLines(t, buf.String())
	if int(res.LinesWritten) != len(distinct) || len(got) != len(distinct) {
		t.Errorf("wrote %d lines, want %d distinct", res.LinesWritten, len(distinct))
	}
}

func TestDedupApproxNeverEmitsDuplicates(t *testing.T) {
	rng := newTestRNG(t)
	// A small vocabulary guarantees heavy repetition.
	lines := randomLines(rng, 5000, 100)

	filter, err := NewFilter(200, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	res, err := DedupApprox(context.Background(), strings.NewReader(joinLines(lines)), &buf, filter)
	if err != nil {
		t.Fatal(err)
	}

	got := splitLines(t, buf.String())
	seen := make(map[string]int)
	for _, line := range got {
		seen[line]++
		if seen[line] > 1 {
			t.Fatalf("line %q emitted more than once", line)
		}
	}
	if res.LinesRead != 5000 {
		t.Errorf("LinesRead = %d, want 5000", res.LinesRead)
	}
	if res.LinesWritten != uint64(len(got)) {
		t.Errorf("LinesWritten = %d, output has %d lines", res.LinesWritten, len(got))
	}
}

func TestDedupApproxPreservesInputOrder(t *testing.T) {
	input := joinLines([]string{"delta", "alpha", "delta", "charlie", "alpha", "bravo"})

	filter, err := NewFilter(100, 0.001)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if _, err := DedupApprox(context.Background(), strings.NewReader(input), &buf, filter); err != nil {
		t.Fatal(err)
	}

	// Output must be a subsequence of the input: every kept line appears at or
	// after where the previous kept line appeared.
	got := splitLines(t, buf.String())
	inputLines := []string{"delta", "alpha", "delta", "charlie", "alpha", "bravo"}
	pos := 0
	for _, line := range got {
		idx := slices.Index(inputLines[pos:], line)
		if idx < 0 {
			t.Fatalf("output line %q breaks input order", line)
		}
		pos += idx + 1
	}
}

func TestDedupApproxDropRateWithinBudget(t *testing.T) {
	const n = 10_000
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("record-%08d", i)
	}

	filter, err := NewFilter(n, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	res, err := DedupApprox(context.Background(), strings.NewReader(joinLines(lines)), &buf, filter)
	if err != nil {
		t.Fatal(err)
	}

	// Every line is distinct, so anything short of n lines written is a false
	// positive drop. Allow triple the configured rate before calling it a bug.
	dropped := n - int(res.LinesWritten)
	if dropped > 3*n/100 {
		t.Errorf("dropped %d of %d distinct lines, beyond the 1%% budget", dropped, n)
	}
}

func TestDedupEmptyInput(t *testing.T) {
	filter, err := NewFilter(10, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	res, err := DedupApprox(context.Background(), strings.NewReader(""), &buf, filter)
	if err != nil {
		t.Fatal(err)
	}
	if res.LinesRead != 0 || res.LinesWritten != 0 || buf.Len() != 0 {
		t.Errorf("empty input produced %+v with %d output bytes", res, buf.Len())
	}
}
