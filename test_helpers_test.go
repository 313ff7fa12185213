package textsieve

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	randv2 "math/rand/v2"
	"strings"
	"testing"
)

// Named seeds for deterministic reproduction.
const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

// newTestRNG derives a deterministic generator from the test name so every
// test gets stable but distinct randomness.
func newTestRNG(t testing.TB) *randv2.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return randv2.New(randv2.NewPCG(testSeed1^s1, testSeed2^s2))
}

// randomLines produces n lines drawn from a vocabulary of distinct words,
// with duplicates once n exceeds the vocabulary size.
func randomLines(rng *randv2.Rand, n, vocabulary int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("word-%08d", rng.IntN(vocabulary))
	}
	return lines
}

// joinLines renders lines as newline-terminated input text.
func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// splitLines parses newline-terminated output text back into lines.
func splitLines(t *testing.T, text string) []string {
	t.Helper()
	if text == "" {
		return nil
	}
	if !strings.HasSuffix(text, "\n") {
		t.Fatalf("output is not newline-terminated: %q", text)
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
