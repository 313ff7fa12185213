package textsieve

import (
	"math"

	"github.com/spaolacci/murmur3"
	sieveerrors "github.com/textsieve/textsieve/errors"
)

const (
	// minFilterBits floors the bit array so degenerate (n, p) choices still
	// produce a usable filter.
	minFilterBits = 8

	// goldenGamma replaces a zero second-stage hash so the double-hashing
	// stride never collapses to a single bit position.
	goldenGamma = 0x9e3779b97f4a7c15
)

// Filter is a space-efficient probabilistic set: Add and ProbablyContains
// with zero false negatives and a tunable false-positive rate. Bit positions
// are synthesized from two 64-bit base hashes via double hashing,
// h(i) = (h1 + i*h2) mod m (Kirsch–Mitzenmacher), so k positions cost one
// murmur3 128-bit hash regardless of k.
//
// A Filter is sized at construction and never resized; bits are only ever
// set. Not safe for concurrent use.
type Filter struct {
	bits []byte
	m    uint64 // bit-array length in bits
	k    int    // number of derived positions per item
}

// NewFilter sizes a filter for expectedItems insertions at the target
// false-positive rate:
//
//	m = ceil(-n * ln(p) / (ln 2)^2)
//	k = round((m / n) * ln 2)
//
// m is floored at 8 bits and k at 1 for extreme parameter choices.
func NewFilter(expectedItems int, falsePositiveRate float64) (*Filter, error) {
	if expectedItems <= 0 {
		return nil, sieveerrors.ErrExpectedItems
	}
	if falsePositiveRate <= 0 || falsePositiveRate >= 1 {
		return nil, sieveerrors.ErrFalsePositiveRate
	}

	n := float64(expectedItems)
	m := uint64(math.Ceil(-n * math.Log(falsePositiveRate) / (math.Ln2 * math.Ln2)))
	if m < minFilterBits {
		m = minFilterBits
	}
	k := int(math.Round(float64(m) / n * math.Ln2))
	if k < 1 {
		k = 1
	}

	return &Filter{
		bits: make([]byte, (m+7)/8),
		m:    m,
		k:    k,
	}, nil
}

// Add inserts item. Idempotent; never fails.
func (f *Filter) Add(item []byte) {
	h1, h2 := baseHashes(item)
	for i := 0; i < f.k; i++ {
		pos := (h1 + uint64(i)*h2) % f.m
		f.bits[pos>>3] |= 1 << (pos & 7)
	}
}

// ProbablyContains reports whether item may have been added. A false result
// is definitive; a true result is wrong with probability bounded by the
// configured false-positive rate while the filter holds at most expectedItems
// distinct items.
func (f *Filter) ProbablyContains(item []byte) bool {
	h1, h2 := baseHashes(item)
	for i := 0; i < f.k; i++ {
		pos := (h1 + uint64(i)*h2) % f.m
		if f.bits[pos>>3]&(1<<(pos&7)) == 0 {
			return false
		}
	}
	return true
}

// Bits returns the bit-array length m.
func (f *Filter) Bits() uint64 { return f.m }

// Hashes returns the derived position count k.
func (f *Filter) Hashes() int { return f.k }

func baseHashes(item []byte) (h1, h2 uint64) {
	h1, h2 = murmur3.Sum128(item)
	if h2 == 0 {
		h2 = goldenGamma
	}
	return h1, h2
}
