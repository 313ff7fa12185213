package textsieve

import (
	"bytes"
	"math"
	"strconv"
	"strings"
)

// Order is the sort direction for the external sort pipeline.
type Order int

const (
	Ascending Order = iota
	Descending
)

// comparator fixes the line ordering for one sort run: lexicographic by
// default, by parsed float value in numeric mode, inverted when descending.
// Chunk sorting and merging must share the same comparator or the merge
// produces garbage, so it is threaded through both explicitly.
type comparator struct {
	order   Order
	numeric bool
}

// less reports whether a is emitted before b. Equal keys return false in
// both directions; their relative order is settled by the stable window sort
// and the merge heap's chunk-ordinal tie-break, never here.
func (c comparator) less(a, b []byte) bool {
	if c.numeric {
		av, aok := parseLineFloat(a)
		bv, bok := parseLineFloat(b)
		switch {
		case aok && bok:
			if av == bv {
				return false
			}
			if c.order == Descending {
				return av > bv
			}
			return av < bv
		case aok != bok:
			// Unparsable lines sort after every numeric line in output
			// order, whichever the direction.
			return aok
		default:
			return false
		}
	}
	cmp := bytes.Compare(a, b)
	if c.order == Descending {
		return cmp > 0
	}
	return cmp < 0
}

// compare is less in three-way form for slices.SortStableFunc.
func (c comparator) compare(a, b []byte) int {
	switch {
	case c.less(a, b):
		return -1
	case c.less(b, a):
		return 1
	default:
		return 0
	}
}

// parseLineFloat parses a whole line as a float key. NaN counts as
// unparsable: it is unordered and would poison heap invariants.
func parseLineFloat(line []byte) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(string(line)), 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}
