package textsieve

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	sieveerrors "github.com/textsieve/textsieve/errors"
)

// OnlineStats accumulates mean and variance in one numerically stable pass
// (Welford's algorithm), plus min and max.
type OnlineStats struct {
	count    uint64
	mean     float64
	m2       float64
	min, max float64
}

// Add folds one observation into the accumulator.
func (s *OnlineStats) Add(x float64) {
	s.count++
	delta := x - s.mean
	s.mean += delta / float64(s.count)
	s.m2 += (x - s.mean) * delta
	if s.count == 1 || x < s.min {
		s.min = x
	}
	if s.count == 1 || x > s.max {
		s.max = x
	}
}

// Count returns the number of observations.
func (s *OnlineStats) Count() uint64 { return s.count }

// Mean returns the running mean, or NaN before any observation.
func (s *OnlineStats) Mean() float64 {
	if s.count == 0 {
		return math.NaN()
	}
	return s.mean
}

// Variance returns the sample variance (n-1 denominator), or NaN below two
// observations.
func (s *OnlineStats) Variance() float64 {
	if s.count < 2 {
		return math.NaN()
	}
	return s.m2 / float64(s.count-1)
}

// StdDev returns the sample standard deviation, or NaN below two
// observations.
func (s *OnlineStats) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// Min returns the smallest observation, or NaN before any.
func (s *OnlineStats) Min() float64 {
	if s.count == 0 {
		return math.NaN()
	}
	return s.min
}

// Max returns the largest observation, or NaN before any.
func (s *OnlineStats) Max() float64 {
	if s.count == 0 {
		return math.NaN()
	}
	return s.max
}

// fieldSplitter extracts the fields of one line. The implementation is
// chosen once per stream by sniffing the first line.
type fieldSplitter interface {
	fields(line string) ([]string, error)
}

// csvSplitter parses comma-separated fields, honoring quoting within a line.
type csvSplitter struct{}

func (csvSplitter) fields(line string) ([]string, error) {
	rd := csv.NewReader(strings.NewReader(line))
	rd.FieldsPerRecord = -1
	rec, err := rd.Read()
	if err == io.EOF {
		return nil, nil
	}
	return rec, err
}

// whitespaceSplitter splits on runs of whitespace.
type whitespaceSplitter struct{}

func (whitespaceSplitter) fields(line string) ([]string, error) {
	return strings.Fields(line), nil
}

// sniffSplitter picks comma-separated parsing when the first line contains a
// comma, whitespace splitting otherwise.
func sniffSplitter(first string) fieldSplitter {
	if strings.Contains(first, ",") {
		return csvSplitter{}
	}
	return whitespaceSplitter{}
}

// ColumnStats streams r, accumulating statistics over the numeric column col
// (0-based). Blank lines are ignored; a non-blank line that lacks the column
// or holds a non-numeric value there fails the run with the offending line's
// context. That strictness is deliberate: silently skipped rows turn data
// errors into quietly wrong statistics.
func ColumnStats(ctx context.Context, r io.Reader, col int) (*OnlineStats, error) {
	if col < 0 {
		return nil, sieveerrors.ErrColumnIndex
	}

	stats := &OnlineStats{}
	var split fieldSplitter
	sc := NewLineScanner(r)
	counter := 0
	for sc.Scan() {
		counter++
		if counter >= contextCheckInterval {
			counter = 0
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if split == nil {
			split = sniffSplitter(line)
		}
		fields, err := split.fields(line)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", sieveerrors.ErrNotNumeric, sc.Line(), err)
		}
		if len(fields) == 0 {
			continue
		}
		if col >= len(fields) {
			return nil, fmt.Errorf("%w: line %d has %d field(s), want index %d",
				sieveerrors.ErrMissingColumn, sc.Line(), len(fields), col)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[col]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %q", sieveerrors.ErrNotNumeric, sc.Line(), fields[col])
		}
		stats.Add(v)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}
