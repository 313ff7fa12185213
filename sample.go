package textsieve

import (
	"context"
	"io"
	"math/rand/v2"

	sieveerrors "github.com/textsieve/textsieve/errors"
)

// Reservoir draws a uniform random sample of min(k, lineCount) lines from r
// in a single pass with O(k) memory (Vitter's Algorithm R). The returned
// order is reservoir-slot order, not input order.
//
// rng may be nil, in which case a fresh PCG seeded from the global generator
// is used; pass an explicit generator for reproducible samples.
func Reservoir(ctx context.Context, r io.Reader, k int, rng *rand.Rand) ([]string, error) {
	if k <= 0 {
		return nil, sieveerrors.ErrSampleSize
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	var reservoir []string
	sc := NewLineScanner(r)
	seen := 0
	counter := 0
	for sc.Scan() {
		counter++
		if counter >= contextCheckInterval {
			counter = 0
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if len(reservoir) < k {
			reservoir = append(reservoir, sc.Text())
		} else if j := rng.IntN(seen + 1); j < k {
			reservoir[j] = sc.Text()
		}
		seen++
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return reservoir, nil
}
