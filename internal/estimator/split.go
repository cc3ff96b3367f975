package estimator

import (
	"fmt"
	"math/rand"

	"lightcurve-lab/internal/domain"
)

// DefaultSplitRatio is the share of each class used for training.
const DefaultSplitRatio = 0.75

// shuffled returns a shuffled copy of stars.
func shuffled(rng *rand.Rand, stars []*domain.Star) []*domain.Star {
	out := append([]*domain.Star(nil), stars...)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// split cuts stars into train and test parts. Both must be non-empty.
func split(stars []*domain.Star, ratio float64, class string) (train, test []*domain.Star, err error) {
	n := int(float64(len(stars)) * ratio)
	if n == 0 || n == len(stars) {
		return nil, nil, fmt.Errorf("%w: split %.2f of %d %s stars leaves an empty part",
			domain.ErrQueryInput, ratio, len(stars), class)
	}
	return stars[:n], stars[n:], nil
}
