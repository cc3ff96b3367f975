package estimator

import (
	"fmt"
	"sort"

	"lightcurve-lab/internal/domain"
)

// Grid maps component names to candidate values of each parameter.
type Grid map[string]map[string][]any

// Expand returns the Cartesian product of the grid as trial params.
// Components and keys are iterated in sorted order, values in given order,
// with the last key varying fastest. An empty grid yields one empty trial.
func (g Grid) Expand() ([]domain.Params, error) {
	type axis struct {
		comp, key string
		values    []any
	}
	var axes []axis
	comps := make([]string, 0, len(g))
	for c := range g {
		comps = append(comps, c)
	}
	sort.Strings(comps)
	for _, c := range comps {
		keys := make([]string, 0, len(g[c]))
		for k := range g[c] {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if len(g[c][k]) == 0 {
				return nil, fmt.Errorf("%w: grid %s:%s has no values", domain.ErrQueryInput, c, k)
			}
			axes = append(axes, axis{comp: c, key: k, values: g[c][k]})
		}
	}

	trials := []domain.Params{{}}
	for _, ax := range axes {
		next := make([]domain.Params, 0, len(trials)*len(ax.values))
		for _, t := range trials {
			for _, v := range ax.values {
				p := t.Clone()
				if p[ax.comp] == nil {
					p[ax.comp] = domain.ComponentParams{}
				}
				p[ax.comp][ax.key] = v
				next = append(next, p)
			}
		}
		trials = next
	}
	return trials, nil
}
