// Package pipeline runs lcc jobs: parameter searches, filtering and star imports.
package pipeline

import (
	"context"
	"fmt"
	"sort"

	"lightcurve-lab/internal/catalogue"
	"lightcurve-lab/internal/config"
	"lightcurve-lab/internal/domain"
)

// loadSources concatenates the stars of every source.
func loadSources(ctx context.Context, sources []config.Source, env catalogue.Env) ([]*domain.Star, error) {
	var stars []*domain.Star
	for i, src := range sources {
		got, err := catalogue.Load(ctx, src.Adapter, catalogue.Query(src.Query), env)
		if err != nil {
			return nil, fmt.Errorf("source %d: %w", i, err)
		}
		stars = append(stars, got...)
	}
	return stars, nil
}

// loadTemplates loads every template set of the job, by name.
func loadTemplates(ctx context.Context, sets map[string][]config.Source, env catalogue.Env) (map[string][]*domain.Star, error) {
	names := make([]string, 0, len(sets))
	for name := range sets {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string][]*domain.Star, len(sets))
	for _, name := range names {
		stars, err := loadSources(ctx, sets[name], env)
		if err != nil {
			return nil, fmt.Errorf("template set %s: %w", name, err)
		}
		if len(stars) == 0 {
			return nil, fmt.Errorf("%w: template set %s is empty", domain.ErrQueryInput, name)
		}
		out[name] = stars
	}
	return out, nil
}

// resolveTemplates replaces template set names under config.TemplatesKey
// with the stars of those sets. A list of names concatenates the sets.
func resolveTemplates(params map[string]any, sets map[string][]*domain.Star) (map[string]any, error) {
	v, ok := params[config.TemplatesKey]
	if !ok {
		return params, nil
	}
	var names []string
	switch t := v.(type) {
	case string:
		names = []string{t}
	case []string:
		names = t
	case []any:
		for _, item := range t {
			name, ok := item.(string)
			if !ok {
				// already stars
				return params, nil
			}
			names = append(names, name)
		}
	default:
		return params, nil
	}

	var stars []*domain.Star
	for _, name := range names {
		set, ok := sets[name]
		if !ok {
			return nil, fmt.Errorf("%w: template set %q", domain.ErrNotFound, name)
		}
		stars = append(stars, set...)
	}
	out := make(map[string]any, len(params))
	for k, val := range params {
		out[k] = val
	}
	out[config.TemplatesKey] = stars
	return out, nil
}

// resolveStatic resolves template references of descriptor static params.
func resolveStatic(static map[string]any, sets map[string][]*domain.Star) (map[string]any, error) {
	out := make(map[string]any, len(static))
	for comp, v := range static {
		m, ok := v.(map[string]any)
		if !ok {
			out[comp] = v
			continue
		}
		r, err := resolveTemplates(m, sets)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", comp, err)
		}
		out[comp] = r
	}
	return out, nil
}

// resolveTrials resolves template references of every trial.
func resolveTrials(trials []domain.Params, sets map[string][]*domain.Star) ([]domain.Params, error) {
	out := make([]domain.Params, len(trials))
	for i, t := range trials {
		out[i] = make(domain.Params, len(t))
		for comp, p := range t {
			r, err := resolveTemplates(p, sets)
			if err != nil {
				return nil, fmt.Errorf("trial %d %s: %w", i, comp, err)
			}
			out[i][comp] = r
		}
	}
	return out, nil
}
