package domain

import (
	"fmt"
	"sort"
)

// ComponentParams maps parameter names to values for one component.
type ComponentParams map[string]any

// Params maps component names (e.g. "AbbeValueDescr", "LDADec") to their parameters.
type Params map[string]ComponentParams

// Clone returns a copy with fresh inner maps. Values are shared.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for comp, inner := range p {
		c := make(ComponentParams, len(inner))
		for k, v := range inner {
			c[k] = v
		}
		out[comp] = c
	}
	return out
}

// Merge returns static overlaid by p: values in p take precedence.
func (p Params) Merge(static Params) Params {
	out := static.Clone()
	for comp, inner := range p {
		if out[comp] == nil {
			out[comp] = make(ComponentParams, len(inner))
		}
		for k, v := range inner {
			out[comp][k] = v
		}
	}
	return out
}

// Components returns the component names in sorted order.
func (p Params) Components() []string {
	names := make([]string, 0, len(p))
	for k := range p {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Flatten returns scalar parameters keyed "Component:key". Lists, maps and
// stars are skipped.
func (p Params) Flatten() map[string]any {
	out := make(map[string]any)
	for comp, inner := range p {
		for k, v := range inner {
			if !isScalar(v) {
				continue
			}
			out[fmt.Sprintf("%s:%s", comp, k)] = v
		}
	}
	return out
}

// FlatKeys returns the sorted keys of Flatten.
func (p Params) FlatKeys() []string {
	flat := p.Flatten()
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isScalar(v any) bool {
	switch v.(type) {
	case string, bool, int, int32, int64, float32, float64, uint, uint32, uint64:
		return true
	}
	return false
}

// CheckKeys fails with ErrQueryInput when c holds a key not listed in allowed.
func (c ComponentParams) CheckKeys(component string, allowed ...string) error {
	for k := range c {
		found := false
		for _, a := range allowed {
			if k == a {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: %s does not accept parameter %q (accepted: %v)",
				ErrQueryInput, component, k, allowed)
		}
	}
	return nil
}

// Has reports whether key is set to a non-nil value.
func (c ComponentParams) Has(key string) bool {
	v, ok := c[key]
	return ok && v != nil
}

// Float returns a numeric parameter or def when absent.
func (c ComponentParams) Float(key string, def float64) (float64, error) {
	if !c.Has(key) {
		return def, nil
	}
	f, ok := toFloat(c[key])
	if !ok {
		return 0, fmt.Errorf("%w: parameter %q must be a number, got %T", ErrQueryInput, key, c[key])
	}
	return f, nil
}

// RequiredFloat returns a numeric parameter that must be present.
func (c ComponentParams) RequiredFloat(key string) (float64, error) {
	if !c.Has(key) {
		return 0, fmt.Errorf("%w: missing required parameter %q", ErrQueryInput, key)
	}
	return c.Float(key, 0)
}

// Int returns an integral parameter or def when absent.
func (c ComponentParams) Int(key string, def int) (int, error) {
	if !c.Has(key) {
		return def, nil
	}
	f, ok := toFloat(c[key])
	if !ok || f != float64(int(f)) {
		return 0, fmt.Errorf("%w: parameter %q must be an integer, got %v", ErrQueryInput, key, c[key])
	}
	return int(f), nil
}

// RequiredInt returns an integral parameter that must be present.
func (c ComponentParams) RequiredInt(key string) (int, error) {
	if !c.Has(key) {
		return 0, fmt.Errorf("%w: missing required parameter %q", ErrQueryInput, key)
	}
	return c.Int(key, 0)
}

// Bool returns a boolean parameter or def when absent.
func (c ComponentParams) Bool(key string, def bool) (bool, error) {
	if !c.Has(key) {
		return def, nil
	}
	b, ok := c[key].(bool)
	if !ok {
		return false, fmt.Errorf("%w: parameter %q must be a boolean, got %T", ErrQueryInput, key, c[key])
	}
	return b, nil
}

// String returns a string parameter or def when absent.
func (c ComponentParams) String(key string, def string) (string, error) {
	if !c.Has(key) {
		return def, nil
	}
	s, ok := c[key].(string)
	if !ok {
		return "", fmt.Errorf("%w: parameter %q must be a string, got %T", ErrQueryInput, key, c[key])
	}
	return s, nil
}

// Strings returns a list of strings. A single string is accepted as a
// one-element list.
func (c ComponentParams) Strings(key string) ([]string, error) {
	if !c.Has(key) {
		return nil, nil
	}
	switch v := c[key].(type) {
	case string:
		return []string{v}, nil
	case []string:
		return append([]string(nil), v...), nil
	case []any:
		out := make([]string, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: parameter %q must hold strings, got %T", ErrQueryInput, key, item)
			}
			out[i] = s
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: parameter %q must be a list of strings, got %T", ErrQueryInput, key, c[key])
}

// Stars returns a list of stars, used for template parameters.
func (c ComponentParams) Stars(key string) ([]*Star, error) {
	if !c.Has(key) {
		return nil, fmt.Errorf("%w: missing required parameter %q", ErrQueryInput, key)
	}
	switch v := c[key].(type) {
	case []*Star:
		return v, nil
	case []any:
		out := make([]*Star, len(v))
		for i, item := range v {
			s, ok := item.(*Star)
			if !ok {
				return nil, fmt.Errorf("%w: parameter %q must hold stars, got %T", ErrQueryInput, key, item)
			}
			out[i] = s
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: parameter %q must be a list of stars, got %T", ErrQueryInput, key, c[key])
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// Printable returns a copy safe to serialise: star values are replaced by
// star names.
func (p Params) Printable() map[string]map[string]any {
	out := make(map[string]map[string]any, len(p))
	for comp, inner := range p {
		c := make(map[string]any, len(inner))
		for k, v := range inner {
			c[k] = printable(v)
		}
		out[comp] = c
	}
	return out
}

func printable(v any) any {
	switch x := v.(type) {
	case *Star:
		return x.Name()
	case []*Star:
		names := make([]string, len(x))
		for i, s := range x {
			names[i] = s.Name()
		}
		return names
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = printable(item)
		}
		return out
	}
	return v
}
