package domain

import (
	"fmt"
	"sort"
	"strconv"
)

// StarEPS is the angular distance in degrees under which two stars are equal.
const StarEPS = 5e-4

// Ident identifies a star inside one origin database.
type Ident struct {
	Name       string // human readable name in the origin
	Identifier string // unique query key in the origin
}

// Star is a point-like astronomical object.
type Star struct {
	Ident       map[string]Ident // origin -> identity
	Coo         *Coordinates     // nil if unknown
	More        map[string]any   // ancillary values (magnitudes, period, spectral type)
	Class       string           // class label, empty if unknown
	LightCurves []*LightCurve
	name        string
}

// NewStar creates a star identified in a single origin.
func NewStar(origin, name, identifier string) *Star {
	if identifier == "" {
		identifier = name
	}
	return &Star{
		Ident: map[string]Ident{origin: {Name: name, Identifier: identifier}},
		More:  make(map[string]any),
	}
}

// SetName overrides the name derived from identities.
func (s *Star) SetName(name string) {
	s.name = name
}

// Name returns the explicit name, else the name in the first origin
// (sorted), else "Unknown".
func (s *Star) Name() string {
	if s.name != "" {
		return s.name
	}
	origins := s.Origins()
	if len(origins) == 0 {
		return "Unknown"
	}
	id := s.Ident[origins[0]]
	if id.Name != "" {
		return id.Name
	}
	return fmt.Sprintf("%s_%s", origins[0], id.Identifier)
}

// Origins returns identity origins in sorted order.
func (s *Star) Origins() []string {
	origins := make([]string, 0, len(s.Ident))
	for k := range s.Ident {
		origins = append(origins, k)
	}
	sort.Strings(origins)
	return origins
}

// LightCurve returns the first light curve, or nil.
func (s *Star) LightCurve() *LightCurve {
	if len(s.LightCurves) == 0 {
		return nil
	}
	return s.LightCurves[0]
}

// PutLightCurve attaches a light curve. Nil or empty curves are ignored.
func (s *Star) PutLightCurve(lc *LightCurve) {
	if lc == nil || lc.Len() == 0 {
		return
	}
	s.LightCurves = append(s.LightCurves, lc)
}

// MoreFloat returns a numeric ancillary value.
func (s *Star) MoreFloat(key string) (float64, bool) {
	v, ok := s.More[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// Equal reports whether s and o describe the same object: a shared origin
// with equal identifiers, or a separation below StarEPS.
func (s *Star) Equal(o *Star) bool {
	if o == nil {
		return false
	}
	for origin, id := range s.Ident {
		if other, ok := o.Ident[origin]; ok && other.Identifier == id.Identifier {
			return true
		}
	}
	if s.Coo == nil || o.Coo == nil {
		return false
	}
	return s.Coo.Separation(*o.Coo) < StarEPS
}

func (s *Star) String() string {
	if s.Coo == nil {
		return s.Name()
	}
	return fmt.Sprintf("%s (%s)", s.Name(), s.Coo)
}
