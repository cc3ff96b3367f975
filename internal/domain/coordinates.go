package domain

import (
	"fmt"
	"math"
)

// Unit selects how coordinate values are interpreted.
type Unit string

const (
	UnitDegrees Unit = "deg"
	UnitRadians Unit = "rad"
	UnitHours   Unit = "hour" // right ascension in hours, declination in degrees
)

// Coordinates is an equatorial sky position in degrees.
// RA is in [0, 360), Dec in [-90, 90].
type Coordinates struct {
	RA  float64
	Dec float64
}

// NewCoordinates converts ra/dec given in unit into degrees and validates them.
func NewCoordinates(ra, dec float64, unit Unit) (Coordinates, error) {
	switch unit {
	case UnitDegrees, "":
	case UnitRadians:
		ra, dec = ra*180/math.Pi, dec*180/math.Pi
	case UnitHours:
		ra *= 15
	default:
		return Coordinates{}, fmt.Errorf("%w: coordinate unit %q", ErrInvalidOption, unit)
	}
	if math.IsNaN(ra) || math.IsNaN(dec) || math.IsInf(ra, 0) || math.IsInf(dec, 0) {
		return Coordinates{}, fmt.Errorf("%w: coordinates must be finite", ErrQueryInput)
	}
	if dec < -90 || dec > 90 {
		return Coordinates{}, fmt.Errorf("%w: declination %.6f out of [-90, 90]", ErrQueryInput, dec)
	}
	ra = math.Mod(ra, 360)
	if ra < 0 {
		ra += 360
	}
	// a tiny negative RA rounds up to exactly 360
	if ra >= 360 {
		ra = 0
	}
	return Coordinates{RA: ra, Dec: dec}, nil
}

// FromHMSDMS builds coordinates from sexagesimal tuples. The declination sign
// is taken from negative (so -00:30:00 can be expressed).
func FromHMSDMS(h, m, s float64, negative bool, d, dm, ds float64) (Coordinates, error) {
	ra := h + m/60 + s/3600
	dec := math.Abs(d) + dm/60 + ds/3600
	if negative || d < 0 {
		dec = -dec
	}
	return NewCoordinates(ra, dec, UnitHours)
}

// Separation returns the angular distance to o in degrees.
func (c Coordinates) Separation(o Coordinates) float64 {
	ra1, dec1 := c.RA*math.Pi/180, c.Dec*math.Pi/180
	ra2, dec2 := o.RA*math.Pi/180, o.Dec*math.Pi/180
	dra := ra2 - ra1

	sdra, cdra := math.Sincos(dra)
	sd1, cd1 := math.Sincos(dec1)
	sd2, cd2 := math.Sincos(dec2)

	num1 := cd2 * sdra
	num2 := cd1*sd2 - sd1*cd2*cdra
	denom := sd1*sd2 + cd1*cd2*cdra
	return math.Atan2(math.Hypot(num1, num2), denom) * 180 / math.Pi
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.6f %+.6f", c.RA, c.Dec)
}
