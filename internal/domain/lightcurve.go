package domain

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

// BadValue marks a missing observation in survey exports.
const BadValue = -99.0

// Default light curve metadata.
var DefaultLightCurveMeta = map[string]string{
	"xlabel":      "HJD",
	"xlabel_unit": "days",
	"ylabel":      "Magnitudes",
	"ylabel_unit": "mag",
	"color":       "N/A",
}

// LightCurve is a time series of brightness measurements.
// Time, Mag and Err always have the same length.
type LightCurve struct {
	Time []float64         // observation times (days)
	Mag  []float64         // magnitudes or fluxes
	Err  []float64         // magnitude errors (>= 0)
	Meta map[string]string // axis labels, filter color, origin
}

// NewLightCurve builds a light curve from parallel arrays.
// A nil err defaults to zeros. Observations with NaN or BadValue entries are
// dropped. Returns ErrQueryInput if the lengths differ or nothing is left.
func NewLightCurve(time, mag, errs []float64, meta map[string]string) (*LightCurve, error) {
	if errs == nil {
		errs = make([]float64, len(time))
	}
	if len(time) != len(mag) || len(time) != len(errs) {
		return nil, fmt.Errorf("%w: light curve arrays differ in length (time=%d, mag=%d, err=%d)",
			ErrQueryInput, len(time), len(mag), len(errs))
	}

	lc := &LightCurve{
		Time: make([]float64, 0, len(time)),
		Mag:  make([]float64, 0, len(time)),
		Err:  make([]float64, 0, len(time)),
		Meta: make(map[string]string, len(DefaultLightCurveMeta)),
	}
	for i := range time {
		if isBad(time[i]) || isBad(mag[i]) || isBad(errs[i]) {
			continue
		}
		lc.Time = append(lc.Time, time[i])
		lc.Mag = append(lc.Mag, mag[i])
		lc.Err = append(lc.Err, math.Abs(errs[i]))
	}
	if len(lc.Time) == 0 {
		return nil, fmt.Errorf("%w: light curve has no valid observations", ErrQueryInput)
	}

	for k, v := range DefaultLightCurveMeta {
		lc.Meta[k] = v
	}
	for k, v := range meta {
		if v != "" {
			lc.Meta[k] = v
		}
	}
	return lc, nil
}

// LightCurveFromRows builds a light curve from observation rows of
// (time, mag) or (time, mag, err).
func LightCurveFromRows(rows [][]float64, meta map[string]string) (*LightCurve, error) {
	time := make([]float64, 0, len(rows))
	mag := make([]float64, 0, len(rows))
	errs := make([]float64, 0, len(rows))
	for i, row := range rows {
		switch len(row) {
		case 2:
			time, mag, errs = append(time, row[0]), append(mag, row[1]), append(errs, 0)
		case 3:
			time, mag, errs = append(time, row[0]), append(mag, row[1]), append(errs, row[2])
		default:
			return nil, fmt.Errorf("%w: row %d has %d columns, expected 2 or 3", ErrQueryInput, i, len(row))
		}
	}
	return NewLightCurve(time, mag, errs, meta)
}

// Len returns the number of observations.
func (lc *LightCurve) Len() int {
	return len(lc.Time)
}

// MeanMag returns the mean magnitude.
func (lc *LightCurve) MeanMag() float64 {
	m, err := stats.Mean(lc.Mag)
	if err != nil {
		return math.NaN()
	}
	return m
}

// StdMag returns the population standard deviation of the magnitudes.
func (lc *LightCurve) StdMag() float64 {
	s, err := stats.StandardDeviationPopulation(lc.Mag)
	if err != nil {
		return math.NaN()
	}
	return s
}

// TimeSpan returns max(time) - min(time).
func (lc *LightCurve) TimeSpan() float64 {
	lo, hi := lc.Time[0], lc.Time[0]
	for _, t := range lc.Time {
		lo = math.Min(lo, t)
		hi = math.Max(hi, t)
	}
	return hi - lo
}

func isBad(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0) || v == BadValue
}
