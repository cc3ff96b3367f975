package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// MinBins is the smallest bin count returned by ComputeBins.
const MinBins = 5

// ComputeBins returns round((max(time) - min(time)) / daysPerBin), at least MinBins.
func ComputeBins(time []float64, daysPerBin float64) int {
	return ComputeBinsMin(time, daysPerBin, MinBins)
}

// ComputeBinsMin is ComputeBins with a custom lower bound.
// A non-positive daysPerBin yields minBins.
func ComputeBinsMin(time []float64, daysPerBin float64, minBins int) int {
	if len(time) == 0 || daysPerBin <= 0 {
		return minBins
	}
	n := int(math.Round((floats.Max(time) - floats.Min(time)) / daysPerBin))
	if n < minBins {
		return minBins
	}
	return n
}
