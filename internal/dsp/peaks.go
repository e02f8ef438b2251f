package dsp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Peak detection defaults. The statistical height threshold tolerates
// moderate DC drift and amplitude scaling; the refractory distance encodes
// a physiological ceiling of roughly 200 bpm independent of sampling rate.
const (
	// HeightStdFactor scales the standard deviation added to the mean to
	// form the acceptance threshold.
	HeightStdFactor = 0.5

	// RefractorySeconds is the minimum spacing between accepted peaks.
	RefractorySeconds = 0.3
)

// DetectPeaks finds local maxima whose amplitude reaches
// mean(x) + 0.5*stddev(x) and which are at least 0.3*fs samples after the
// previously accepted peak. Acceptance is greedy left-to-right; equal-height
// plateaus resolve to their midpoint, ties to the earliest index.
//
// Returned indices are strictly increasing positions into x.
func DetectPeaks(x []float64, fs float64) ([]int, error) {
	if fs <= 0 {
		return nil, fmt.Errorf("sampling rate must be positive, got %v: %w", fs, ErrInvalidConfig)
	}
	if len(x) < 3 {
		return nil, fmt.Errorf("need at least 3 samples for peak detection, got %d: %w", len(x), ErrInsufficientData)
	}

	threshold := stat.Mean(x, nil) + HeightStdFactor*stat.PopStdDev(x, nil)
	minDist := int(math.Ceil(RefractorySeconds * fs))
	if minDist < 1 {
		minDist = 1
	}

	var peaks []int
	last := -1
	for i := 1; i < len(x)-1; {
		if x[i] <= x[i-1] {
			i++
			continue
		}
		// rising edge at i; walk any plateau of equal samples
		j := i
		for j < len(x)-1 && x[j+1] == x[i] {
			j++
		}
		if j == len(x)-1 || x[j+1] >= x[i] {
			// plateau runs to the boundary or keeps rising
			i = j + 1
			continue
		}
		mid := (i + j) / 2
		i = j + 1

		if x[mid] < threshold {
			continue
		}
		if last >= 0 && mid-last < minDist {
			continue
		}
		peaks = append(peaks, mid)
		last = mid
	}

	return peaks, nil
}
