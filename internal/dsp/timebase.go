// Package dsp implements the numeric signal-processing core: synthetic
// timebase reconstruction, zero-phase Butterworth band-pass filtering,
// Welch spectral estimation and refractory-constrained peak detection.
//
// All functions are pure batch transforms over in-memory sample slices and
// share no state, so independent calls may run concurrently.
package dsp

import "fmt"

// TimeAxis synthesizes a monotonic time axis of n points at the nominal
// sampling rate: t[i] = i/fs.
//
// Source timestamps from acquisition hardware are deliberately discarded
// upstream; the devices exhibit clock drift and jitter, so a fixed-rate
// axis derived from the nominal rate is more internally consistent than
// anything the sensor reports.
func TimeAxis(n int, fs float64) ([]float64, error) {
	if fs <= 0 {
		return nil, fmt.Errorf("sampling rate must be positive, got %v: %w", fs, ErrInvalidConfig)
	}
	if n < 0 {
		return nil, fmt.Errorf("sample count must be non-negative, got %d: %w", n, ErrInvalidConfig)
	}

	t := make([]float64, n)
	for i := range t {
		t[i] = float64(i) / fs
	}
	return t, nil
}
