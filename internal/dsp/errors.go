package dsp

import "errors"

// Sentinel errors for the two failure classes the pipeline distinguishes.
// Wrap with fmt.Errorf("...: %w", ...) so callers can test with errors.Is.
var (
	// ErrInvalidConfig marks bad caller-supplied parameters: non-positive
	// sampling rates, cutoffs outside (0, Nyquist), non-increasing bands.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInsufficientData marks signals too short for the requested
	// operation. It is a degraded outcome, not a host-fatal failure.
	ErrInsufficientData = errors.New("insufficient data")
)
