package dsp

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

// PSDEstimate is a one-sided power spectral density estimate. Freqs runs
// from 0 to Nyquist; Power is in signal-units squared per Hz.
type PSDEstimate struct {
	Freqs []float64 `json:"freqs"`
	Power []float64 `json:"power"`

	// Degraded is set when the signal was shorter than one full segment
	// and the estimate fell back to a single whole-signal periodogram.
	Degraded bool `json:"degraded"`
}

// minSegment is the smallest usable Welch segment; shorter windows leave
// too few bins for a Hann taper to make sense.
const minSegment = 8

// Resolution returns the frequency spacing between adjacent bins.
func (p *PSDEstimate) Resolution() float64 {
	if len(p.Freqs) < 2 {
		return 0
	}
	return p.Freqs[1] - p.Freqs[0]
}

// Welch estimates the power spectral density by averaging Hann-windowed,
// mean-detrended periodograms over segments of segSeconds with 50% overlap.
// Averaging trades frequency resolution for variance reduction.
//
// A signal shorter than one segment degrades to a single periodogram over
// the whole signal, flagged on the estimate so consumers can discount its
// precision.
func Welch(x []float64, fs float64, segSeconds float64) (*PSDEstimate, error) {
	if fs <= 0 {
		return nil, fmt.Errorf("sampling rate must be positive, got %v: %w", fs, ErrInvalidConfig)
	}
	if segSeconds <= 0 {
		return nil, fmt.Errorf("segment length must be positive, got %v s: %w", segSeconds, ErrInvalidConfig)
	}
	if len(x) < minSegment {
		return nil, fmt.Errorf("need at least %d samples for a spectral estimate, got %d: %w", minSegment, len(x), ErrInsufficientData)
	}

	nperseg := int(segSeconds * fs)
	if nperseg < minSegment {
		return nil, fmt.Errorf("segment of %v s at %v Hz is under %d samples: %w", segSeconds, fs, minSegment, ErrInvalidConfig)
	}
	degraded := false
	if nperseg > len(x) {
		nperseg = len(x)
		degraded = true
	}
	step := nperseg - nperseg/2 // 50% overlap

	win := make([]float64, nperseg)
	for i := range win {
		win[i] = 1
	}
	window.Hann(win)
	var winSumSq float64
	for _, w := range win {
		winSumSq += w * w
	}
	scale := 1 / (fs * winSumSq)

	fft := fourier.NewFFT(nperseg)
	nbins := nperseg/2 + 1
	acc := make([]float64, nbins)
	seg := make([]float64, nperseg)
	coeffs := make([]complex128, nbins)

	segments := 0
	for start := 0; start+nperseg <= len(x); start += step {
		copy(seg, x[start:start+nperseg])

		// constant detrend: remove the segment mean before windowing
		var mean float64
		for _, v := range seg {
			mean += v
		}
		mean /= float64(nperseg)
		for i := range seg {
			seg[i] = (seg[i] - mean) * win[i]
		}

		fft.Coefficients(coeffs, seg)
		for k := 0; k < nbins; k++ {
			p := cmplx.Abs(coeffs[k])
			p = p * p * scale
			// one-sided spectrum: double everything except DC and Nyquist
			if k != 0 && !(nperseg%2 == 0 && k == nbins-1) {
				p *= 2
			}
			acc[k] += p
		}
		segments++
	}

	freqs := make([]float64, nbins)
	for k := range freqs {
		freqs[k] = fft.Freq(k) * fs
		acc[k] /= float64(segments)
	}

	return &PSDEstimate{Freqs: freqs, Power: acc, Degraded: degraded}, nil
}

// DominantFrequency returns the frequency bin with maximum power inside the
// open interval (lowHz, highHz).
func DominantFrequency(p *PSDEstimate, lowHz, highHz float64) (float64, error) {
	best := -1
	for k, f := range p.Freqs {
		if f <= lowHz || f >= highHz {
			continue
		}
		if best < 0 || p.Power[k] > p.Power[best] {
			best = k
		}
	}
	if best < 0 {
		return 0, fmt.Errorf("no spectral bins inside (%v, %v) Hz: %w", lowHz, highHz, ErrInsufficientData)
	}
	return p.Freqs[best], nil
}

// Band names a closed-open frequency interval [LowHz, HighHz).
type Band struct {
	Name   string  `json:"name"`
	LowHz  float64 `json:"low_hz"`
	HighHz float64 `json:"high_hz"`
}

// StandardEEGBands returns the conventional EEG frequency bands.
func StandardEEGBands() []Band {
	return []Band{
		{Name: "Delta", LowHz: 0.5, HighHz: 4},
		{Name: "Theta", LowHz: 4, HighHz: 8},
		{Name: "Alpha", LowHz: 8, HighHz: 12},
		{Name: "Beta", LowHz: 12, HighHz: 30},
		{Name: "Gamma", LowHz: 30, HighHz: 45},
	}
}

// BandPower integrates the estimate over [band.LowHz, band.HighHz) using
// rectangular integration. Informational only; reporting and plotting use
// it to annotate the spectrum.
func BandPower(p *PSDEstimate, band Band) float64 {
	df := p.Resolution()
	var sum float64
	for k, f := range p.Freqs {
		if f >= band.LowHz && f < band.HighHz {
			sum += p.Power[k] * df
		}
	}
	return sum
}

// alphaLow/alphaHigh bound the informational "Alpha-band dominant"
// annotation applied to EEG dominant-frequency results.
const (
	alphaLow  = 8.0
	alphaHigh = 12.0
)

// InAlphaBand reports whether a dominant frequency falls in the closed
// alpha band [8, 12] Hz.
func InAlphaBand(freqHz float64) bool {
	return freqHz >= alphaLow && freqHz <= alphaHigh && !math.IsNaN(freqHz)
}
