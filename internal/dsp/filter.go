package dsp

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// FilterSpec describes a band-pass Butterworth filter.
type FilterSpec struct {
	Order        int
	LowCutoffHz  float64
	HighCutoffHz float64
	SampleRateHz float64
}

func (s FilterSpec) validate() error {
	if s.Order < 1 {
		return fmt.Errorf("filter order must be >= 1, got %d: %w", s.Order, ErrInvalidConfig)
	}
	if s.SampleRateHz <= 0 {
		return fmt.Errorf("sampling rate must be positive, got %v: %w", s.SampleRateHz, ErrInvalidConfig)
	}
	nyquist := s.SampleRateHz / 2
	if s.LowCutoffHz <= 0 || s.HighCutoffHz >= nyquist || s.LowCutoffHz >= s.HighCutoffHz {
		return fmt.Errorf("cutoffs must satisfy 0 < %v < %v < %v (Nyquist): %w",
			s.LowCutoffHz, s.HighCutoffHz, nyquist, ErrInvalidConfig)
	}
	return nil
}

// BandPassFilter holds the transfer-function coefficients of a designed
// band-pass Butterworth filter.
type BandPassFilter struct {
	spec FilterSpec
	b    []float64 // numerator
	a    []float64 // denominator, a[0] == 1
}

// NewBandPass designs a band-pass Butterworth filter of the given order.
// The design follows the classic analog-prototype route: Butterworth poles,
// lowpass-to-bandpass transform with prewarped corner frequencies, then a
// bilinear transform into the digital domain.
func NewBandPass(spec FilterSpec) (*BandPassFilter, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}

	n := spec.Order
	nyquist := spec.SampleRateHz / 2
	lowNorm := spec.LowCutoffHz / nyquist
	highNorm := spec.HighCutoffHz / nyquist

	// Prewarp the normalized corner frequencies for the bilinear transform.
	// The internal design rate is fixed at 2 so warped = 4*tan(pi*Wn/2).
	const fs = 2.0
	warpLow := 2 * fs * math.Tan(math.Pi*lowNorm/fs)
	warpHigh := 2 * fs * math.Tan(math.Pi*highNorm/fs)
	bw := warpHigh - warpLow
	wo := math.Sqrt(warpLow * warpHigh)

	// Analog lowpass Butterworth prototype: n poles evenly spaced on the
	// left half of the unit circle, no zeros, unit gain.
	poles := make([]complex128, n)
	for i := 0; i < n; i++ {
		m := float64(-n + 1 + 2*i)
		poles[i] = -cmplx.Exp(complex(0, math.Pi*m/(2*float64(n))))
	}

	// Lowpass-to-bandpass transform. Each prototype pole splits in two;
	// n transmission zeros appear at the origin.
	bpPoles := make([]complex128, 0, 2*n)
	for _, p := range poles {
		pl := p * complex(bw/2, 0)
		d := cmplx.Sqrt(pl*pl - complex(wo*wo, 0))
		bpPoles = append(bpPoles, pl+d, pl-d)
	}
	gain := math.Pow(bw, float64(n))

	// Bilinear transform into z-domain. Analog zeros at the origin map to
	// z=1; the n excess poles contribute zeros at z=-1.
	fs2 := complex(2*fs, 0)
	zZeros := make([]complex128, 0, 2*n)
	for i := 0; i < n; i++ {
		zZeros = append(zZeros, 1)
	}
	zPoles := make([]complex128, len(bpPoles))
	prodP := complex(1, 0)
	for i, p := range bpPoles {
		zPoles[i] = (fs2 + p) / (fs2 - p)
		prodP *= fs2 - p
	}
	prodZ := cmplx.Pow(fs2, complex(float64(n), 0)) // analog zeros all at 0
	for i := 0; i < len(bpPoles)-n; i++ {
		zZeros = append(zZeros, -1)
	}
	k := gain * real(prodZ/prodP)

	// Expand pole/zero form into transfer-function polynomials.
	b := polyFromRoots(zZeros)
	for i := range b {
		b[i] *= k
	}
	a := polyFromRoots(zPoles)

	return &BandPassFilter{spec: spec, b: b, a: a}, nil
}

// Coefficients returns copies of the numerator and denominator polynomials.
func (f *BandPassFilter) Coefficients() (b, a []float64) {
	b = append([]float64(nil), f.b...)
	a = append([]float64(nil), f.a...)
	return b, a
}

// Apply runs the filter forward and backward over the signal (zero-phase
// filtering). Edge transients are mitigated by odd-reflection padding of
// 3*(ntaps-1) samples at each end, matched with steady-state initial filter
// conditions scaled to the first padded sample.
func (f *BandPassFilter) Apply(x []float64) ([]float64, error) {
	ntaps := len(f.a)
	if len(f.b) > ntaps {
		ntaps = len(f.b)
	}
	padlen := 3 * (ntaps - 1)
	if len(x) <= padlen {
		return nil, fmt.Errorf("signal of %d samples is too short for zero-phase filtering (needs more than %d): %w",
			len(x), padlen, ErrInsufficientData)
	}

	zi, err := steadyState(f.b, f.a)
	if err != nil {
		return nil, err
	}

	ext := oddExtend(x, padlen)

	y := lfilter(f.b, f.a, ext, scaled(zi, ext[0]))
	reverse(y)
	y = lfilter(f.b, f.a, y, scaled(zi, y[0]))
	reverse(y)

	return y[padlen : len(y)-padlen], nil
}

// lfilter applies the filter in direct-form II transposed with initial
// state z (length ntaps-1, consumed).
func lfilter(b, a, x, z []float64) []float64 {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	bp := padded(b, n)
	ap := padded(a, n)

	y := make([]float64, len(x))
	for i, xi := range x {
		yi := bp[0]*xi + z[0]
		for j := 0; j < n-2; j++ {
			z[j] = bp[j+1]*xi + z[j+1] - ap[j+1]*yi
		}
		z[n-2] = bp[n-1]*xi - ap[n-1]*yi
		y[i] = yi
	}
	return y
}

// steadyState computes the initial filter state that makes the step
// response start in equilibrium, by solving (I - A^T) zi = B where A is the
// companion matrix of the denominator.
func steadyState(b, a []float64) ([]float64, error) {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	m := n - 1
	bp := padded(b, n)
	ap := padded(a, n)

	data := make([]float64, m*m)
	for i := 0; i < m; i++ {
		// column 0 picks up the companion coefficients
		data[i*m] = ap[i+1]
		if i == 0 {
			data[0] += 1
		} else {
			data[i*m+i] = 1
		}
		if i+1 < m {
			data[i*m+i+1] -= 1
		}
	}
	M := mat.NewDense(m, m, data)

	rhs := make([]float64, m)
	for i := 0; i < m; i++ {
		rhs[i] = bp[i+1] - ap[i+1]*bp[0]
	}

	var zi mat.VecDense
	if err := zi.SolveVec(M, mat.NewVecDense(m, rhs)); err != nil {
		return nil, fmt.Errorf("filter state solve failed: %w", err)
	}

	out := make([]float64, m)
	for i := range out {
		out[i] = zi.AtVec(i)
	}
	return out, nil
}

// oddExtend reflects padlen samples about each endpoint with odd symmetry,
// which preserves the signal's value and slope across the boundary.
func oddExtend(x []float64, padlen int) []float64 {
	n := len(x)
	ext := make([]float64, padlen+n+padlen)
	copy(ext[padlen:], x)
	for i := 0; i < padlen; i++ {
		ext[i] = 2*x[0] - x[padlen-i]
		ext[padlen+n+i] = 2*x[n-1] - x[n-2-i]
	}
	return ext
}

// polyFromRoots expands a set of complex roots into real polynomial
// coefficients, highest order first.
func polyFromRoots(roots []complex128) []float64 {
	coeffs := []complex128{1}
	for _, r := range roots {
		next := make([]complex128, len(coeffs)+1)
		for i, c := range coeffs {
			next[i] += c
			next[i+1] -= c * r
		}
		coeffs = next
	}
	out := make([]float64, len(coeffs))
	for i, c := range coeffs {
		out[i] = real(c)
	}
	return out
}

func padded(v []float64, n int) []float64 {
	if len(v) == n {
		return v
	}
	out := make([]float64, n)
	copy(out, v)
	return out
}

func scaled(v []float64, s float64) []float64 {
	out := make([]float64, len(v))
	for i, z := range v {
		out[i] = z * s
	}
	return out
}

func reverse(v []float64) {
	for i, j := 0, len(v)-1; i < j; i, j = i+1, j-1 {
		v[i], v[j] = v[j], v[i]
	}
}
