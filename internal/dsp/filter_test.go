package dsp

import (
	"errors"
	"math"
	"testing"
)

func eegSpec() FilterSpec {
	return FilterSpec{Order: 4, LowCutoffHz: 1, HighCutoffHz: 45, SampleRateHz: 100}
}

func TestNewBandPassInvalidSpec(t *testing.T) {
	tests := []struct {
		name string
		spec FilterSpec
	}{
		{name: "zero order", spec: FilterSpec{Order: 0, LowCutoffHz: 1, HighCutoffHz: 45, SampleRateHz: 100}},
		{name: "zero sample rate", spec: FilterSpec{Order: 4, LowCutoffHz: 1, HighCutoffHz: 45, SampleRateHz: 0}},
		{name: "low equals high", spec: FilterSpec{Order: 4, LowCutoffHz: 10, HighCutoffHz: 10, SampleRateHz: 100}},
		{name: "low above high", spec: FilterSpec{Order: 4, LowCutoffHz: 20, HighCutoffHz: 10, SampleRateHz: 100}},
		{name: "high at nyquist", spec: FilterSpec{Order: 4, LowCutoffHz: 1, HighCutoffHz: 50, SampleRateHz: 100}},
		{name: "high above nyquist", spec: FilterSpec{Order: 3, LowCutoffHz: 0.5, HighCutoffHz: 80, SampleRateHz: 100}},
		{name: "zero low cutoff", spec: FilterSpec{Order: 3, LowCutoffHz: 0, HighCutoffHz: 40, SampleRateHz: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewBandPass(tt.spec); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestApplyRemovesDC(t *testing.T) {
	f, err := NewBandPass(eegSpec())
	if err != nil {
		t.Fatal(err)
	}

	x := make([]float64, 500)
	for i := range x {
		x[i] = 512.0 // constant ADC offset
	}

	y, err := f.Apply(x)
	if err != nil {
		t.Fatal(err)
	}
	if len(y) != len(x) {
		t.Fatalf("expected %d output samples, got %d", len(x), len(y))
	}

	var mean float64
	for _, v := range y {
		mean += v
	}
	mean /= float64(len(y))
	if math.Abs(mean) > 1e-6 {
		t.Errorf("band-pass should remove DC, got mean %v", mean)
	}
}

func TestApplyZeroPhase(t *testing.T) {
	f, err := NewBandPass(eegSpec())
	if err != nil {
		t.Fatal(err)
	}

	// symmetric 10 Hz burst centered at index 250
	const center = 250
	const fs = 100.0
	x := make([]float64, 500)
	for i := range x {
		d := float64(i - center)
		env := math.Exp(-d * d / (2 * 20 * 20))
		x[i] = env * math.Cos(2*math.Pi*10*d/fs)
	}

	y, err := f.Apply(x)
	if err != nil {
		t.Fatal(err)
	}

	best := 0
	for i, v := range y {
		if v > y[best] {
			best = i
		}
	}
	if best < center-1 || best > center+1 {
		t.Errorf("pulse center shifted: expected %d +/- 1, got %d", center, best)
	}
}

func TestApplyPassAndStopBands(t *testing.T) {
	f, err := NewBandPass(eegSpec())
	if err != nil {
		t.Fatal(err)
	}

	const fs = 100.0
	n := 2000

	rms := func(v []float64) float64 {
		var s float64
		for _, x := range v {
			s += x * x
		}
		return math.Sqrt(s / float64(len(v)))
	}

	// 10 Hz sits in the middle of the pass band
	pass := make([]float64, n)
	for i := range pass {
		pass[i] = math.Sin(2 * math.Pi * 10 * float64(i) / fs)
	}
	yPass, err := f.Apply(pass)
	if err != nil {
		t.Fatal(err)
	}
	// compare away from the edges
	if r := rms(yPass[200 : n-200]); math.Abs(r-rms(pass[200:n-200])) > 0.05*rms(pass[200:n-200]) {
		t.Errorf("pass-band 10 Hz tone attenuated: rms %v", r)
	}

	// 0.1 Hz is deep in the stop band
	stop := make([]float64, n)
	for i := range stop {
		stop[i] = math.Sin(2 * math.Pi * 0.1 * float64(i) / fs)
	}
	yStop, err := f.Apply(stop)
	if err != nil {
		t.Fatal(err)
	}
	if r := rms(yStop[200 : n-200]); r > 0.01*rms(stop[200:n-200]) {
		t.Errorf("stop-band 0.1 Hz tone not attenuated: rms %v", r)
	}
}

func TestApplyShortSignal(t *testing.T) {
	f, err := NewBandPass(eegSpec())
	if err != nil {
		t.Fatal(err)
	}

	// order 4 band-pass has 9 taps; padding needs more than 24 samples
	if _, err := f.Apply(make([]float64, 24)); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData for 24 samples, got %v", err)
	}
	if _, err := f.Apply(make([]float64, 25)); err != nil {
		t.Errorf("25 samples should be filterable, got %v", err)
	}
}

func TestCoefficientsNormalized(t *testing.T) {
	specs := []FilterSpec{
		eegSpec(),
		{Order: 3, LowCutoffHz: 0.5, HighCutoffHz: 40, SampleRateHz: 100},
	}
	for _, spec := range specs {
		f, err := NewBandPass(spec)
		if err != nil {
			t.Fatal(err)
		}
		b, a := f.Coefficients()
		if len(b) != 2*spec.Order+1 || len(a) != 2*spec.Order+1 {
			t.Errorf("order %d: expected %d coefficients, got b=%d a=%d",
				spec.Order, 2*spec.Order+1, len(b), len(a))
		}
		if math.Abs(a[0]-1) > 1e-12 {
			t.Errorf("denominator not monic: a[0]=%v", a[0])
		}
	}
}
