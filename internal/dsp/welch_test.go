package dsp

import (
	"errors"
	"math"
	"testing"
)

func sine(freq, fs float64, n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = math.Sin(2 * math.Pi * freq * float64(i) / fs)
	}
	return x
}

func TestWelchPureSine(t *testing.T) {
	const fs = 100.0
	psd, err := Welch(sine(10, fs, 1000), fs, 4)
	if err != nil {
		t.Fatal(err)
	}
	if psd.Degraded {
		t.Error("1000 samples cover two full 4 s segments; estimate must not be degraded")
	}
	if psd.Freqs[0] != 0 {
		t.Errorf("first bin should be DC, got %v", psd.Freqs[0])
	}
	if last := psd.Freqs[len(psd.Freqs)-1]; math.Abs(last-fs/2) > 1e-9 {
		t.Errorf("last bin should be Nyquist (%v), got %v", fs/2, last)
	}
	for i := 1; i < len(psd.Freqs); i++ {
		if psd.Freqs[i] <= psd.Freqs[i-1] {
			t.Fatalf("frequency bins not strictly increasing at %d", i)
		}
	}

	dom, err := DominantFrequency(psd, 0.5, 45)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(dom-10) > psd.Resolution() {
		t.Errorf("expected dominant frequency 10 Hz +/- %v, got %v", psd.Resolution(), dom)
	}
}

func TestWelchShortSignalFallback(t *testing.T) {
	const fs = 100.0
	// 150 samples < one 4 s segment: single-periodogram fallback
	psd, err := Welch(sine(10, fs, 150), fs, 4)
	if err != nil {
		t.Fatal(err)
	}
	if !psd.Degraded {
		t.Error("expected degraded flag for sub-segment signal")
	}

	dom, err := DominantFrequency(psd, 0.5, 45)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(dom-10) > psd.Resolution() {
		t.Errorf("expected dominant frequency 10 Hz +/- %v, got %v", psd.Resolution(), dom)
	}
}

func TestWelchInvalidInput(t *testing.T) {
	if _, err := Welch(sine(10, 100, 100), 0, 4); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("zero fs: expected ErrInvalidConfig, got %v", err)
	}
	if _, err := Welch(sine(10, 100, 100), 100, 0); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("zero segment: expected ErrInvalidConfig, got %v", err)
	}
	if _, err := Welch([]float64{1}, 100, 4); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("single sample: expected ErrInsufficientData, got %v", err)
	}
}

func TestDominantFrequencyEmptyRange(t *testing.T) {
	psd, err := Welch(sine(10, 100, 1000), 100, 4)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := DominantFrequency(psd, 49.9, 49.95); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData for empty bin range, got %v", err)
	}
}

func TestBandPower(t *testing.T) {
	const fs = 100.0
	psd, err := Welch(sine(10, fs, 2000), fs, 4)
	if err != nil {
		t.Fatal(err)
	}

	bands := StandardEEGBands()
	powers := make(map[string]float64, len(bands))
	for _, b := range bands {
		powers[b.Name] = BandPower(psd, b)
	}

	// a 10 Hz tone concentrates in Alpha [8,12)
	for _, name := range []string{"Delta", "Theta", "Beta", "Gamma"} {
		if powers[name] >= powers["Alpha"] {
			t.Errorf("Alpha power (%v) should dominate %s (%v) for a 10 Hz tone",
				powers["Alpha"], name, powers[name])
		}
	}
	if powers["Alpha"] <= 0 {
		t.Errorf("Alpha power must be positive, got %v", powers["Alpha"])
	}
}

func TestInAlphaBand(t *testing.T) {
	tests := []struct {
		freq float64
		want bool
	}{
		{freq: 8, want: true},
		{freq: 10, want: true},
		{freq: 12, want: true},
		{freq: 7.9, want: false},
		{freq: 12.1, want: false},
		{freq: 0, want: false},
	}
	for _, tt := range tests {
		if got := InAlphaBand(tt.freq); got != tt.want {
			t.Errorf("InAlphaBand(%v) = %v, want %v", tt.freq, got, tt.want)
		}
	}
}
