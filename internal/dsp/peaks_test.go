package dsp

import (
	"errors"
	"testing"
)

func pulseTrain(n, period, offset int) []float64 {
	x := make([]float64, n)
	for i := offset; i < n; i += period {
		x[i] = 1
	}
	return x
}

func TestDetectPeaksPulseTrain(t *testing.T) {
	const fs = 100.0
	const period = 50
	x := pulseTrain(500, period, 25)

	peaks, err := DetectPeaks(x, fs)
	if err != nil {
		t.Fatal(err)
	}
	if len(peaks) != 10 {
		t.Fatalf("expected 10 peaks, got %d (%v)", len(peaks), peaks)
	}
	for i, p := range peaks {
		if want := 25 + i*period; p != want {
			t.Errorf("peak %d: expected index %d, got %d", i, want, p)
		}
	}
}

func TestDetectPeaksRefractory(t *testing.T) {
	const fs = 100.0 // refractory of ceil(0.3*100) = 30 samples
	x := pulseTrain(300, 20, 20)

	peaks, err := DetectPeaks(x, fs)
	if err != nil {
		t.Fatal(err)
	}
	if len(peaks) == 0 {
		t.Fatal("expected some peaks")
	}
	if peaks[0] != 20 {
		t.Errorf("greedy acceptance should keep the first pulse, got %d", peaks[0])
	}
	for i := 1; i < len(peaks); i++ {
		if d := peaks[i] - peaks[i-1]; d < 30 {
			t.Errorf("refractory violated between %d and %d (distance %d)", peaks[i-1], peaks[i], d)
		}
	}
}

func TestDetectPeaksFlatLine(t *testing.T) {
	peaks, err := DetectPeaks(make([]float64, 200), 100)
	if err != nil {
		t.Fatalf("flat line must not error, got %v", err)
	}
	if len(peaks) != 0 {
		t.Errorf("flat line has no peaks, got %v", peaks)
	}
}

func TestDetectPeaksPlateau(t *testing.T) {
	x := make([]float64, 100)
	x[40], x[41], x[42] = 1, 1, 1

	peaks, err := DetectPeaks(x, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(peaks) != 1 || peaks[0] != 41 {
		t.Errorf("expected single plateau peak at midpoint 41, got %v", peaks)
	}
}

func TestDetectPeaksBelowThreshold(t *testing.T) {
	// one dominant spike pushes the mean+0.5*std threshold above the
	// small ripples, which must then be rejected
	x := make([]float64, 400)
	x[100] = 10
	x[200] = 10
	x[300] = 10
	x[50] = 0.01
	x[250] = 0.01

	peaks, err := DetectPeaks(x, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(peaks) != 3 {
		t.Fatalf("expected the 3 dominant spikes only, got %v", peaks)
	}
	for i, want := range []int{100, 200, 300} {
		if peaks[i] != want {
			t.Errorf("peak %d: expected %d, got %d", i, want, peaks[i])
		}
	}
}

func TestDetectPeaksInvalidInput(t *testing.T) {
	if _, err := DetectPeaks(make([]float64, 100), 0); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("zero fs: expected ErrInvalidConfig, got %v", err)
	}
	if _, err := DetectPeaks([]float64{1, 2}, 100); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("2 samples: expected ErrInsufficientData, got %v", err)
	}
}
