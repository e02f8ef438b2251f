package analysis

import (
	"math"
	"testing"
)

func TestAggregateECG(t *testing.T) {
	tests := []struct {
		name     string
		peaks    []int
		fs       float64
		wantRR   []float64
		wantMean float64
		wantMin  float64
		wantMax  float64
		wantSDNN float64
	}{
		{
			name:     "steady 60 bpm",
			peaks:    []int{100, 200, 300},
			fs:       100,
			wantRR:   []float64{1.0, 1.0},
			wantMean: 60,
			wantMin:  60,
			wantMax:  60,
			wantSDNN: 0,
		},
		{
			name:     "varying intervals",
			peaks:    []int{0, 100, 150, 250},
			fs:       100,
			wantRR:   []float64{1.0, 0.5, 1.0},
			wantMean: (60 + 120 + 60) / 3.0,
			wantMin:  60,
			wantMax:  120,
			// population std of [1.0, 0.5, 1.0] in ms
			wantSDNN: math.Sqrt(1.0/18.0) * 1000,
		},
	}

	const eps = 1e-9
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := aggregateECG(tt.peaks, tt.fs)
			if f.InsufficientData {
				t.Fatal("unexpected insufficient-data flag")
			}
			if f.PeakCount != len(tt.peaks) {
				t.Errorf("peak count: expected %d, got %d", len(tt.peaks), f.PeakCount)
			}
			if len(f.RRIntervalsSec) != len(tt.wantRR) {
				t.Fatalf("expected %d RR intervals, got %d", len(tt.wantRR), len(f.RRIntervalsSec))
			}
			for i, rr := range f.RRIntervalsSec {
				if math.Abs(rr-tt.wantRR[i]) > eps {
					t.Errorf("RR[%d]: expected %v, got %v", i, tt.wantRR[i], rr)
				}
			}
			if math.Abs(f.MeanHR-tt.wantMean) > eps {
				t.Errorf("mean HR: expected %v, got %v", tt.wantMean, f.MeanHR)
			}
			if math.Abs(f.MinHR-tt.wantMin) > eps {
				t.Errorf("min HR: expected %v, got %v", tt.wantMin, f.MinHR)
			}
			if math.Abs(f.MaxHR-tt.wantMax) > eps {
				t.Errorf("max HR: expected %v, got %v", tt.wantMax, f.MaxHR)
			}
			if math.Abs(f.SDNNMilliseconds-tt.wantSDNN) > 1e-6 {
				t.Errorf("SDNN: expected %v ms, got %v ms", tt.wantSDNN, f.SDNNMilliseconds)
			}
		})
	}
}

func TestAggregateECGInsufficientPeaks(t *testing.T) {
	for _, peaks := range [][]int{nil, {100}, {100, 200}} {
		f := aggregateECG(peaks, 100)
		if !f.InsufficientData {
			t.Errorf("peaks %v: expected insufficient-data flag", peaks)
		}
		if f.MeanHR != 0 || f.SDNNMilliseconds != 0 {
			t.Errorf("peaks %v: heart-rate fields must stay zero", peaks)
		}
		if f.PeakCount != len(peaks) {
			t.Errorf("peaks %v: peak count %d", peaks, f.PeakCount)
		}
	}
}
