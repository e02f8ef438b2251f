package analysis

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// MinQRSPeaks is the smallest peak count that yields a trustworthy
// heart-rate analysis; below it the run reports insufficient data.
const MinQRSPeaks = 3

// aggregateECG derives heart-rate statistics from detected QRS peak
// indices. RR intervals are successive index differences over the sampling
// rate; the heart-rate series is 60/RR in bpm. SDNN uses the population
// standard deviation of the RR intervals, reported in milliseconds.
func aggregateECG(peaks []int, fs float64) *ECGFeatures {
	if len(peaks) < MinQRSPeaks {
		return &ECGFeatures{
			Peaks:            peaks,
			PeakCount:        len(peaks),
			InsufficientData: true,
		}
	}

	rr := make([]float64, len(peaks)-1)
	hr := make([]float64, len(peaks)-1)
	for i := 1; i < len(peaks); i++ {
		rr[i-1] = float64(peaks[i]-peaks[i-1]) / fs
		hr[i-1] = 60 / rr[i-1]
	}

	return &ECGFeatures{
		Peaks:            peaks,
		RRIntervalsSec:   rr,
		PeakCount:        len(peaks),
		MeanHR:           stat.Mean(hr, nil),
		MinHR:            floats.Min(hr),
		MaxHR:            floats.Max(hr),
		SDNNMilliseconds: stat.PopStdDev(rr, nil) * 1000,
	}
}
