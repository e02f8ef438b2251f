package analysis

import (
	"github.com/EduLodi/trab-final-instrmed/internal/dsp"
)

// Bounds of the dominant-frequency search, excluding the DC leakage region
// below and line-noise territory above.
const (
	dominantSearchLowHz  = 0.5
	dominantSearchHighHz = 45.0
)

// aggregateEEG extracts the dominant frequency from a PSD estimate and
// slices it into the standard band power table.
func aggregateEEG(psd *dsp.PSDEstimate) (*EEGFeatures, error) {
	dominant, err := dsp.DominantFrequency(psd, dominantSearchLowHz, dominantSearchHighHz)
	if err != nil {
		return nil, err
	}

	bands := dsp.StandardEEGBands()
	powers := make(map[string]float64, len(bands))
	for _, b := range bands {
		powers[b.Name] = dsp.BandPower(psd, b)
	}

	return &EEGFeatures{
		DominantFreqHz: dominant,
		AlphaDominant:  dsp.InAlphaBand(dominant),
		PSD:            psd,
		BandPowers:     powers,
		Degraded:       psd.Degraded,
	}, nil
}
