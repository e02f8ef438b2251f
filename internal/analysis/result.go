package analysis

import (
	"fmt"
	"time"

	"github.com/EduLodi/trab-final-instrmed/internal/dsp"
	"github.com/EduLodi/trab-final-instrmed/internal/types"
	"github.com/jackc/pgtype"
)

// EEGFeatures holds the spectral features of one EEG run. The dominant
// frequency is the single scalar feature of record; the band power table is
// informational, derived by slicing the PSD for display.
type EEGFeatures struct {
	DominantFreqHz float64            `json:"dominant_freq_hz"`
	AlphaDominant  bool               `json:"alpha_dominant"`
	PSD            *dsp.PSDEstimate   `json:"psd"`
	BandPowers     map[string]float64 `json:"band_powers"`
	Degraded       bool               `json:"degraded"`
}

// ECGFeatures holds the beat-timing features of one ECG run. When fewer
// than the minimum number of QRS peaks were found, InsufficientData is set
// and the heart-rate fields are zero.
type ECGFeatures struct {
	Peaks            []int     `json:"peaks"`
	RRIntervalsSec   []float64 `json:"rr_intervals_sec"`
	PeakCount        int       `json:"peak_count"`
	MeanHR           float64   `json:"mean_hr"`
	MinHR            float64   `json:"min_hr"`
	MaxHR            float64   `json:"max_hr"`
	SDNNMilliseconds float64   `json:"sdnn_ms"`
	InsufficientData bool      `json:"insufficient_data"`
}

// Result is the output of one analysis run. Exactly one of EEG or ECG is
// populated, matching SignalType. Raw, Filtered and TimeAxis are retained
// for plotting consumers and share the batch's alignment.
type Result struct {
	RunID        string           `json:"run_id"`
	SourceName   string           `json:"source_name"`
	SignalType   types.SignalType `json:"signal_type"`
	StartedAt    time.Time        `json:"started_at"`
	CompletedAt  time.Time        `json:"completed_at"`
	SampleCount  int              `json:"sample_count"`
	SampleRateHz float64          `json:"sample_rate_hz"`

	TimeAxis []float64 `json:"time_axis,omitempty"`
	Raw      []float64 `json:"raw,omitempty"`
	Filtered []float64 `json:"filtered,omitempty"`

	EEG *EEGFeatures `json:"eeg,omitempty"`
	ECG *ECGFeatures `json:"ecg,omitempty"`
}

// ToRecord flattens a Result into its storable form.
func (r *Result) ToRecord() (types.AnalysisRecord, error) {
	rec := types.AnalysisRecord{
		RunID:        r.RunID,
		CompletedAt:  r.CompletedAt,
		SourceName:   r.SourceName,
		SignalType:   string(r.SignalType),
		SampleCount:  r.SampleCount,
		SampleRateHz: r.SampleRateHz,
	}

	var err error
	if r.EEG != nil {
		rec.DominantFreqHz = r.EEG.DominantFreqHz
		rec.AlphaDominant = r.EEG.AlphaDominant
		rec.Degraded = r.EEG.Degraded
		if rec.PSDFreqs, err = jsonbFrom(r.EEG.PSD.Freqs); err != nil {
			return rec, err
		}
		if rec.PSDPower, err = jsonbFrom(r.EEG.PSD.Power); err != nil {
			return rec, err
		}
		if rec.Peaks, err = jsonbFrom([]int{}); err != nil {
			return rec, err
		}
		if rec.RRIntervals, err = jsonbFrom([]float64{}); err != nil {
			return rec, err
		}
	}
	if r.ECG != nil {
		rec.PeakCount = r.ECG.PeakCount
		rec.MeanHR = r.ECG.MeanHR
		rec.MinHR = r.ECG.MinHR
		rec.MaxHR = r.ECG.MaxHR
		rec.SDNNMilliseconds = r.ECG.SDNNMilliseconds
		rec.InsufficientData = r.ECG.InsufficientData
		if rec.Peaks, err = jsonbFrom(emptyIfNil(r.ECG.Peaks)); err != nil {
			return rec, err
		}
		if rec.RRIntervals, err = jsonbFrom(emptyIfNil(r.ECG.RRIntervalsSec)); err != nil {
			return rec, err
		}
		if rec.PSDFreqs, err = jsonbFrom([]float64{}); err != nil {
			return rec, err
		}
		if rec.PSDPower, err = jsonbFrom([]float64{}); err != nil {
			return rec, err
		}
	}

	return rec, nil
}

func jsonbFrom(v interface{}) (pgtype.JSONB, error) {
	var jb pgtype.JSONB
	if err := jb.Set(v); err != nil {
		return jb, fmt.Errorf("could not encode payload: %w", err)
	}
	return jb, nil
}

func emptyIfNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
