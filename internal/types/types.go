// Package types defines the shared data contracts passed between the
// acquisition sources, the analysis pipeline and the storage backends.
package types

import (
	"fmt"
	"time"

	"github.com/jackc/pgtype"
)

// SignalType selects the analysis path for a sample stream.
type SignalType string

const (
	SignalEEG SignalType = "eeg"
	SignalECG SignalType = "ecg"
)

// ParseSignalType validates a signal-type selector from config or an API
// request. Anything other than "eeg" or "ecg" is an invalid configuration.
func ParseSignalType(s string) (SignalType, error) {
	switch SignalType(s) {
	case SignalEEG:
		return SignalEEG, nil
	case SignalECG:
		return SignalECG, nil
	default:
		return "", fmt.Errorf("unknown signal type %q (must be 'eeg' or 'ecg')", s)
	}
}

// SampleBatch is a finite run of already-decoded amplitude readings from a
// single source. Batches are immutable once sent: a source hands the slice
// to the distributor and never touches it again.
type SampleBatch struct {
	SourceName   string
	SignalType   SignalType
	SampleRateHz float64
	Samples      []float64
	ReceivedAt   time.Time
}

// AnalysisRecord is the flat, storable form of one analysis run. Scalar
// features live in their own columns; variable-length payloads (peak
// indices, RR intervals, PSD bins) are kept as JSONB.
type AnalysisRecord struct {
	RunID        string    `gorm:"column:run_id;primaryKey" json:"run_id"`
	CompletedAt  time.Time `gorm:"column:completed_at;not null" json:"completed_at"`
	SourceName   string    `gorm:"column:source_name;not null" json:"source_name"`
	SignalType   string    `gorm:"column:signal_type;not null" json:"signal_type"`
	SampleCount  int       `gorm:"column:sample_count" json:"sample_count"`
	SampleRateHz float64   `gorm:"column:sample_rate_hz" json:"sample_rate_hz"`

	// EEG features
	DominantFreqHz float64 `gorm:"column:dominant_freq_hz" json:"dominant_freq_hz,omitempty"`
	AlphaDominant  bool    `gorm:"column:alpha_dominant" json:"alpha_dominant,omitempty"`
	Degraded       bool    `gorm:"column:degraded" json:"degraded,omitempty"`

	// ECG features
	PeakCount        int     `gorm:"column:peak_count" json:"peak_count,omitempty"`
	MeanHR           float64 `gorm:"column:mean_hr" json:"mean_hr,omitempty"`
	MinHR            float64 `gorm:"column:min_hr" json:"min_hr,omitempty"`
	MaxHR            float64 `gorm:"column:max_hr" json:"max_hr,omitempty"`
	SDNNMilliseconds float64 `gorm:"column:sdnn_ms" json:"sdnn_ms,omitempty"`
	InsufficientData bool    `gorm:"column:insufficient_data" json:"insufficient_data,omitempty"`

	// Variable-length payloads
	Peaks       pgtype.JSONB `gorm:"column:peaks;type:jsonb;default:'[]'" json:"peaks,omitempty"`
	RRIntervals pgtype.JSONB `gorm:"column:rr_intervals;type:jsonb;default:'[]'" json:"rr_intervals,omitempty"`
	PSDFreqs    pgtype.JSONB `gorm:"column:psd_freqs;type:jsonb;default:'[]'" json:"psd_freqs,omitempty"`
	PSDPower    pgtype.JSONB `gorm:"column:psd_power;type:jsonb;default:'[]'" json:"psd_power,omitempty"`
}

// TableName implements the GORM Tabler interface
func (AnalysisRecord) TableName() string {
	return "analysis_runs"
}
