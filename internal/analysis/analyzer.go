// Package analysis sequences the dsp stages into complete EEG and ECG
// analysis runs and aggregates their features into result records.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/EduLodi/trab-final-instrmed/internal/dsp"
	"github.com/EduLodi/trab-final-instrmed/internal/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config carries the tunable pipeline parameters. The defaults reproduce
// the reference behavior; they are simple heuristics, not clinically
// validated settings.
type Config struct {
	EEGFilterOrder  int     `yaml:"eeg_filter_order" json:"eeg_filter_order"`
	EEGBandLowHz    float64 `yaml:"eeg_band_low_hz" json:"eeg_band_low_hz"`
	EEGBandHighHz   float64 `yaml:"eeg_band_high_hz" json:"eeg_band_high_hz"`
	ECGFilterOrder  int     `yaml:"ecg_filter_order" json:"ecg_filter_order"`
	ECGBandLowHz    float64 `yaml:"ecg_band_low_hz" json:"ecg_band_low_hz"`
	ECGBandHighHz   float64 `yaml:"ecg_band_high_hz" json:"ecg_band_high_hz"`
	WelchSegmentSec float64 `yaml:"welch_segment_sec" json:"welch_segment_sec"`
}

// DefaultConfig returns the documented pipeline defaults: EEG order 4 with
// a 1-45 Hz pass-band, ECG order 3 with 0.5-40 Hz, 4-second Welch windows.
func DefaultConfig() Config {
	return Config{
		EEGFilterOrder:  4,
		EEGBandLowHz:    1,
		EEGBandHighHz:   45,
		ECGFilterOrder:  3,
		ECGBandLowHz:    0.5,
		ECGBandHighHz:   40,
		WelchSegmentSec: 4,
	}
}

// Analyzer runs the batch analysis pipeline. It holds no per-run state:
// every Run owns its own buffers, so a single Analyzer may serve
// concurrent runs without synchronization.
type Analyzer struct {
	cfg    Config
	logger *zap.SugaredLogger
}

// New creates an Analyzer. Zero-valued config fields fall back to the
// documented defaults; filter specs themselves are validated per run
// against the batch's sampling rate.
func New(cfg Config, logger *zap.SugaredLogger) *Analyzer {
	def := DefaultConfig()
	if cfg.EEGFilterOrder == 0 {
		cfg.EEGFilterOrder = def.EEGFilterOrder
	}
	if cfg.EEGBandLowHz == 0 {
		cfg.EEGBandLowHz = def.EEGBandLowHz
	}
	if cfg.EEGBandHighHz == 0 {
		cfg.EEGBandHighHz = def.EEGBandHighHz
	}
	if cfg.ECGFilterOrder == 0 {
		cfg.ECGFilterOrder = def.ECGFilterOrder
	}
	if cfg.ECGBandLowHz == 0 {
		cfg.ECGBandLowHz = def.ECGBandLowHz
	}
	if cfg.ECGBandHighHz == 0 {
		cfg.ECGBandHighHz = def.ECGBandHighHz
	}
	if cfg.WelchSegmentSec == 0 {
		cfg.WelchSegmentSec = def.WelchSegmentSec
	}
	return &Analyzer{cfg: cfg, logger: logger}
}

// Run executes one batch analysis over the sample buffer. It checks for
// cancellation between major stages; a run never retries internally and
// never terminates the host on bad input.
func (a *Analyzer) Run(ctx context.Context, batch types.SampleBatch) (*Result, error) {
	started := time.Now()

	if _, err := types.ParseSignalType(string(batch.SignalType)); err != nil {
		return nil, fmt.Errorf("%v: %w", err, dsp.ErrInvalidConfig)
	}

	axis, err := dsp.TimeAxis(len(batch.Samples), batch.SampleRateHz)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{
		RunID:        uuid.New().String(),
		SourceName:   batch.SourceName,
		SignalType:   batch.SignalType,
		StartedAt:    started,
		SampleCount:  len(batch.Samples),
		SampleRateHz: batch.SampleRateHz,
		TimeAxis:     axis,
		Raw:          batch.Samples,
	}

	switch batch.SignalType {
	case types.SignalEEG:
		err = a.runEEG(ctx, batch, result)
	case types.SignalECG:
		err = a.runECG(ctx, batch, result)
	}
	if err != nil {
		return nil, err
	}

	result.CompletedAt = time.Now()
	return result, nil
}

// runEEG filters for visualization, estimates the PSD over the unfiltered
// signal and extracts spectral features.
func (a *Analyzer) runEEG(ctx context.Context, batch types.SampleBatch, result *Result) error {
	filter, err := dsp.NewBandPass(dsp.FilterSpec{
		Order:        a.cfg.EEGFilterOrder,
		LowCutoffHz:  a.cfg.EEGBandLowHz,
		HighCutoffHz: a.cfg.EEGBandHighHz,
		SampleRateHz: batch.SampleRateHz,
	})
	if err != nil {
		return err
	}

	filtered, err := filter.Apply(batch.Samples)
	switch {
	case errors.Is(err, dsp.ErrInsufficientData):
		// spectral features may still be computable; keep going without
		// the filtered trace
		a.logger.Warnf("EEG run %s: %v", result.RunID, err)
	case err != nil:
		return err
	default:
		result.Filtered = filtered
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	psd, err := dsp.Welch(batch.Samples, batch.SampleRateHz, a.cfg.WelchSegmentSec)
	if err != nil {
		return err
	}
	if psd.Degraded {
		a.logger.Warnf("EEG run %s: signal shorter than one Welch segment, using single-periodogram fallback", result.RunID)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	eeg, err := aggregateEEG(psd)
	if err != nil {
		return err
	}
	result.EEG = eeg
	return nil
}

// runECG band-limits the signal, locates QRS peaks and aggregates the
// heart-rate features.
func (a *Analyzer) runECG(ctx context.Context, batch types.SampleBatch, result *Result) error {
	filter, err := dsp.NewBandPass(dsp.FilterSpec{
		Order:        a.cfg.ECGFilterOrder,
		LowCutoffHz:  a.cfg.ECGBandLowHz,
		HighCutoffHz: a.cfg.ECGBandHighHz,
		SampleRateHz: batch.SampleRateHz,
	})
	if err != nil {
		return err
	}

	filtered, err := filter.Apply(batch.Samples)
	if errors.Is(err, dsp.ErrInsufficientData) {
		a.logger.Warnf("ECG run %s: %v", result.RunID, err)
		result.ECG = &ECGFeatures{InsufficientData: true}
		return nil
	}
	if err != nil {
		return err
	}
	result.Filtered = filtered

	if err := ctx.Err(); err != nil {
		return err
	}

	peaks, err := dsp.DetectPeaks(filtered, batch.SampleRateHz)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	result.ECG = aggregateECG(peaks, batch.SampleRateHz)
	if result.ECG.InsufficientData {
		a.logger.Warnf("ECG run %s: only %d QRS peaks detected, not enough for a reliable analysis",
			result.RunID, result.ECG.PeakCount)
	}
	return nil
}
