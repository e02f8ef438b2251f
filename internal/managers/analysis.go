package managers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/EduLodi/trab-final-instrmed/internal/analysis"
	"github.com/EduLodi/trab-final-instrmed/internal/dsp"
	"github.com/EduLodi/trab-final-instrmed/internal/log"
	"github.com/EduLodi/trab-final-instrmed/internal/types"
	"github.com/EduLodi/trab-final-instrmed/pkg/config"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// defaultWindowSeconds is used when a source does not set window_seconds
const defaultWindowSeconds = 30

// defaultWorkers sizes the analysis pool when analysis.workers is unset
const defaultWorkers = 4

// AnalysisManager accumulates incoming sample batches into per-source
// windows and dispatches full windows to a bounded worker pool. The pool
// gives backpressure for free: when every worker is busy, window
// submissions block the collector instead of stacking goroutines.
type AnalysisManager struct {
	ctx               context.Context
	wg                *sync.WaitGroup
	analyzer          *analysis.Analyzer
	pool              *ants.Pool
	batchDistributor  chan types.SampleBatch
	recordDistributor chan types.AnalysisRecord
	cache             *analysis.ResultCache
	logger            *zap.SugaredLogger
	windows           map[string]*windowAccumulator
}

// windowAccumulator collects samples for one source until a full analysis
// window is available.
type windowAccumulator struct {
	target  int
	samples []float64
}

// NewAnalysisManager creates an AnalysisManager with per-source window
// sizes taken from configuration.
func NewAnalysisManager(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, batchDistributor chan types.SampleBatch, recordDistributor chan types.AnalysisRecord, cache *analysis.ResultCache, logger *zap.SugaredLogger) (*AnalysisManager, error) {
	cfgData, err := configProvider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %v", err)
	}

	workers := cfgData.Analysis.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("could not create analysis worker pool: %v", err)
	}

	am := &AnalysisManager{
		ctx:               ctx,
		wg:                wg,
		analyzer:          analysis.New(analyzerConfig(cfgData.Analysis), logger),
		pool:              pool,
		batchDistributor:  batchDistributor,
		recordDistributor: recordDistributor,
		cache:             cache,
		logger:            logger,
		windows:           make(map[string]*windowAccumulator),
	}

	for _, src := range cfgData.Sources {
		windowSec := src.WindowSeconds
		if windowSec <= 0 {
			windowSec = defaultWindowSeconds
		}
		target := int(windowSec * src.SampleRateHz)
		if target < 1 {
			return nil, fmt.Errorf("source [%s] yields an empty analysis window", src.Name)
		}
		am.windows[src.Name] = &windowAccumulator{target: target}
	}

	return am, nil
}

// analyzerConfig maps the configuration section onto pipeline parameters
func analyzerConfig(a config.AnalysisData) analysis.Config {
	return analysis.Config{
		EEGFilterOrder:  a.EEGFilterOrder,
		EEGBandLowHz:    a.EEGBandLowHz,
		EEGBandHighHz:   a.EEGBandHighHz,
		ECGFilterOrder:  a.ECGFilterOrder,
		ECGBandLowHz:    a.ECGBandLowHz,
		ECGBandHighHz:   a.ECGBandHighHz,
		WelchSegmentSec: a.WelchSegmentSec,
	}
}

// StartAnalysisManager launches the window collector loop
func (am *AnalysisManager) StartAnalysisManager() error {
	log.Info("Starting analysis manager...")
	am.wg.Add(1)
	go am.collectBatches()
	return nil
}

func (am *AnalysisManager) collectBatches() {
	defer am.wg.Done()
	defer am.pool.Release()

	for {
		select {
		case batch := <-am.batchDistributor:
			am.accumulate(batch)
		case <-am.ctx.Done():
			log.Info("cancellation request received. Cancelling window collector.")
			return
		}
	}
}

// accumulate appends a batch to its source window and dispatches every
// full window it completes. Batches from unconfigured sources are dropped.
func (am *AnalysisManager) accumulate(batch types.SampleBatch) {
	acc, ok := am.windows[batch.SourceName]
	if !ok {
		am.logger.Warnf("dropping batch from unconfigured source [%s]", batch.SourceName)
		return
	}

	acc.samples = append(acc.samples, batch.Samples...)

	for len(acc.samples) >= acc.target {
		window := make([]float64, acc.target)
		copy(window, acc.samples)
		acc.samples = acc.samples[:copy(acc.samples, acc.samples[acc.target:])]

		run := types.SampleBatch{
			SourceName:   batch.SourceName,
			SignalType:   batch.SignalType,
			SampleRateHz: batch.SampleRateHz,
			Samples:      window,
			ReceivedAt:   batch.ReceivedAt,
		}
		if err := am.pool.Submit(func() { am.analyze(run) }); err != nil {
			am.logger.Errorf("could not submit analysis window for [%s]: %v", batch.SourceName, err)
			return
		}
	}
}

// analyze runs one window through the pipeline and publishes the outcome
func (am *AnalysisManager) analyze(batch types.SampleBatch) {
	result, err := am.analyzer.Run(am.ctx, batch)
	switch {
	case errors.Is(err, dsp.ErrInvalidConfig):
		am.logger.Errorf("analysis of [%s] rejected: %v", batch.SourceName, err)
		return
	case errors.Is(err, dsp.ErrInsufficientData):
		am.logger.Warnf("analysis of [%s] skipped: %v", batch.SourceName, err)
		return
	case err != nil:
		am.logger.Errorf("analysis of [%s] failed: %v", batch.SourceName, err)
		return
	}

	am.cache.Put(result)

	record, err := result.ToRecord()
	if err != nil {
		am.logger.Errorf("could not flatten result %s for storage: %v", result.RunID, err)
		return
	}

	select {
	case am.recordDistributor <- record:
	case <-am.ctx.Done():
	}
}
