// Package filereplay feeds a recorded CSV capture through the pipeline as
// if it had just been acquired.
package filereplay

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/EduLodi/trab-final-instrmed/internal/acquisition"
	"github.com/EduLodi/trab-final-instrmed/internal/log"
	"github.com/EduLodi/trab-final-instrmed/internal/types"
	"github.com/EduLodi/trab-final-instrmed/pkg/config"
	"go.uber.org/zap"
)

// Source reads a recording once and emits it as a single batch.
type Source struct {
	ctx         context.Context
	wg          *sync.WaitGroup
	cfg         config.SourceData
	signalType  types.SignalType
	distributor chan types.SampleBatch
	logger      *zap.SugaredLogger
}

func NewSource(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, sourceName string, distributor chan types.SampleBatch, logger *zap.SugaredLogger) (acquisition.SampleSource, error) {
	cfgData, err := configProvider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("file replay [%s] failed to load config: %w", sourceName, err)
	}

	srcCfg, err := acquisition.FindSource(cfgData, sourceName)
	if err != nil {
		return nil, err
	}
	if srcCfg.Path == "" {
		return nil, fmt.Errorf("file replay [%s] must define a path", sourceName)
	}

	st, _ := types.ParseSignalType(srcCfg.SignalType)

	return &Source{
		ctx:         ctx,
		wg:          wg,
		cfg:         *srcCfg,
		signalType:  st,
		distributor: distributor,
		logger:      logger,
	}, nil
}

func (s *Source) SourceName() string {
	return s.cfg.Name
}

// StartSource reads the recording in a goroutine and sends it downstream.
func (s *Source) StartSource() error {
	log.Infof("Starting file replay source [%v] from %s...", s.cfg.Name, s.cfg.Path)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		samples, err := ReadRecording(s.cfg.Path)
		if err != nil {
			log.Errorf("file replay [%s]: %v", s.cfg.Name, err)
			return
		}
		log.Infof("file replay [%s] loaded %d samples", s.cfg.Name, len(samples))

		batch := types.SampleBatch{
			SourceName:   s.cfg.Name,
			SignalType:   s.signalType,
			SampleRateHz: s.cfg.SampleRateHz,
			Samples:      samples,
			ReceivedAt:   time.Now(),
		}

		select {
		case s.distributor <- batch:
		case <-s.ctx.Done():
		}
	}()

	return nil
}

// ReadRecording loads the amplitude column of a CSV capture. Recordings
// carry a timestamp column too, but those timestamps come from the sensor
// clock and are untrustworthy; only the value column is read and the
// pipeline rebuilds the timebase from the nominal rate.
func ReadRecording(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open recording: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("could not read CSV header: %w", err)
	}

	valueCol := -1
	for i, name := range header {
		if name == "value" {
			valueCol = i
			break
		}
	}
	if valueCol < 0 {
		return nil, fmt.Errorf("recording has no 'value' column (header: %v)", header)
	}

	var samples []float64
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("could not read CSV row: %w", err)
		}
		if valueCol >= len(rec) {
			continue
		}
		v, err := strconv.ParseFloat(rec[valueCol], 64)
		if err != nil {
			return nil, fmt.Errorf("bad amplitude value %q: %w", rec[valueCol], err)
		}
		samples = append(samples, v)
	}

	if len(samples) == 0 {
		return nil, fmt.Errorf("recording %s contains no samples", path)
	}
	return samples, nil
}
