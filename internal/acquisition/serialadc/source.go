// Package serialadc reads line-oriented ADC readings from a serial port,
// the directly-attached sampler path.
package serialadc

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/EduLodi/trab-final-instrmed/internal/acquisition"
	"github.com/EduLodi/trab-final-instrmed/internal/log"
	"github.com/EduLodi/trab-final-instrmed/internal/types"
	"github.com/EduLodi/trab-final-instrmed/pkg/config"
	serial "github.com/tarm/goserial"
	"go.uber.org/zap"
)

// Source reads one amplitude value per line from a serial device and
// groups them into one-second batches.
type Source struct {
	ctx         context.Context
	wg          *sync.WaitGroup
	cfg         config.SourceData
	signalType  types.SignalType
	distributor chan types.SampleBatch
	logger      *zap.SugaredLogger
	port        io.ReadWriteCloser
}

func NewSource(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, sourceName string, distributor chan types.SampleBatch, logger *zap.SugaredLogger) (acquisition.SampleSource, error) {
	cfgData, err := configProvider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("serial source [%s] failed to load config: %w", sourceName, err)
	}

	srcCfg, err := acquisition.FindSource(cfgData, sourceName)
	if err != nil {
		return nil, err
	}
	if srcCfg.SerialDevice == "" {
		return nil, fmt.Errorf("serial source [%s] must define a serial device", sourceName)
	}
	if srcCfg.Baud == 0 {
		srcCfg.Baud = 115200
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

// StartSource connects to the serial device and launches the read loop.
func (s *Source) StartSource() error {
	log.Infof("Starting serial ADC source [%v] on %s...", s.cfg.Name, s.cfg.SerialDevice)

	s.wg.Add(1)
	go s.readLoop()

	return nil
}

// connect opens the serial port, retrying with exponential backoff.
func (s *Source) connect() bool {
	baseDelay := time.Second
	attempt := 0

	for {
		delay := baseDelay * time.Duration(1<<attempt)
		if delay > 30*time.Second {
			delay = 30 * time.Second
		}

		port, err := serial.OpenPort(&serial.Config{Name: s.cfg.SerialDevice, Baud: s.cfg.Baud})
		if err == nil {
			log.Infof("Connected to serial device [%s]", s.cfg.SerialDevice)
			s.port = port
			return true
		}

		log.Errorf("Attempt #%v to open serial device %s failed: %v. Retrying in %v",
			attempt+1, s.cfg.SerialDevice, err, delay)
		select {
		case <-time.After(delay):
		case <-s.ctx.Done():
			return false
		}
		attempt++
	}
}

// readLoop scans lines from the port, parses amplitudes and flushes a
// batch every full second of samples. Unparsable lines are dropped with a
// debug log; the sampler occasionally emits boot noise.
func (s *Source) readLoop() {
	defer s.wg.Done()

	batchSize := int(s.cfg.SampleRateHz)
	if batchSize < 1 {
		batchSize = 1
	}

	for {
		if s.ctx.Err() != nil {
			return
		}
		if !s.connect() {
			return
		}

		scanner := bufio.NewScanner(s.port)
		buf := make([]float64, 0, batchSize)

		for scanner.Scan() {
			if s.ctx.Err() != nil {
				s.port.Close()
				return
			}

			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			v, err := strconv.ParseFloat(line, 64)
			if err != nil {
				log.Debugf("serial source [%s] dropping unparsable line %q", s.cfg.Name, line)
				continue
			}

			buf = append(buf, v)
			if len(buf) < batchSize {
				continue
			}

			batch := types.SampleBatch{
				SourceName:   s.cfg.Name,
				SignalType:   s.signalType,
				SampleRateHz: s.cfg.SampleRateHz,
				Samples:      buf,
				ReceivedAt:   time.Now(),
			}
			buf = make([]float64, 0, batchSize)

			select {
			case s.distributor <- batch:
			case <-s.ctx.Done():
				s.port.Close()
				return
			}
		}

		if err := scanner.Err(); err != nil {
			log.Errorf("serial source [%s] read error: %v; reconnecting", s.cfg.Name, err)
		}
		s.port.Close()

		select {
		case <-time.After(5 * time.Second):
		case <-s.ctx.Done():
			return
		}
	}
}
