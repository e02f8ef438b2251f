package managers

import (
	"context"
	"fmt"
	"sync"

	"github.com/EduLodi/trab-final-instrmed/internal/acquisition"
	"github.com/EduLodi/trab-final-instrmed/internal/acquisition/filereplay"
	"github.com/EduLodi/trab-final-instrmed/internal/acquisition/httpingest"
	"github.com/EduLodi/trab-final-instrmed/internal/acquisition/serialadc"
	"github.com/EduLodi/trab-final-instrmed/internal/acquisition/tcpingest"
	"github.com/EduLodi/trab-final-instrmed/internal/log"
	"github.com/EduLodi/trab-final-instrmed/internal/types"
	"github.com/EduLodi/trab-final-instrmed/pkg/config"
	"go.uber.org/zap"
)

// SourceManager owns the configured acquisition sources
type SourceManager struct {
	ctx            context.Context
	wg             *sync.WaitGroup
	configProvider config.ConfigProvider
	distributor    chan types.SampleBatch
	logger         *zap.SugaredLogger
	sources        map[string]acquisition.SampleSource
	mu             sync.RWMutex
}

// NewSourceManager creates a SourceManager object, populated with all configured sources
func NewSourceManager(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, distributor chan types.SampleBatch, logger *zap.SugaredLogger) (*SourceManager, error) {
	cfgData, err := configProvider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %v", err)
	}

	sm := &SourceManager{
		ctx:            ctx,
		wg:             wg,
		configProvider: configProvider,
		distributor:    distributor,
		logger:         logger,
		sources:        make(map[string]acquisition.SampleSource),
	}

	for _, sourceConfig := range cfgData.Sources {
		source, err := createSourceFromConfig(ctx, wg, configProvider, sourceConfig, distributor, logger)
		if err != nil {
			return nil, fmt.Errorf("error creating source [%s]: %w", sourceConfig.Name, err)
		}
		sm.sources[sourceConfig.Name] = source
	}

	return sm, nil
}

// StartSources starts every configured source
func (sm *SourceManager) StartSources() error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for name, source := range sm.sources {
		if err := source.StartSource(); err != nil {
			return fmt.Errorf("failed to start source [%s]: %w", name, err)
		}
	}
	return nil
}

// GetSource retrieves a source by name. Returns nil if the source does not
// exist. Safe for concurrent use.
func (sm *SourceManager) GetSource(name string) acquisition.SampleSource {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sources[name]
}

// createSourceFromConfig creates the appropriate acquisition source based on source type
func createSourceFromConfig(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, sourceConfig config.SourceData, distributor chan types.SampleBatch, logger *zap.SugaredLogger) (acquisition.SampleSource, error) {
	switch sourceConfig.Type {
	case "http":
		log.Infof("Initializing HTTP ingest source [%v]", sourceConfig.Name)
		return httpingest.NewSource(ctx, wg, configProvider, sourceConfig.Name, distributor, logger)
	case "tcp":
		log.Infof("Initializing TCP ingest source [%v]", sourceConfig.Name)
		return tcpingest.NewSource(ctx, wg, configProvider, sourceConfig.Name, distributor, logger)
	case "serial":
		log.Infof("Initializing serial ADC source [%v]", sourceConfig.Name)
		return serialadc.NewSource(ctx, wg, configProvider, sourceConfig.Name, distributor, logger)
	case "replay":
		log.Infof("Initializing file replay source [%v]", sourceConfig.Name)
		return filereplay.NewSource(ctx, wg, configProvider, sourceConfig.Name, distributor, logger)
	default:
		return nil, fmt.Errorf("unknown source type: %s", sourceConfig.Type)
	}
}
