// Package managers wires configuration to running components: acquisition
// sources, the analysis pool, storage engines and controllers.
package managers

import (
	"context"
	"fmt"
	"sync"

	"github.com/EduLodi/trab-final-instrmed/internal/storage"
	"github.com/EduLodi/trab-final-instrmed/internal/storage/sqlite"
	"github.com/EduLodi/trab-final-instrmed/internal/storage/timescaledb"
	"github.com/EduLodi/trab-final-instrmed/internal/types"
	"github.com/EduLodi/trab-final-instrmed/pkg/config"
)

// StorageManager holds our active storage backends
type StorageManager struct {
	Engines           []StorageEngine
	RecordDistributor chan types.AnalysisRecord
}

// StorageEngine holds a backend storage engine's interface as well as
// a channel for passing analysis records to the engine
type StorageEngine struct {
	Engine storage.StorageEngineInterface
	C      chan<- types.AnalysisRecord
}

// NewStorageManager creates a StorageManager object, populated with all configured StorageEngines
func NewStorageManager(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider) (*StorageManager, error) {
	storageConfig, err := configProvider.GetStorageConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading storage configuration: %v", err)
	}

	s := StorageManager{}

	// Initialize our channel for passing records to the distributor
	s.RecordDistributor = make(chan types.AnalysisRecord, 20)

	// Start our record distributor to fan out completed runs to storage
	// backends
	go s.startRecordDistributor(ctx, wg)

	if storageConfig.TimescaleDB != nil && storageConfig.TimescaleDB.ConnectionString != "" {
		err = s.AddEngine(ctx, wg, "timescaledb", storageConfig)
		if err != nil {
			return &s, fmt.Errorf("could not add TimescaleDB storage backend: %v", err)
		}
	}

	if storageConfig.SQLite != nil && storageConfig.SQLite.Path != "" {
		err = s.AddEngine(ctx, wg, "sqlite", storageConfig)
		if err != nil {
			return &s, fmt.Errorf("could not add SQLite storage backend: %v", err)
		}
	}

	return &s, nil
}

// AddEngine adds a new StorageEngine of name engineName to our StorageManager
func (s *StorageManager) AddEngine(ctx context.Context, wg *sync.WaitGroup, engineName string, c *config.StorageData) error {
	var err error

	switch engineName {
	case "timescaledb":
		se := StorageEngine{}
		se.Engine, err = timescaledb.New(ctx, c)
		if err != nil {
			return err
		}
		se.C = se.Engine.StartStorageEngine(ctx, wg)
		s.Engines = append(s.Engines, se)
	case "sqlite":
		se := StorageEngine{}
		se.Engine, err = sqlite.New(ctx, c)
		if err != nil {
			return err
		}
		se.C = se.Engine.StartStorageEngine(ctx, wg)
		s.Engines = append(s.Engines, se)
	}

	return nil
}

// startRecordDistributor receives completed analysis records and fans them
// out to the various storage backends
func (s *StorageManager) startRecordDistributor(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	defer wg.Done()

	for {
		select {
		case r := <-s.RecordDistributor:
			// No storage engines configured means the record is
			// discarded; the latest-result cache still serves it.
			for _, e := range s.Engines {
				e.C <- r
			}
		case <-ctx.Done():
			return
		}
	}
}
