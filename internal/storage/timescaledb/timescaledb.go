// Package timescaledb implements an analysis-result storage backend on
// TimescaleDB.
package timescaledb

import (
	"context"
	"sync"

	"github.com/EduLodi/trab-final-instrmed/internal/database"
	"github.com/EduLodi/trab-final-instrmed/internal/log"
	"github.com/EduLodi/trab-final-instrmed/internal/types"
	"github.com/EduLodi/trab-final-instrmed/pkg/config"
	"gorm.io/gorm"
)

// Storage holds the configuration for a TimescaleDB storage backend
type Storage struct {
	TimescaleDBConn *gorm.DB
}

// We declare the Tabler interface for purposes of customizing the table name in the DB
type Tabler interface {
	TableName() string
}

// StartStorageEngine creates a goroutine loop to receive analysis records
// and send them off to TimescaleDB
func (t *Storage) StartStorageEngine(ctx context.Context, wg *sync.WaitGroup) chan<- types.AnalysisRecord {
	log.Info("starting TimescaleDB storage engine...")
	recordChan := make(chan types.AnalysisRecord, 10)
	go t.processRecords(ctx, wg, recordChan)
	return recordChan
}

func (t *Storage) processRecords(ctx context.Context, wg *sync.WaitGroup, rchan <-chan types.AnalysisRecord) {
	wg.Add(1)
	defer wg.Done()

	for {
		select {
		case r := <-rchan:
			err := t.StoreRecord(r)
			if err != nil {
				log.Errorf("could not store analysis record %s: %v", r.RunID, err)
			}
		case <-ctx.Done():
			log.Info("cancellation request received. Cancelling record processor.")
			return
		}
	}
}

// StoreRecord stores one analysis run in TimescaleDB
func (t *Storage) StoreRecord(r types.AnalysisRecord) error {
	return t.TimescaleDBConn.Create(&r).Error
}

// New sets up a new TimescaleDB storage backend
func New(ctx context.Context, c *config.StorageData) (*Storage, error) {
	var err error
	t := Storage{}

	log.Info("connecting to TimescaleDB...")
	t.TimescaleDBConn, err = database.CreateConnection(c.TimescaleDB.ConnectionString)
	if err != nil {
		log.Warn("warning: unable to create a TimescaleDB connection:", err)
		return &Storage{}, err
	}

	// Create the database table
	log.Info("creating database table...")
	err = t.TimescaleDBConn.WithContext(ctx).Exec(createTableSQL).Error
	if err != nil {
		log.Warn("warning: could not create table in database")
		return &Storage{}, err
	}

	// Create the TimescaleDB extension
	log.Info("creating TimescaleDB extension...")
	err = t.TimescaleDBConn.WithContext(ctx).Exec(createExtensionSQL).Error
	if err != nil {
		log.Warn("warning: could not create TimescaleDB extension")
		return &Storage{}, err
	}

	// Create the hypertable
	log.Info("creating hypertable...")
	err = t.TimescaleDBConn.WithContext(ctx).Exec(createHypertableSQL).Error
	if err != nil {
		log.Warn("warning: could not create hypertable")
		return &Storage{}, err
	}

	// Create the per-source latest-run view
	log.Info("creating latest-run view...")
	err = t.TimescaleDBConn.WithContext(ctx).Exec(createLatestRunViewSQL).Error
	if err != nil {
		log.Warn("warning: could not create latest-run view")
		return &Storage{}, err
	}

	// Create the hourly heart-rate aggregate view
	log.Info("creating 1h heart-rate view...")
	err = t.TimescaleDBConn.WithContext(ctx).Exec(create1hHeartRateViewSQL).Error
	if err != nil {
		log.Warn("warning: could not create 1h heart-rate view")
		return &Storage{}, err
	}

	// Add the 1h aggregation policy
	log.Info("adding 1h aggregation policy...")
	err = t.TimescaleDBConn.WithContext(ctx).Exec(addAggregationPolicy1hSQL).Error
	if err != nil {
		log.Warn("warning: could not add 1h aggregation policy")
		return &Storage{}, err
	}

	return &t, nil
}
