// Package sqlite implements a local, file-backed archive of analysis runs
// for installations without a TimescaleDB server.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/EduLodi/trab-final-instrmed/internal/log"
	"github.com/EduLodi/trab-final-instrmed/internal/types"
	"github.com/EduLodi/trab-final-instrmed/pkg/config"
	_ "modernc.org/sqlite"
)

const createTableSQL = `CREATE TABLE IF NOT EXISTS analysis_runs (
	run_id            TEXT PRIMARY KEY,
	completed_at      TIMESTAMP NOT NULL,
	source_name       TEXT NOT NULL,
	signal_type       TEXT NOT NULL,
	sample_count      INTEGER,
	sample_rate_hz    REAL,
	dominant_freq_hz  REAL,
	alpha_dominant    INTEGER DEFAULT 0,
	degraded          INTEGER DEFAULT 0,
	peak_count        INTEGER,
	mean_hr           REAL,
	min_hr            REAL,
	max_hr            REAL,
	sdnn_ms           REAL,
	insufficient_data INTEGER DEFAULT 0,
	peaks             TEXT DEFAULT '[]',
	rr_intervals      TEXT DEFAULT '[]',
	psd_freqs         TEXT DEFAULT '[]',
	psd_power         TEXT DEFAULT '[]'
)`

const insertRecordSQL = `INSERT OR REPLACE INTO analysis_runs (
	run_id, completed_at, source_name, signal_type, sample_count, sample_rate_hz,
	dominant_freq_hz, alpha_dominant, degraded,
	peak_count, mean_hr, min_hr, max_hr, sdnn_ms, insufficient_data,
	peaks, rr_intervals, psd_freqs, psd_power
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Storage holds the connection for a SQLite archive backend
type Storage struct {
	db *sql.DB
}

// New opens (or creates) the archive database and ensures the schema.
func New(ctx context.Context, c *config.StorageData) (*Storage, error) {
	if c.SQLite == nil || c.SQLite.Path == "" {
		return nil, fmt.Errorf("SQLite storage requires a path")
	}

	log.Infof("opening SQLite archive at %s...", c.SQLite.Path)
	db, err := sql.Open("sqlite", c.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("could not open SQLite archive: %w", err)
	}

	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create archive table: %w", err)
	}

	return &Storage{db: db}, nil
}

// StartStorageEngine creates a goroutine loop to receive analysis records
// and append them to the archive
func (s *Storage) StartStorageEngine(ctx context.Context, wg *sync.WaitGroup) chan<- types.AnalysisRecord {
	log.Info("starting SQLite storage engine...")
	recordChan := make(chan types.AnalysisRecord, 10)
	go s.processRecords(ctx, wg, recordChan)
	return recordChan
}

func (s *Storage) processRecords(ctx context.Context, wg *sync.WaitGroup, rchan <-chan types.AnalysisRecord) {
	wg.Add(1)
	defer wg.Done()

	for {
		select {
		case r := <-rchan:
			if err := s.StoreRecord(ctx, r); err != nil {
				log.Errorf("could not archive analysis record %s: %v", r.RunID, err)
			}
		case <-ctx.Done():
			log.Info("cancellation request received. Closing SQLite archive.")
			s.db.Close()
			return
		}
	}
}

// StoreRecord appends one analysis run to the archive
func (s *Storage) StoreRecord(ctx context.Context, r types.AnalysisRecord) error {
	_, err := s.db.ExecContext(ctx, insertRecordSQL,
		r.RunID, r.CompletedAt, r.SourceName, r.SignalType, r.SampleCount, r.SampleRateHz,
		r.DominantFreqHz, r.AlphaDominant, r.Degraded,
		r.PeakCount, r.MeanHR, r.MinHR, r.MaxHR, r.SDNNMilliseconds, r.InsufficientData,
		string(r.Peaks.Bytes), string(r.RRIntervals.Bytes), string(r.PSDFreqs.Bytes), string(r.PSDPower.Bytes),
	)
	return err
}
