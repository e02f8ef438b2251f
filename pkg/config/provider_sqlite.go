package config

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// LoadConfig loads the complete configuration from SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	config := &ConfigData{}

	sources, err := s.GetSources()
	if err != nil {
		return nil, fmt.Errorf("failed to load sources: %w", err)
	}
	config.Sources = sources

	analysis, err := s.getAnalysisConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load analysis config: %w", err)
	}
	config.Analysis = *analysis

	storage, err := s.GetStorageConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}
	config.Storage = *storage

	controllers, err := s.GetControllers()
	if err != nil {
		return nil, fmt.Errorf("failed to load controllers: %w", err)
	}
	config.Controllers = controllers

	return config, nil
}

// GetSources returns source configurations from the database
func (s *SQLiteProvider) GetSources() ([]SourceData, error) {
	query := `
		SELECT name, type, signal_type, sample_rate_hz, window_seconds,
		       listen_addr, port, serial_device, baud, path
		FROM sources
		ORDER BY name
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sources: %w", err)
	}
	defer rows.Close()

	var sources []SourceData
	for rows.Next() {
		var source SourceData
		var listenAddr, serialDevice, path sql.NullString
		var port, baud sql.NullInt64
		var windowSeconds sql.NullFloat64

		err := rows.Scan(
			&source.Name, &source.Type, &source.SignalType,
			&source.SampleRateHz, &windowSeconds,
			&listenAddr, &port, &serialDevice, &baud, &path,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan source row: %w", err)
		}

		source.WindowSeconds = windowSeconds.Float64
		source.ListenAddr = listenAddr.String
		source.Port = int(port.Int64)
		source.SerialDevice = serialDevice.String
		source.Baud = int(baud.Int64)
		source.Path = path.String

		sources = append(sources, source)
	}

	return sources, rows.Err()
}

// getAnalysisConfig returns the pipeline parameters, or zero values (the
// documented defaults apply downstream) when the table is empty.
func (s *SQLiteProvider) getAnalysisConfig() (*AnalysisData, error) {
	query := `
		SELECT eeg_filter_order, eeg_band_low_hz, eeg_band_high_hz,
		       ecg_filter_order, ecg_band_low_hz, ecg_band_high_hz,
		       welch_segment_sec, workers
		FROM analysis
		LIMIT 1
	`

	var a AnalysisData
	err := s.db.QueryRow(query).Scan(
		&a.EEGFilterOrder, &a.EEGBandLowHz, &a.EEGBandHighHz,
		&a.ECGFilterOrder, &a.ECGBandLowHz, &a.ECGBandHighHz,
		&a.WelchSegmentSec, &a.Workers,
	)
	if err == sql.ErrNoRows {
		return &AnalysisData{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis config: %w", err)
	}
	return &a, nil
}

// GetStorageConfig returns storage configuration from the database
func (s *SQLiteProvider) GetStorageConfig() (*StorageData, error) {
	storage := &StorageData{}

	var connString sql.NullString
	err := s.db.QueryRow(`SELECT connection_string FROM storage_timescaledb LIMIT 1`).Scan(&connString)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to query timescaledb storage: %w", err)
	}
	if connString.Valid && connString.String != "" {
		storage.TimescaleDB = &TimescaleDBData{ConnectionString: connString.String}
	}

	var sqlitePath sql.NullString
	err = s.db.QueryRow(`SELECT path FROM storage_sqlite LIMIT 1`).Scan(&sqlitePath)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to query sqlite storage: %w", err)
	}
	if sqlitePath.Valid && sqlitePath.String != "" {
		storage.SQLite = &SQLiteData{Path: sqlitePath.String}
	}

	return storage, nil
}

// GetControllers returns controller configurations from the database
func (s *SQLiteProvider) GetControllers() ([]ControllerData, error) {
	query := `
		SELECT type, rest_listen_addr, rest_port
		FROM controllers
		ORDER BY type
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query controllers: %w", err)
	}
	defer rows.Close()

	var controllers []ControllerData
	for rows.Next() {
		var controller ControllerData
		var listenAddr sql.NullString
		var port sql.NullInt64

		if err := rows.Scan(&controller.Type, &listenAddr, &port); err != nil {
			return nil, fmt.Errorf("failed to scan controller row: %w", err)
		}

		if controller.Type == "rest" {
			controller.RESTServer = &RESTServerData{
				ListenAddr: listenAddr.String,
				Port:       int(port.Int64),
			}
		}

		controllers = append(controllers, controller)
	}

	return controllers, rows.Err()
}

// IsReadOnly returns false: SQLite-backed configs support runtime edits
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the underlying database handle
func (s *SQLiteProvider) Close() error {
	return s.db.Close()
}
