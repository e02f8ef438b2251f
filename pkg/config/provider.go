// Package config provides configuration loading for the biosignal service
// from YAML files or SQLite databases.
package config

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetSources() ([]SourceData, error)
	GetStorageConfig() (*StorageData, error)
	GetControllers() ([]ControllerData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Sources     []SourceData     `json:"sources"`
	Analysis    AnalysisData     `json:"analysis,omitempty"`
	Storage     StorageData      `json:"storage,omitempty"`
	Controllers []ControllerData `json:"controllers,omitempty"`
}

// SourceData holds configuration specific to sample acquisition sources
type SourceData struct {
	Name          string  `json:"name"`
	Type          string  `json:"type"`
	SignalType    string  `json:"signal_type"`
	SampleRateHz  float64 `json:"sample_rate_hz"`
	WindowSeconds float64 `json:"window_seconds,omitempty"`
	ListenAddr    string  `json:"listen_addr,omitempty"`
	Port          int     `json:"port,omitempty"`
	SerialDevice  string  `json:"serial_device,omitempty"`
	Baud          int     `json:"baud,omitempty"`
	Path          string  `json:"path,omitempty"`
}

// AnalysisData holds the tunable pipeline parameters. Zero values fall
// back to the documented defaults (EEG: order 4, 1-45 Hz; ECG: order 3,
// 0.5-40 Hz; 4 s Welch segments).
type AnalysisData struct {
	EEGFilterOrder  int     `json:"eeg_filter_order,omitempty"`
	EEGBandLowHz    float64 `json:"eeg_band_low_hz,omitempty"`
	EEGBandHighHz   float64 `json:"eeg_band_high_hz,omitempty"`
	ECGFilterOrder  int     `json:"ecg_filter_order,omitempty"`
	ECGBandLowHz    float64 `json:"ecg_band_low_hz,omitempty"`
	ECGBandHighHz   float64 `json:"ecg_band_high_hz,omitempty"`
	WelchSegmentSec float64 `json:"welch_segment_sec,omitempty"`
	Workers         int     `json:"workers,omitempty"`
}

// StorageData holds the configuration for various storage backends
type StorageData struct {
	TimescaleDB *TimescaleDBData `json:"timescaledb,omitempty"`
	SQLite      *SQLiteData      `json:"sqlite,omitempty"`
}

type TimescaleDBData struct {
	ConnectionString string `json:"connection_string"`
}

type SQLiteData struct {
	Path string `json:"path"`
}

// ControllerData holds the configuration for various controller backends
type ControllerData struct {
	Type       string          `json:"type,omitempty"`
	RESTServer *RESTServerData `json:"rest,omitempty"`
}

type RESTServerData struct {
	ListenAddr string `json:"listen_addr,omitempty"`
	Port       int    `json:"port"`
}
