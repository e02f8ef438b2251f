package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// YAML-tagged mirror structs; converted into the internal format on load.
type sourceYAML struct {
	Name          string  `yaml:"name"`
	Type          string  `yaml:"type"`
	SignalType    string  `yaml:"signal_type"`
	SampleRateHz  float64 `yaml:"sample_rate_hz"`
	WindowSeconds float64 `yaml:"window_seconds,omitempty"`
	ListenAddr    string  `yaml:"listen_addr,omitempty"`
	Port          int     `yaml:"port,omitempty"`
	SerialDevice  string  `yaml:"serial_device,omitempty"`
	Baud          int     `yaml:"baud,omitempty"`
	Path          string  `yaml:"path,omitempty"`
}

type analysisYAML struct {
	EEGFilterOrder  int     `yaml:"eeg_filter_order,omitempty"`
	EEGBandLowHz    float64 `yaml:"eeg_band_low_hz,omitempty"`
	EEGBandHighHz   float64 `yaml:"eeg_band_high_hz,omitempty"`
	ECGFilterOrder  int     `yaml:"ecg_filter_order,omitempty"`
	ECGBandLowHz    float64 `yaml:"ecg_band_low_hz,omitempty"`
	ECGBandHighHz   float64 `yaml:"ecg_band_high_hz,omitempty"`
	WelchSegmentSec float64 `yaml:"welch_segment_sec,omitempty"`
	Workers         int     `yaml:"workers,omitempty"`
}

type storageYAML struct {
	TimescaleDB *struct {
		ConnectionString string `yaml:"connection_string"`
	} `yaml:"timescaledb,omitempty"`
	SQLite *struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite,omitempty"`
}

type controllerYAML struct {
	Type string `yaml:"type"`
	REST *struct {
		ListenAddr string `yaml:"listen_addr,omitempty"`
		Port       int    `yaml:"port"`
	} `yaml:"rest,omitempty"`
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	var yamlConfig struct {
		Sources     []sourceYAML     `yaml:"sources"`
		Analysis    analysisYAML     `yaml:"analysis,omitempty"`
		Storage     storageYAML      `yaml:"storage,omitempty"`
		Controllers []controllerYAML `yaml:"controllers,omitempty"`
	}

	err = yaml.Unmarshal(cfgFile, &yamlConfig)
	if err != nil {
		return nil, err
	}

	config := &ConfigData{
		Sources:     make([]SourceData, len(yamlConfig.Sources)),
		Controllers: make([]ControllerData, len(yamlConfig.Controllers)),
	}

	for i, source := range yamlConfig.Sources {
		config.Sources[i] = SourceData{
			Name:          source.Name,
			Type:          source.Type,
			SignalType:    source.SignalType,
			SampleRateHz:  source.SampleRateHz,
			WindowSeconds: source.WindowSeconds,
			ListenAddr:    source.ListenAddr,
			Port:          source.Port,
			SerialDevice:  source.SerialDevice,
			Baud:          source.Baud,
			Path:          source.Path,
		}
	}

	config.Analysis = AnalysisData{
		EEGFilterOrder:  yamlConfig.Analysis.EEGFilterOrder,
		EEGBandLowHz:    yamlConfig.Analysis.EEGBandLowHz,
		EEGBandHighHz:   yamlConfig.Analysis.EEGBandHighHz,
		ECGFilterOrder:  yamlConfig.Analysis.ECGFilterOrder,
		ECGBandLowHz:    yamlConfig.Analysis.ECGBandLowHz,
		ECGBandHighHz:   yamlConfig.Analysis.ECGBandHighHz,
		WelchSegmentSec: yamlConfig.Analysis.WelchSegmentSec,
		Workers:         yamlConfig.Analysis.Workers,
	}

	config.Storage = StorageData{}
	if yamlConfig.Storage.TimescaleDB != nil {
		config.Storage.TimescaleDB = &TimescaleDBData{
			ConnectionString: yamlConfig.Storage.TimescaleDB.ConnectionString,
		}
	}
	if yamlConfig.Storage.SQLite != nil {
		config.Storage.SQLite = &SQLiteData{
			Path: yamlConfig.Storage.SQLite.Path,
		}
	}

	for i, controller := range yamlConfig.Controllers {
		config.Controllers[i] = ControllerData{
			Type: controller.Type,
		}
		if controller.REST != nil {
			config.Controllers[i].RESTServer = &RESTServerData{
				ListenAddr: controller.REST.ListenAddr,
				Port:       controller.REST.Port,
			}
		}
	}

	y.config = config
	return config, nil
}

// GetSources returns source configurations
func (y *YAMLProvider) GetSources() ([]SourceData, error) {
	if y.config == nil {
		if _, err := y.LoadConfig(); err != nil {
			return nil, err
		}
	}
	return y.config.Sources, nil
}

// GetStorageConfig returns storage configuration
func (y *YAMLProvider) GetStorageConfig() (*StorageData, error) {
	if y.config == nil {
		if _, err := y.LoadConfig(); err != nil {
			return nil, err
		}
	}
	return &y.config.Storage, nil
}

// GetControllers returns controller configurations
func (y *YAMLProvider) GetControllers() ([]ControllerData, error) {
	if y.config == nil {
		if _, err := y.LoadConfig(); err != nil {
			return nil, err
		}
	}
	return y.config.Controllers, nil
}

// IsReadOnly returns true: YAML configs are not editable at runtime
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML providers
func (y *YAMLProvider) Close() error {
	return nil
}
