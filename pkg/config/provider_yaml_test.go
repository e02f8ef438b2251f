package config

import (
	"os"
	"path/filepath"
	"testing"
)

const testConfigYAML = `sources:
  - name: eeg-headset
    type: http
    signal_type: eeg
    sample_rate_hz: 100
    window_seconds: 30
    listen_addr: 0.0.0.0
    port: 8090
  - name: ecg-replay
    type: replay
    signal_type: ecg
    sample_rate_hz: 250
    path: recordings/run1.csv

analysis:
  eeg_filter_order: 5
  welch_segment_sec: 2
  workers: 8

storage:
  sqlite:
    path: archive.db

controllers:
  - type: rest
    rest:
      port: 8080
`

func writeTestConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("could not write test config: %v", err)
	}
	return path
}

func TestYAMLProviderLoadConfig(t *testing.T) {
	provider := NewYAMLProvider(writeTestConfig(t, testConfigYAML))

	cfg, err := provider.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if len(cfg.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(cfg.Sources))
	}

	eeg := cfg.Sources[0]
	if eeg.Name != "eeg-headset" || eeg.Type != "http" || eeg.SignalType != "eeg" {
		t.Errorf("unexpected first source: %+v", eeg)
	}
	if eeg.SampleRateHz != 100 || eeg.WindowSeconds != 30 || eeg.Port != 8090 {
		t.Errorf("unexpected first source parameters: %+v", eeg)
	}

	replay := cfg.Sources[1]
	if replay.Type != "replay" || replay.Path != "recordings/run1.csv" || replay.SampleRateHz != 250 {
		t.Errorf("unexpected second source: %+v", replay)
	}

	if cfg.Analysis.EEGFilterOrder != 5 {
		t.Errorf("expected eeg_filter_order 5, got %d", cfg.Analysis.EEGFilterOrder)
	}
	if cfg.Analysis.WelchSegmentSec != 2 {
		t.Errorf("expected welch_segment_sec 2, got %v", cfg.Analysis.WelchSegmentSec)
	}
	if cfg.Analysis.Workers != 8 {
		t.Errorf("expected workers 8, got %d", cfg.Analysis.Workers)
	}
	// unset analysis values stay zero; defaults are applied downstream
	if cfg.Analysis.ECGFilterOrder != 0 {
		t.Errorf("expected unset ecg_filter_order to be 0, got %d", cfg.Analysis.ECGFilterOrder)
	}

	if cfg.Storage.TimescaleDB != nil {
		t.Error("expected no TimescaleDB config")
	}
	if cfg.Storage.SQLite == nil || cfg.Storage.SQLite.Path != "archive.db" {
		t.Errorf("unexpected SQLite config: %+v", cfg.Storage.SQLite)
	}

	if len(cfg.Controllers) != 1 {
		t.Fatalf("expected 1 controller, got %d", len(cfg.Controllers))
	}
	rest := cfg.Controllers[0]
	if rest.Type != "rest" || rest.RESTServer == nil || rest.RESTServer.Port != 8080 {
		t.Errorf("unexpected controller: %+v", rest)
	}
}

func TestYAMLProviderSectionGetters(t *testing.T) {
	provider := NewYAMLProvider(writeTestConfig(t, testConfigYAML))

	sources, err := provider.GetSources()
	if err != nil {
		t.Fatalf("GetSources returned error: %v", err)
	}
	if len(sources) != 2 {
		t.Errorf("expected 2 sources, got %d", len(sources))
	}

	storage, err := provider.GetStorageConfig()
	if err != nil {
		t.Fatalf("GetStorageConfig returned error: %v", err)
	}
	if storage.SQLite == nil {
		t.Error("expected SQLite storage config")
	}

	controllers, err := provider.GetControllers()
	if err != nil {
		t.Fatalf("GetControllers returned error: %v", err)
	}
	if len(controllers) != 1 {
		t.Errorf("expected 1 controller, got %d", len(controllers))
	}

	if !provider.IsReadOnly() {
		t.Error("YAML provider should be read-only")
	}
}

func TestYAMLProviderMissingFile(t *testing.T) {
	provider := NewYAMLProvider(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if _, err := provider.LoadConfig(); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestYAMLProviderMalformed(t *testing.T) {
	provider := NewYAMLProvider(writeTestConfig(t, "sources: [not: valid: yaml"))
	if _, err := provider.LoadConfig(); err == nil {
		t.Error("expected error for malformed YAML")
	}
}
