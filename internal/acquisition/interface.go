// Package acquisition defines the sample-source abstraction and shared
// helpers for the concrete ingest backends.
package acquisition

import (
	"fmt"

	"github.com/EduLodi/trab-final-instrmed/internal/types"
	"github.com/EduLodi/trab-final-instrmed/pkg/config"
)

// SampleSource is an interface that provides standard methods for various
// acquisition backends. A started source delivers immutable SampleBatch
// values to its distributor channel until its context is cancelled.
type SampleSource interface {
	StartSource() error
	SourceName() string
}

// FindSource locates a named source in loaded configuration and validates
// the fields every source type requires.
func FindSource(cfgData *config.ConfigData, name string) (*config.SourceData, error) {
	for i := range cfgData.Sources {
		if cfgData.Sources[i].Name == name {
			src := cfgData.Sources[i]
			if _, err := types.ParseSignalType(src.SignalType); err != nil {
				return nil, fmt.Errorf("source [%s]: %w", name, err)
			}
			if src.SampleRateHz <= 0 {
				return nil, fmt.Errorf("source [%s]: sample rate must be positive, got %v", name, src.SampleRateHz)
			}
			return &src, nil
		}
	}
	return nil, fmt.Errorf("source [%s] not found in configuration", name)
}
