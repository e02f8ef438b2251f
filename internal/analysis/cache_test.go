package analysis

import (
	"testing"

	"github.com/EduLodi/trab-final-instrmed/internal/types"
)

func TestResultCache(t *testing.T) {
	cache := NewResultCache()

	if got := cache.Get("eeg-1"); got != nil {
		t.Errorf("expected nil for unknown source, got %+v", got)
	}
	if len(cache.Sources()) != 0 {
		t.Errorf("expected no sources, got %v", cache.Sources())
	}

	first := &Result{RunID: "run-1", SourceName: "eeg-1", SignalType: types.SignalEEG}
	cache.Put(first)
	if got := cache.Get("eeg-1"); got == nil || got.RunID != "run-1" {
		t.Errorf("expected run-1, got %+v", got)
	}

	// A newer run replaces the cached one
	second := &Result{RunID: "run-2", SourceName: "eeg-1", SignalType: types.SignalEEG}
	cache.Put(second)
	if got := cache.Get("eeg-1"); got == nil || got.RunID != "run-2" {
		t.Errorf("expected run-2 after replacement, got %+v", got)
	}

	cache.Put(&Result{RunID: "run-3", SourceName: "ecg-1", SignalType: types.SignalECG})
	if len(cache.Sources()) != 2 {
		t.Errorf("expected 2 sources, got %v", cache.Sources())
	}

	// nil results are ignored
	cache.Put(nil)
	if len(cache.Sources()) != 2 {
		t.Errorf("expected nil Put to be a no-op, got %v", cache.Sources())
	}
}
