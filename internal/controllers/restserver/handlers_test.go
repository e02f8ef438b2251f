package restserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/EduLodi/trab-final-instrmed/internal/analysis"
	"github.com/EduLodi/trab-final-instrmed/internal/types"
	"github.com/EduLodi/trab-final-instrmed/pkg/config"
)

func testController(cache *analysis.ResultCache) *Controller {
	ctrl := &Controller{
		Sources: []config.SourceData{
			{Name: "eeg-1", SignalType: "eeg", SampleRateHz: 100},
			{Name: "ecg-1", SignalType: "ecg", SampleRateHz: 100},
		},
		cache: cache,
	}
	ctrl.handlers = NewHandlers(ctrl)
	return ctrl
}

func TestGetHealth(t *testing.T) {
	ctrl := testController(analysis.NewResultCache())
	srv := httptest.NewServer(ctrl.setupRouter())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var health struct {
		Status  string `json:"status"`
		Storage bool   `json:"storage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("could not decode health response: %v", err)
	}
	if health.Status != "ok" {
		t.Errorf("expected status ok, got %q", health.Status)
	}
	if health.Storage {
		t.Error("expected storage=false without a database")
	}
}

func TestGetSources(t *testing.T) {
	cache := analysis.NewResultCache()
	cache.Put(&analysis.Result{RunID: "r1", SourceName: "eeg-1", SignalType: types.SignalEEG})
	ctrl := testController(cache)
	srv := httptest.NewServer(ctrl.setupRouter())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/sources")
	if err != nil {
		t.Fatalf("sources request failed: %v", err)
	}
	defer resp.Body.Close()

	var infos []struct {
		Name      string `json:"name"`
		HasResult bool   `json:"has_result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&infos); err != nil {
		t.Fatalf("could not decode sources response: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(infos))
	}
	byName := map[string]bool{}
	for _, info := range infos {
		byName[info.Name] = info.HasResult
	}
	if !byName["eeg-1"] {
		t.Error("expected eeg-1 to have a result")
	}
	if byName["ecg-1"] {
		t.Error("expected ecg-1 to have no result yet")
	}
}

func TestGetLatest(t *testing.T) {
	cache := analysis.NewResultCache()
	cache.Put(&analysis.Result{
		RunID:      "r1",
		SourceName: "eeg-1",
		SignalType: types.SignalEEG,
		EEG:        &analysis.EEGFeatures{DominantFreqHz: 10.5, AlphaDominant: true},
	})
	ctrl := testController(cache)
	srv := httptest.NewServer(ctrl.setupRouter())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/latest/eeg-1")
	if err != nil {
		t.Fatalf("latest request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result analysis.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("could not decode latest response: %v", err)
	}
	if result.RunID != "r1" || result.EEG == nil || result.EEG.DominantFreqHz != 10.5 {
		t.Errorf("unexpected latest result: %+v", result)
	}
}

func TestGetLatestNotFound(t *testing.T) {
	ctrl := testController(analysis.NewResultCache())
	srv := httptest.NewServer(ctrl.setupRouter())
	defer srv.Close()

	// configured source, no result yet
	resp, err := http.Get(srv.URL + "/latest/eeg-1")
	if err != nil {
		t.Fatalf("latest request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for source without results, got %d", resp.StatusCode)
	}

	// unknown source
	resp, err = http.Get(srv.URL + "/latest/unknown")
	if err != nil {
		t.Fatalf("latest request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown source, got %d", resp.StatusCode)
	}
}

func TestGetWindow(t *testing.T) {
	cache := analysis.NewResultCache()
	cache.Put(&analysis.Result{
		RunID:        "r2",
		SourceName:   "ecg-1",
		SignalType:   types.SignalECG,
		SampleRateHz: 100,
		TimeAxis:     []float64{0, 0.01, 0.02},
		Raw:          []float64{1, 2, 3},
		Filtered:     []float64{0.9, 1.9, 2.9},
	})
	ctrl := testController(cache)
	srv := httptest.NewServer(ctrl.setupRouter())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/window/ecg-1")
	if err != nil {
		t.Fatalf("window request failed: %v", err)
	}
	defer resp.Body.Close()

	var window windowResponse
	if err := json.NewDecoder(resp.Body).Decode(&window); err != nil {
		t.Fatalf("could not decode window response: %v", err)
	}
	if window.RunID != "r2" || len(window.Raw) != 3 || len(window.Filtered) != 3 {
		t.Errorf("unexpected window response: %+v", window)
	}
}

func TestHistoryRouteDisabledWithoutDB(t *testing.T) {
	ctrl := testController(analysis.NewResultCache())
	srv := httptest.NewServer(ctrl.setupRouter())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/history/eeg-1")
	if err != nil {
		t.Fatalf("history request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for history without a database, got %d", resp.StatusCode)
	}
}
