package restserver

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/EduLodi/trab-final-instrmed/internal/constants"
	"github.com/EduLodi/trab-final-instrmed/internal/log"
	"github.com/EduLodi/trab-final-instrmed/internal/types"
	"github.com/EduLodi/trab-final-instrmed/pkg/responseformat"
	"github.com/gorilla/mux"
)

// Handlers contains the HTTP request handlers for the REST server
type Handlers struct {
	ctrl      *Controller
	formatter *responseformat.Formatter
}

// NewHandlers creates the handler set for a controller
func NewHandlers(c *Controller) *Handlers {
	return &Handlers{
		ctrl:      c,
		formatter: responseformat.NewFormatter(),
	}
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Storage bool   `json:"storage"`
}

type sourceInfo struct {
	Name         string  `json:"name"`
	SignalType   string  `json:"signal_type"`
	SampleRateHz float64 `json:"sample_rate_hz"`
	HasResult    bool    `json:"has_result"`
}

// windowResponse carries the plottable arrays of the latest run. The
// feature scalars live in /latest; this endpoint exists so plotting
// clients can skip them when polling.
type windowResponse struct {
	RunID        string    `json:"run_id"`
	SourceName   string    `json:"source_name"`
	SignalType   string    `json:"signal_type"`
	SampleRateHz float64   `json:"sample_rate_hz"`
	TimeAxis     []float64 `json:"time_axis"`
	Raw          []float64 `json:"raw"`
	Filtered     []float64 `json:"filtered"`
}

// GetHealth reports liveness and whether a storage backend is attached
func (h *Handlers) GetHealth(w http.ResponseWriter, req *http.Request) {
	resp := healthResponse{
		Status:  "ok",
		Version: constants.Version,
		Storage: h.ctrl.DBEnabled,
	}
	if err := h.formatter.WriteResponse(w, req, resp, nil); err != nil {
		log.Errorf("error writing health response: %v", err)
	}
}

// GetSources lists configured sources and whether each has produced a result
func (h *Handlers) GetSources(w http.ResponseWriter, req *http.Request) {
	infos := make([]sourceInfo, 0, len(h.ctrl.Sources))
	for _, src := range h.ctrl.Sources {
		infos = append(infos, sourceInfo{
			Name:         src.Name,
			SignalType:   src.SignalType,
			SampleRateHz: src.SampleRateHz,
			HasResult:    h.ctrl.cache.Get(src.Name) != nil,
		})
	}
	if err := h.formatter.WriteResponse(w, req, infos, nil); err != nil {
		log.Errorf("error writing sources response: %v", err)
	}
}

// GetLatest returns the most recent analysis result for a source
func (h *Handlers) GetLatest(w http.ResponseWriter, req *http.Request) {
	source := mux.Vars(req)["source"]
	if !h.ctrl.sourceExists(source) {
		http.Error(w, fmt.Sprintf("unknown source %q", source), http.StatusNotFound)
		return
	}

	result := h.ctrl.cache.Get(source)
	if result == nil {
		http.Error(w, fmt.Sprintf("no analysis has completed yet for source %q", source), http.StatusNotFound)
		return
	}

	if err := h.formatter.WriteResponse(w, req, result, nil); err != nil {
		log.Errorf("error writing latest response: %v", err)
	}
}

// GetWindow returns the raw/filtered arrays of the latest run for plotting
func (h *Handlers) GetWindow(w http.ResponseWriter, req *http.Request) {
	source := mux.Vars(req)["source"]
	if !h.ctrl.sourceExists(source) {
		http.Error(w, fmt.Sprintf("unknown source %q", source), http.StatusNotFound)
		return
	}

	result := h.ctrl.cache.Get(source)
	if result == nil {
		http.Error(w, fmt.Sprintf("no analysis has completed yet for source %q", source), http.StatusNotFound)
		return
	}

	resp := windowResponse{
		RunID:        result.RunID,
		SourceName:   result.SourceName,
		SignalType:   string(result.SignalType),
		SampleRateHz: result.SampleRateHz,
		TimeAxis:     result.TimeAxis,
		Raw:          result.Raw,
		Filtered:     result.Filtered,
	}
	if err := h.formatter.WriteResponse(w, req, resp, nil); err != nil {
		log.Errorf("error writing window response: %v", err)
	}
}

// GetHistory returns stored analysis runs for a source over a recent span.
// The span is given in hours via ?hours=N and defaults to 24.
func (h *Handlers) GetHistory(w http.ResponseWriter, req *http.Request) {
	source := mux.Vars(req)["source"]
	if !h.ctrl.sourceExists(source) {
		http.Error(w, fmt.Sprintf("unknown source %q", source), http.StatusNotFound)
		return
	}

	hours := 24
	if v := req.URL.Query().Get("hours"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			http.Error(w, fmt.Sprintf("invalid hours parameter %q", v), http.StatusBadRequest)
			return
		}
		hours = parsed
	}

	var records []types.AnalysisRecord
	err := h.ctrl.DB.WithContext(req.Context()).
		Where("source_name = ?", source).
		Where("completed_at > ?", time.Now().Add(-time.Duration(hours)*time.Hour)).
		Order("completed_at ASC").
		Find(&records).Error
	if err != nil {
		log.Errorf("history query failed for source %q: %v", source, err)
		http.Error(w, "history query failed", http.StatusInternalServerError)
		return
	}

	if err := h.formatter.WriteResponse(w, req, records, nil); err != nil {
		log.Errorf("error writing history response: %v", err)
	}
}
