// Package httpingest receives sample batches over HTTP POST, the transport
// the firmware-side samplers speak.
package httpingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/EduLodi/trab-final-instrmed/internal/acquisition"
	"github.com/EduLodi/trab-final-instrmed/internal/log"
	"github.com/EduLodi/trab-final-instrmed/internal/types"
	"github.com/EduLodi/trab-final-instrmed/pkg/config"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Source accepts POST /data requests carrying a JSON samples array.
type Source struct {
	ctx         context.Context
	wg          *sync.WaitGroup
	cfg         config.SourceData
	signalType  types.SignalType
	distributor chan types.SampleBatch
	logger      *zap.SugaredLogger
	server      *http.Server
}

type dataRequest struct {
	Samples []float64 `json:"samples"`
}

func NewSource(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, sourceName string, distributor chan types.SampleBatch, logger *zap.SugaredLogger) (acquisition.SampleSource, error) {
	cfgData, err := configProvider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("HTTP ingest [%s] failed to load config: %w", sourceName, err)
	}

	srcCfg, err := acquisition.FindSource(cfgData, sourceName)
	if err != nil {
		return nil, err
	}
	if srcCfg.Port == 0 {
		return nil, fmt.Errorf("HTTP ingest [%s] must define a port", sourceName)
	}

	st, _ := types.ParseSignalType(srcCfg.SignalType)

	return &Source{
		ctx:         ctx,
		wg:          wg,
		cfg:         *srcCfg,
		signalType:  st,
		distributor: distributor,
		logger:      logger,
	}, nil
}

func (s *Source) SourceName() string {
	return s.cfg.Name
}

// StartSource launches the HTTP listener and a shutdown watcher.
func (s *Source) StartSource() error {
	log.Infof("Starting HTTP ingest source [%v] on port %d...", s.cfg.Name, s.cfg.Port)

	router := mux.NewRouter()
	router.HandleFunc("/data", s.handleData).Methods(http.MethodPost)

	s.server = &http.Server{
		Addr:        fmt.Sprintf("%s:%d", s.cfg.ListenAddr, s.cfg.Port),
		Handler:     router,
		ReadTimeout: 30 * time.Second,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("HTTP ingest [%s] listener error: %v", s.cfg.Name, err)
		}
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		<-s.ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.server.Shutdown(shutdownCtx)
	}()

	return nil
}

// handleData decodes a samples payload and hands it to the distributor.
// Any timestamps the sender embeds are ignored; the pipeline synthesizes
// its own timebase from the configured rate.
func (s *Source) handleData(w http.ResponseWriter, req *http.Request) {
	var body dataRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, `{"status":"error","message":"invalid data format"}`, http.StatusBadRequest)
		return
	}
	if len(body.Samples) == 0 {
		http.Error(w, `{"status":"error","message":"empty samples array"}`, http.StatusBadRequest)
		return
	}

	batch := types.SampleBatch{
		SourceName:   s.cfg.Name,
		SignalType:   s.signalType,
		SampleRateHz: s.cfg.SampleRateHz,
		Samples:      body.Samples,
		ReceivedAt:   time.Now(),
	}

	select {
	case s.distributor <- batch:
	case <-s.ctx.Done():
		http.Error(w, `{"status":"error","message":"shutting down"}`, http.StatusServiceUnavailable)
		return
	}

	log.Debugf("HTTP ingest [%s] accepted batch of %d samples", s.cfg.Name, len(body.Samples))
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"success"}`))
}
