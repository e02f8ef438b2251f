// Package restserver exposes analysis results over HTTP for plotting
// frontends and monitoring.
package restserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/EduLodi/trab-final-instrmed/internal/analysis"
	"github.com/EduLodi/trab-final-instrmed/internal/database"
	"github.com/EduLodi/trab-final-instrmed/internal/log"
	"github.com/EduLodi/trab-final-instrmed/pkg/config"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Controller represents the REST server controller
type Controller struct {
	ctx            context.Context
	wg             *sync.WaitGroup
	configProvider config.ConfigProvider
	restConfig     config.RESTServerData
	Server         http.Server
	DB             *gorm.DB
	DBEnabled      bool
	Sources        []config.SourceData
	cache          *analysis.ResultCache
	logger         *zap.SugaredLogger
	handlers       *Handlers
}

// NewController creates a new REST server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, rc config.RESTServerData, cache *analysis.ResultCache, logger *zap.SugaredLogger) (*Controller, error) {
	ctrl := &Controller{
		ctx:            ctx,
		wg:             wg,
		configProvider: configProvider,
		restConfig:     rc,
		cache:          cache,
		logger:         logger,
	}

	cfgData, err := configProvider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %v", err)
	}

	ctrl.Sources = cfgData.Sources
	if len(ctrl.Sources) == 0 {
		return nil, fmt.Errorf("no sources configured - the REST server has nothing to serve")
	}

	if rc.ListenAddr == "" {
		logger.Info("rest.listen_addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		rc.ListenAddr = "0.0.0.0"
	}
	if rc.Port == 0 {
		logger.Info("rest.port not provided; defaulting to 8080")
		rc.Port = 8080
	}
	ctrl.restConfig = rc

	// If a TimescaleDB database was configured, set up a GORM DB handle so
	// that the history handlers can retrieve data
	if cfgData.Storage.TimescaleDB != nil && cfgData.Storage.TimescaleDB.ConnectionString != "" {
		ctrl.DB, err = database.CreateConnection(cfgData.Storage.TimescaleDB.ConnectionString)
		if err != nil {
			return nil, fmt.Errorf("REST server could not connect to database: %v", err)
		}
		ctrl.DBEnabled = true
	}

	ctrl.handlers = NewHandlers(ctrl)

	router := ctrl.setupRouter()
	ctrl.Server.Addr = fmt.Sprintf("%v:%v", rc.ListenAddr, rc.Port)
	ctrl.Server.Handler = router

	return ctrl, nil
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	log.Info("Starting REST server controller...")
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()
		if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
			log.Errorf("REST server error: %v", err)
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the REST server...")
		c.Server.Shutdown(context.Background())
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", c.handlers.GetHealth)
	router.HandleFunc("/sources", c.handlers.GetSources)
	router.HandleFunc("/latest/{source}", c.handlers.GetLatest)
	router.HandleFunc("/window/{source}", c.handlers.GetWindow)

	// History needs a database behind it
	if c.DBEnabled {
		router.HandleFunc("/history/{source}", c.handlers.GetHistory)
	}

	return router
}

// sourceExists checks that a source name is present in the configuration
func (c *Controller) sourceExists(name string) bool {
	for _, src := range c.Sources {
		if src.Name == name {
			return true
		}
	}
	return false
}
