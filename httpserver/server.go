package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/UnownHash/Chatot/areas"
	"github.com/UnownHash/Chatot/labeler"
	"github.com/UnownHash/Chatot/stats_collector"
)

func init() {
	gin.SetMode(gin.ReleaseMode)
}

type APIErrorResponse struct {
	Error string `json:"error"`
}

type HTTPServer struct {
	logger          *logrus.Logger
	ginRouter       *gin.Engine
	builderFn       func() *labeler.Builder
	areasLoader     *areas.AreasLoader
	labelsStore     LabelPointsStore
	statsCollector  stats_collector.StatsCollector
	reloadFn        func() error
	maxRequestBytes int64
}

// Run starts and runs the HTTP server until 'ctx' is cancelled or the server fails to start.
func (srv *HTTPServer) Run(ctx context.Context, address string, shutdownWaitTimeout time.Duration) error {
	httpServer := &http.Server{
		Addr:    address,
		Handler: srv.ginRouter,
	}

	doneCh := make(chan error, 1)

	go func() {
		var err error
		defer func() {
			doneCh <- err
		}()
		err = httpServer.ListenAndServe()
		if err != nil {
			if err == http.ErrServerClosed {
				err = nil
			} else {
				err = fmt.Errorf("Failed to listen and start http server: %w", err)
			}
		}
	}()

	select {
	case <-ctx.Done():
		sdCtx, sdCancelFn := context.WithTimeout(context.Background(), shutdownWaitTimeout)
		defer sdCancelFn()
		err := httpServer.Shutdown(sdCtx)
		if err != nil {
			if err == context.DeadlineExceeded {
				return errors.New("Graceful HTTP server shutdown timed out.")
			}
			return fmt.Errorf("Error during http server shutdown: %w", err)
		}
		return <-doneCh
	case err := <-doneCh:
		return err
	}
}

// Handler exposes the router, mostly for tests.
func (srv *HTTPServer) Handler() http.Handler {
	return srv.ginRouter
}

// NewHTTPServer creates the API server. 'builderFn' returns the builder
// for the current config. 'areasLoader' and 'labelsStore' may be nil when
// no area source or labels DB is configured.
func NewHTTPServer(logger *logrus.Logger, config Config, builderFn func() *labeler.Builder, areasLoader *areas.AreasLoader, labelsStore LabelPointsStore, statsCollector stats_collector.StatsCollector, reloadFn func() error) (*HTTPServer, error) {
	if builderFn == nil {
		return nil, errors.New("no builder given")
	}

	maxRequestMB := config.MaxRequestMB
	if maxRequestMB < 1 {
		maxRequestMB = DEFAULT_MAX_REQUEST_MB
	}

	// Create the web server.
	r := gin.New()
	r.Use(gin.RecoveryWithWriter(logger.Writer()))
	statsCollector.RegisterGinEngine(r)

	srv := &HTTPServer{
		logger:          logger,
		ginRouter:       r,
		builderFn:       builderFn,
		areasLoader:     areasLoader,
		labelsStore:     labelsStore,
		statsCollector:  statsCollector,
		reloadFn:        reloadFn,
		maxRequestBytes: maxRequestMB << 20,
	}

	srv.setupRoutes()
	return srv, nil
}
