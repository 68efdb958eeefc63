package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"signaling-server/internal/queue"
	"signaling-server/internal/service/auth"
	"signaling-server/internal/websocket"

	"github.com/prometheus/client_golang/prometheus"
)

const shutdownTimeout = 10 * time.Second

type RouteRegistrar func(mux *http.ServeMux, s *APIServer)

type APIServer struct {
	listenAddr          string
	requestQueueManager *queue.RequestQueueManager
	handler             *websocket.Handler
	auth                *auth.Service
	allowedOrigins      []string
	log                 *slog.Logger
	routeRegistrars     []RouteRegistrar
	metrics             *metrics
}

func NewAPIServer(
	listenAddr string,
	rqm *queue.RequestQueueManager,
	handler *websocket.Handler,
	authService *auth.Service,
	allowedOrigins []string,
	log *slog.Logger,
	registrars ...RouteRegistrar,
) *APIServer {
	return &APIServer{
		listenAddr:          listenAddr,
		requestQueueManager: rqm,
		handler:             handler,
		auth:                authService,
		allowedOrigins:      allowedOrigins,
		log:                 log,
		routeRegistrars:     registrars,
		metrics:             newMetrics(prometheus.DefaultRegisterer, listenAddr, rqm),
	}
}

// Routes builds the instrumented mux with every registered route plus
// /metrics.
func (s *APIServer) Routes() http.Handler {
	mux := http.NewServeMux()

	for _, reg := range s.routeRegistrars {
		reg(mux, s)
	}

	mux.Handle("/metrics", s.metrics.metricsHandler())

	return s.metrics.instrument(mux)
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *APIServer) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.listenAddr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("server listening", "addr", s.listenAddr)
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", s.listenAddr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.log.Info("server stopped")
	return nil
}

func (s *APIServer) Handler() *websocket.Handler {
	return s.handler
}

func (s *APIServer) Auth() *auth.Service {
	return s.auth
}

func (s *APIServer) Logger() *slog.Logger {
	return s.log
}
