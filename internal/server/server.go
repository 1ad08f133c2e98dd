/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/friendsincode/heimdall_wake/internal/api"
	"github.com/friendsincode/heimdall_wake/internal/config"
	"github.com/friendsincode/heimdall_wake/internal/db"
	"github.com/friendsincode/heimdall_wake/internal/events"
	"github.com/friendsincode/heimdall_wake/internal/history"
	"github.com/friendsincode/heimdall_wake/internal/playback"
	"github.com/friendsincode/heimdall_wake/internal/scheduler"
	"github.com/friendsincode/heimdall_wake/internal/songs"
	"github.com/friendsincode/heimdall_wake/internal/store"
	"github.com/friendsincode/heimdall_wake/internal/telemetry"
)

// Server bundles the HTTP API and supporting services.
type Server struct {
	cfg           *config.Config
	logger        zerolog.Logger
	router        chi.Router
	httpServer    *http.Server
	metricsServer *http.Server
	closers       []func() error

	bus        *events.Bus
	store      *store.Store
	controller *playback.Controller
	fetcher    *songs.Fetcher
	scheduler  *scheduler.Service
	historySvc *history.Service
	db         *gorm.DB
	api        *api.API

	bgCancel context.CancelFunc
	bgWG     sync.WaitGroup
}

// New constructs the server and wires dependencies.
func New(cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(securityHeadersMiddleware)
	router.Use(telemetry.TracingMiddleware("heimdall-wake-api"))
	router.Use(telemetry.MetricsMiddleware)
	router.Use(middleware.Timeout(60 * time.Second))

	srv := &Server{
		cfg:    cfg,
		logger: logger,
		router: router,
		bus:    events.NewBus(),
	}

	if err := srv.initDependencies(); err != nil {
		return nil, err
	}

	srv.configureRoutes()
	srv.startBackgroundWorkers()

	addr := fmt.Sprintf("%s:%d", cfg.HTTPBind, cfg.HTTPPort)
	srv.httpServer = &http.Server{
		Addr:              addr,
		Handler:           srv.router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	if cfg.MetricsBind != "" {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", telemetry.Handler())
		srv.metricsServer = &http.Server{
			Addr:              cfg.MetricsBind,
			Handler:           metricsMux,
			ReadHeaderTimeout: 15 * time.Second,
		}
	}

	return srv, nil
}

func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		// Only advertise HSTS for requests served over HTTPS.
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) initDependencies() error {
	if err := os.MkdirAll(s.cfg.StoreDir, 0755); err != nil {
		return fmt.Errorf("failed to create store directory %s: %w", s.cfg.StoreDir, err)
	}
	if err := os.MkdirAll(s.cfg.SongDir, 0755); err != nil {
		return fmt.Errorf("failed to create song directory %s: %w", s.cfg.SongDir, err)
	}
	s.logger.Info().
		Str("store_dir", s.cfg.StoreDir).
		Str("song_dir", s.cfg.SongDir).
		Msg("data directories ready")

	s.store = store.New(s.cfg.AlarmFile(), s.bus, s.logger)
	if _, err := s.store.Load(); err != nil {
		if errors.Is(err, store.ErrCorruptStore) {
			s.logger.Warn().Err(err).Msg("alarm store corrupt, starting with empty list")
		} else {
			return fmt.Errorf("load alarm store: %w", err)
		}
	}

	launcher := playback.NewProcessLauncher(s.cfg.PlayerBin, s.cfg.PlayerArgs)
	s.controller = playback.NewController(launcher, s.bus, s.logger)

	s.fetcher = songs.NewFetcher(s.cfg.FetcherBin, s.cfg.SongDir, s.logger)

	if s.cfg.HistoryEnabled {
		database, err := db.Connect(s.cfg.HistoryDSN)
		if err != nil {
			return fmt.Errorf("connect history database: %w", err)
		}
		if err := history.Migrate(database); err != nil {
			return fmt.Errorf("migrate history database: %w", err)
		}
		s.db = database
		s.DeferClose(func() error { return db.Close(database) })
		s.historySvc = history.NewService(database, s.bus, s.logger)
	}

	s.scheduler = scheduler.New(s.store, s.controller, nil, s.bus, s.cfg.TickInterval, s.logger)

	s.api = api.New(s.store, s.controller, s.fetcher, s.historySvc, s.bus, s.logger)

	return nil
}

// HTTPServer exposes the underlying net/http server.
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// MetricsServer exposes the dedicated metrics listener, nil when disabled.
func (s *Server) MetricsServer() *http.Server {
	return s.metricsServer
}

// Close releases owned resources in reverse order.
func (s *Server) Close() error {
	s.stopBackgroundWorkers()
	s.controller.Stop()
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// DeferClose registers a cleanup hook.
func (s *Server) DeferClose(fn func() error) {
	s.closers = append(s.closers, fn)
}

func (s *Server) startBackgroundWorkers() {
	ctx, cancel := context.WithCancel(context.Background())
	s.bgCancel = cancel

	s.bgWG.Add(1)
	go func() {
		defer s.bgWG.Done()
		if err := s.scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error().Err(err).Msg("scheduler loop exited")
		}
	}()

	if s.historySvc != nil {
		s.bgWG.Add(1)
		go func() {
			defer s.bgWG.Done()
			s.historySvc.Start(ctx)
		}()
	}
}

func (s *Server) stopBackgroundWorkers() {
	if s.bgCancel == nil {
		return
	}
	s.bgCancel()
	s.bgWG.Wait()
	s.bgCancel = nil
}

func (s *Server) configureRoutes() {
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if s.cfg.MetricsBind == "" {
		s.router.Handle("/metrics", telemetry.Handler())
	}

	s.router.Mount("/api/v1", s.api.Routes())
}
