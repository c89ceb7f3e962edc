package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sh44ni/internetkit/internal/cache"
	"github.com/sh44ni/internetkit/internal/circuitbreaker"
	"github.com/sh44ni/internetkit/internal/config"
	"github.com/sh44ni/internetkit/internal/dashboard"
	httphandler "github.com/sh44ni/internetkit/internal/http"
	"github.com/sh44ni/internetkit/internal/lifecycle"
	"github.com/sh44ni/internetkit/internal/monitor"
	"github.com/sh44ni/internetkit/internal/netinfo"
	"github.com/sh44ni/internetkit/internal/observability"
	"github.com/sh44ni/internetkit/internal/sampler"
	"github.com/sh44ni/internetkit/internal/service"
)

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	mon, err := monitor.New(sampler.GopsutilSource{}, monitor.Options{
		DataDir:         cfg.DataDir,
		MaxRecords:      cfg.MaxRecords,
		Retention:       cfg.Retention,
		SampleInterval:  cfg.SampleInterval,
		PersistInterval: cfg.PersistInterval,
		CleanupInterval: cfg.CleanupInterval,
	}, logger)
	if err != nil {
		logger.Fatal("monitor", zap.Error(err))
	}
	mon.Start()

	if path, err := dashboard.Install(cfg.DataDir); err != nil {
		logger.Warn("dashboard install failed", zap.Error(err))
	} else {
		logger.Debug("dashboard installed", zap.String("path", path))
	}

	var cacheSvc cache.Cache
	var memcacheCloser *cache.MemcachedCache
	switch cfg.CacheBackend {
	case "memcached":
		mc, err := cache.NewMemcachedCache(cfg.MemcachedAddrs, cfg.MemcachedTimeout, cfg.MemcachedMaxIdleConns)
		if err != nil {
			logger.Fatal("memcached cache", zap.Error(err))
		}
		memcacheCloser = mc
		cacheSvc = mc
		logger.Info("cache backend: memcached", zap.String("addrs", cfg.MemcachedAddrs))
	default:
		cacheSvc = cache.NewInMemoryCache()
		logger.Info("cache backend: in_memory")
	}
	statsService := service.NewStatsService(mon, cacheSvc, cfg.CacheTTL)

	probeBreaker := circuitbreaker.New(circuitbreaker.Config{
		OnStateChange: func(from, to circuitbreaker.State) {
			observability.RecordCircuitBreakerTransition("network_probe", from.String(), to.String())
			observability.SetCircuitBreakerStateGauge("network_probe", int(to))
		},
	})
	observability.SetCircuitBreakerStateGauge("network_probe", 0)
	resolver := netinfo.NewResolver(cfg.NetworkCacheTTL, cfg.NetworkProbeTimeout, probeBreaker)

	healthConfig := &httphandler.HealthConfig{
		OverloadWindow:       cfg.OverloadWindow,
		OverloadThresholdPct: cfg.OverloadThresholdPct,
		RateLimitRPS:         cfg.RateLimitRPS,
		DegradedWindow:       cfg.DegradedWindow,
		DegradedErrorPct:     cfg.DegradedErrorPct,
		StartTime:            time.Now(),
	}
	if memcacheCloser != nil {
		healthConfig.CachePing = memcacheCloser.Ping
	}

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}
	handler := httphandler.NewHandler(statsService, resolver, healthConfig, logger)

	router := mux.NewRouter()
	router.Use(httphandler.CorrelationIDMiddleware(logger))
	router.Use(httphandler.MetricsMiddleware)
	router.Use(httphandler.APIHeadersMiddleware)
	router.HandleFunc("/health", handler.GetHealth).Methods("GET")
	router.Handle("/metrics", observability.MetricsHandler())
	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.Use(httphandler.RateLimitMiddleware(limiter))
	apiRouter.Use(httphandler.TimeoutMiddleware(cfg.RequestTimeout))
	apiRouter.HandleFunc("/live", handler.GetLive).Methods("GET")
	apiRouter.HandleFunc("/history", handler.GetHistory).Methods("GET")
	apiRouter.HandleFunc("/summary", handler.GetSummary).Methods("GET")
	apiRouter.HandleFunc("/network", handler.GetNetwork).Methods("GET")
	router.PathPrefix("/").Handler(dashboard.Handler())

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			zap.String("addr", ":"+cfg.ServerPort),
			zap.String("dashboard", "http://localhost:"+cfg.ServerPort+"/"))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	lifecycle.SetShuttingDown(true)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	inFlight := httphandler.InFlightCount()
	logger.Info("waiting for in-flight requests", zap.Int64("count", inFlight))
	observability.RecordShutdownInFlight(inFlight)
	waitCtx, waitCancel := context.WithTimeout(context.Background(), cfg.ShutdownInFlightTimeout)
	defer waitCancel()
	if err := httphandler.WaitForInFlight(waitCtx, cfg.ShutdownInFlightCheckInterval); err != nil {
		logger.Warn("in-flight requests not completed", zap.Error(err), zap.Int64("remaining", httphandler.InFlightCount()))
	}

	if err := mon.Close(); err != nil {
		logger.Error("monitor close", zap.Error(err))
	}

	if err := observability.FlushTelemetry(context.Background(), logger); err != nil {
		logger.Error("telemetry flush", zap.Error(err))
	}

	if memcacheCloser != nil {
		if err := memcacheCloser.Close(); err != nil {
			logger.Error("memcached close", zap.Error(err))
		}
	}
	logger.Info("shutdown complete")
}
