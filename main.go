package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dorysbakehouse/bakehouse/backend/handlers"
	"github.com/dorysbakehouse/bakehouse/backend/internal/bakery"
	"github.com/dorysbakehouse/bakehouse/backend/internal/config"
	"github.com/dorysbakehouse/bakehouse/backend/internal/database"
	"github.com/dorysbakehouse/bakehouse/backend/internal/storage"
	"github.com/dorysbakehouse/bakehouse/backend/internal/store"
	"github.com/dorysbakehouse/bakehouse/backend/pkg/logger"
	"github.com/dorysbakehouse/bakehouse/backend/pkg/metrics"
	"github.com/dorysbakehouse/bakehouse/backend/pkg/middleware"
)

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: data=%s upload=%s redis=%v", cfg.Data.Backend, cfg.Upload.Backend, cfg.Redis.Host != "")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, closeBackend, err := store.OpenBackend(ctx, cfg.Data.Backend, cfg)
	if err != nil {
		logger.Fatalf("failed to open %s store: %v", cfg.Data.Backend, err)
	}
	defer closeBackend()
	docs := store.New(backend)

	// ids come from Redis when it is configured and reachable, otherwise from
	// the counters document next to the records
	var seq store.Sequencer = store.NewStoreSequencer(docs)
	if addr := cfg.RedisAddr(); addr != "" {
		rdb, err := database.ConnectRedis(ctx, addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warnf("redis unavailable (%s), using stored counters: %v", addr, err)
		} else {
			defer rdb.Close()
			seq = store.NewRedisSequencer(rdb, "")
			logger.Infof("using Redis at %s for record ids", addr)
		}
	}

	uploads, err := storage.New(ctx, cfg)
	if err != nil {
		logger.Fatalf("failed to initialize %s uploads: %v", cfg.Upload.Backend, err)
	}

	svc := bakery.NewService(docs, uploads, seq)
	if err := svc.Init(ctx); err != nil {
		logger.Fatalf("failed to initialize documents: %v", err)
	}

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.MaxMultipartMemory = cfg.Server.MaxUploadMB << 20

	// Global middlewares: request id, logging, recovery, metrics, CORS
	r.Use(middleware.RequestID(), middleware.RequestLogger(), gin.Recovery(), middleware.Metrics(), middleware.CORS())

	handlers.RegisterHealth(r, backend, uploads)
	handlers.RegisterSwagger(r)
	handlers.NewBakeryHandler(svc).Register(r)
	handlers.RegisterUploads(r, uploads)
	handlers.RegisterPages(r, cfg.Server.PublicDir)

	// Expose Prometheus metrics
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("Backend running on http://%s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
}
