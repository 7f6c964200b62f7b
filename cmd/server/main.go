package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"graphv/internal/config"
	"graphv/internal/db"
	"graphv/internal/handlers"
	"graphv/internal/logger"
	"graphv/internal/metrics"
	"graphv/internal/router"
	"graphv/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, envFound := config.Load()

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zlog.Sync()

	if !envFound {
		zlog.Info("No .env file found, using env vars from system")
	}
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	// Initialize Database
	if err := db.Init(cfg.DatabaseURL, zlog); err != nil {
		zlog.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	collector := metrics.NewCollector("graphv")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := services.GraphOptions{
		MaxDatasets:    cfg.MaxDatasets,
		DatasetTTL:     cfg.DatasetTTL,
		QueryCacheSize: cfg.QueryCacheSize,
		Metrics:        collector,
	}
	if cfg.Neo4jURI != "" {
		mirror, err := services.NewNeo4jMirror(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, zlog)
		if err != nil {
			zlog.Warn("Neo4j mirror disabled", zap.Error(err))
		} else {
			// 异步导出，上传请求不等待 Neo4j
			opts.Mirror = services.NewMirrorQueue(mirror, zlog, 64, 2*time.Minute, func(error) {
				collector.MirrorErrors.Inc()
			})
		}
	}
	graphService, err := services.NewGraphService(db.DB, zlog, opts)
	if err != nil {
		zlog.Fatal("Failed to create graph service", zap.Error(err))
	}

	intro, err := handlers.LoadIntro(cfg.IntroFile)
	if err != nil {
		zlog.Fatal("Failed to load intro", zap.Error(err))
	}

	// Initialize Gin
	r := gin.New()
	r.Use(logger.GinLogger(zlog), logger.GinRecovery(zlog), collector.Middleware())
	r.MaxMultipartMemory = cfg.MaxUploadBytes()

	// Setup Sessions
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{Path: "/", MaxAge: int(cfg.DatasetTTL.Seconds()), HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions("graphv_session", store))

	// Load Templates using Multitemplate to avoid collision and allow handler names
	r.HTMLRender = router.LoadTemplates(cfg.TemplatesDir)

	// Static Assets
	r.Static("/static", cfg.StaticDir)

	router.RegisterRoutes(r, router.Deps{
		DB:             db.DB,
		Graph:          graphService,
		Metrics:        collector,
		Log:            zlog,
		Intro:          intro,
		MaxUploadBytes: cfg.MaxUploadBytes(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("Graph viewer starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("Server shutdown failed", zap.Error(err))
	}
	if err := graphService.Close(shutdownCtx); err != nil {
		zlog.Error("Graph service close failed", zap.Error(err))
	}
}
