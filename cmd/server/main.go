package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/imageopt/imageopt/internal/config"
	httpHandler "github.com/imageopt/imageopt/internal/handler/http"
	"github.com/imageopt/imageopt/internal/handler/middleware"
	"github.com/imageopt/imageopt/internal/infrastructure/processor"
	"github.com/imageopt/imageopt/internal/infrastructure/storage"
	"github.com/imageopt/imageopt/internal/job"
	"github.com/imageopt/imageopt/internal/scanner"
	"github.com/imageopt/imageopt/internal/usecase"
)

func main() {
	zlog.Init()
	zlog.Logger.Info().Msg("starting imageopt server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load("")
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to load config")
	}

	var uploads storage.Storage
	if cfg.Upload.Enabled {
		uploads, err = storage.New(&cfg.Upload)
		if err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to initialize upload storage")
		}
	}

	saveRetry := retry.Strategy{
		Attempts: cfg.Retry.Attempts,
		Delay:    time.Duration(cfg.Retry.DelayMs) * time.Millisecond,
		Backoff:  cfg.Retry.Backoff,
	}

	sc := scanner.New(cfg.Scan.ProgressEvery)
	proc := processor.New(saveRetry)
	manager := job.NewManager(sc, proc, uploads, cfg.Scan.LogLimit,
		time.Duration(cfg.Scan.CancelWaitSec)*time.Second)
	batchUsecase := usecase.NewBatchUsecase(manager)

	engine := ginext.New("api")
	engine.Use(
		middleware.ErrorHandlerMiddleware(),
		middleware.LoggerMiddleware(),
		middleware.CORSMiddleware(),
	)

	engine.GET("/health", func(c *ginext.Context) {
		c.JSON(http.StatusOK, ginext.H{"status": "ok"})
	})

	batchHandler := httpHandler.NewBatchHandler(batchUsecase)
	batchHandler.RegisterRoutes(engine)

	engine.GET("/", func(c *ginext.Context) {
		c.File(cfg.Server.StaticDir + "/index.html")
	})
	engine.Static("/static", cfg.Server.StaticDir)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSec) * time.Second,
	}

	go func() {
		zlog.Logger.Info().Str("addr", cfg.Server.Addr).Msg("starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	zlog.Logger.Info().Msg("shutdown signal received")

	manager.CancelAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Logger.Error().Err(err).Msg("HTTP server shutdown failed")
	} else {
		zlog.Logger.Info().Msg("HTTP server stopped gracefully")
	}

	zlog.Logger.Info().Msg("server shutdown complete")
}
