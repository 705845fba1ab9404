package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"adsboard/internal/delivery"
	"adsboard/internal/infrastructure"
	"adsboard/internal/usecase"
	"adsboard/pkg/config"
	"adsboard/pkg/logger"
	"adsboard/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level)
	log.Info("Starting server")

	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := infrastructure.OpenPostgres(ctx, cfg.Postgres.DSN())
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to postgres")
	}
	defer db.Close()

	if err := infrastructure.Migrate(ctx, db); err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	bmStore := infrastructure.NewBusinessManagerStore(db)
	reportStore := infrastructure.NewReportStore(db)
	linkStore := infrastructure.NewShareLinkStore(db)
	insightCache := infrastructure.NewRedisInsightCache(redisClient)
	metaClient := infrastructure.NewMetaClient(cfg.Upstream, log, m)
	pdfRenderer := infrastructure.NewFPDFRenderer()

	accountService := usecase.NewAccountService(bmStore, metaClient, log)
	insightService := usecase.NewInsightService(bmStore, reportStore, metaClient, insightCache, cfg.Redis.InsightTTL, log, m)
	reportService := usecase.NewReportService(reportStore, linkStore, insightService, pdfRenderer, cfg.Share.BaseURL, cfg.Share.DefaultExpiry, log, m)

	handlers := delivery.NewHTTPHandlers(accountService, insightService, reportService, log, m)
	router := delivery.NewHTTPRouter(handlers, log, m)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router.SetupRoutes(),
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
}
