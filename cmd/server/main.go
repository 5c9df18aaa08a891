package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/rcalvert/option-tracker/internal/api"
	"github.com/rcalvert/option-tracker/internal/config"
	"github.com/rcalvert/option-tracker/internal/database"
	"github.com/rcalvert/option-tracker/internal/kafka"
	"github.com/rcalvert/option-tracker/internal/quotes"
	"github.com/rcalvert/option-tracker/internal/risk"
	"github.com/rcalvert/option-tracker/internal/sheet"
	"github.com/rcalvert/option-tracker/internal/tracker"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := sheet.NewGoogleSheetStore(ctx, cfg.Sheet)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to position store")
	}
	adapter := sheet.NewAdapter(store, log)
	if err := adapter.Init(ctx); err != nil {
		log.WithError(err).Fatal("failed to initialize position store")
	}
	log.WithField("spreadsheet", cfg.Sheet.SpreadsheetID).Info("connected to position store")

	var cache quotes.Cache
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cache = quotes.NewRedisCache(client, cfg.Risk.QuoteTTL)
		log.WithField("addr", cfg.Redis.Addr).Info("using redis quote cache")
	} else {
		cache = quotes.NewMemoryCache(cfg.Risk.QuoteTTL)
		log.Info("using in-memory quote cache")
	}
	source := quotes.NewAlpacaSource(cfg.Alpaca)
	priceService := quotes.NewService(source, cache, log)

	var archive tracker.AlertArchive
	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		log.WithError(err).Warn("alert archive unavailable, continuing without it")
	} else {
		defer db.Close()
		archive = db
		log.Info("connected to alert archive")
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.EventTopic)
	defer producer.Close()

	buckets, err := risk.NewBucketConfig(cfg.Risk.BucketThresholds)
	if err != nil {
		log.WithError(err).Warn("invalid bucket thresholds, using defaults")
		buckets = risk.DefaultBucketConfig()
	}

	trackerService := tracker.New(adapter, priceService, archive, producer, tracker.Config{
		Buckets:           buckets,
		HighRiskThreshold: cfg.Risk.HighRiskThreshold,
		ExpiryWindowDays:  cfg.Risk.ExpiryWindowDays,
	}, log)

	if cfg.Kafka.FillsTopic != "" {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.FillsTopic, cfg.Kafka.GroupID, adapter, log)
		defer consumer.Close()
		go func() {
			if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("fill consumer stopped")
			}
		}()
		log.WithField("topic", cfg.Kafka.FillsTopic).Info("fill consumer started")
	}

	handler := api.NewHandler(trackerService, log)
	router := api.SetupRoutes(handler)

	server := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.WithField("addr", server.Addr).Info("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown failed")
	}
}
