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
	"github.com/synaptica-ai/cardiorisk/pkg/common/config"
	"github.com/synaptica-ai/cardiorisk/pkg/common/database"
	"github.com/synaptica-ai/cardiorisk/pkg/common/kafka"
	"github.com/synaptica-ai/cardiorisk/pkg/common/logger"
	"github.com/synaptica-ai/cardiorisk/pkg/common/middleware"
	"github.com/synaptica-ai/cardiorisk/pkg/observability/metrics"
	"github.com/synaptica-ai/cardiorisk/pkg/serving"
	"github.com/synaptica-ai/cardiorisk/pkg/serving/predictor"
	"github.com/synaptica-ai/cardiorisk/pkg/storage"
)

func main() {
	logger.Init()
	cfg := config.Load()

	model, err := predictor.Load(cfg.ModelArtifactPath)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load model artifact")
	}
	logger.Log.WithFields(map[string]interface{}{
		"path":     cfg.ModelArtifactPath,
		"version":  model.Version(),
		"encoding": model.Encoding(),
		"features": len(model.FeatureNames()),
	}).Info("Model loaded")

	var opts []serving.Option
	if cfg.RedisEnabled {
		redisClient := database.OpenRedis(cfg)
		defer redisClient.Close()
		opts = append(opts, serving.WithCache(storage.NewPredictionCache(redisClient, cfg.PredictionCachePrefix, cfg.PredictionCacheTTL)))
	}
	if cfg.KafkaEnabled {
		producer := kafka.NewProducer(cfg, cfg.PredictionTopic)
		defer producer.Close()
		opts = append(opts, serving.WithPublisher(producer))
	}

	service := serving.NewService(model, opts...)
	if err := service.Verify(); err != nil {
		logger.Log.WithError(err).Fatal("Model artifact is incompatible with the feature encoder")
	}

	var logs serving.LogReader
	if cfg.PostgresEnabled {
		db, err := database.OpenPostgres(cfg)
		if err != nil {
			logger.Log.WithError(err).Fatal("Failed to connect to database")
		}
		defer database.ClosePostgres(db)
		repo := serving.NewRepository(db)
		if err := repo.AutoMigrate(); err != nil {
			logger.Log.WithError(err).Fatal("Failed to migrate prediction log table")
		}
		logs = repo
	}

	router := mux.NewRouter()
	router.Use(middleware.Recovery, middleware.Logging, middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	router.HandleFunc("/health", healthCheck).Methods(http.MethodGet)
	router.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w)
	}).Methods(http.MethodGet)
	serving.NewHTTPHandler(service, logs, cfg.MaxRequestBody).Register(router)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Serving Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Serving Service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
	}

	logger.Log.Info("Serving Service stopped")
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
