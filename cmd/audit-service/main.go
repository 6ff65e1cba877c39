package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/synaptica-ai/cardiorisk/pkg/common/config"
	"github.com/synaptica-ai/cardiorisk/pkg/common/database"
	"github.com/synaptica-ai/cardiorisk/pkg/common/kafka"
	"github.com/synaptica-ai/cardiorisk/pkg/common/logger"
	"github.com/synaptica-ai/cardiorisk/pkg/serving"
)

// audit-service persists prediction events from the event bus into the
// prediction_logs table read by the serving service.
func main() {
	logger.Init()
	cfg := config.Load()

	db, err := database.OpenPostgres(cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to connect to database")
	}
	defer database.ClosePostgres(db)

	repo := serving.NewRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("Failed to migrate prediction log table")
	}

	consumer := kafka.NewConsumer(cfg, cfg.PredictionTopic, cfg.KafkaGroupID)
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Log.WithFields(map[string]interface{}{
		"topic": cfg.PredictionTopic,
		"group": cfg.KafkaGroupID,
	}).Info("Audit Service started")

	if err := consumer.Consume(ctx, serving.AuditHandler(repo)); err != nil && ctx.Err() == nil {
		logger.Log.WithError(err).Error("Consumer stopped")
	}

	logger.Log.Info("Audit Service stopped")
}
