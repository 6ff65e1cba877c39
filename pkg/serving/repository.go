package serving

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/synaptica-ai/cardiorisk/pkg/common/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PredictionLog is the persistence model for the prediction audit trail.
type PredictionLog struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey;column:id" json:"id"`
	EventID      string            `gorm:"column:event_id;uniqueIndex" json:"event_id"`
	ModelName    string            `gorm:"column:model_name" json:"model_name"`
	ModelVersion string            `gorm:"column:model_version" json:"model_version"`
	Encoding     string            `gorm:"column:encoding" json:"encoding"`
	Features     datatypes.JSONMap `gorm:"column:features" json:"features"`
	Probability  float64           `gorm:"column:probability" json:"probability"`
	Tier         string            `gorm:"column:tier" json:"tier"`
	Cached       bool              `gorm:"column:cached" json:"cached"`
	LatencyMs    float64           `gorm:"column:latency_ms" json:"latency_ms"`
	CreatedAt    time.Time         `gorm:"column:created_at" json:"created_at"`
}

// TableName overrides gorm naming.
func (PredictionLog) TableName() string {
	return "prediction_logs"
}

// Repository handles prediction log queries.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&PredictionLog{})
}

func (r *Repository) RecordPrediction(ctx context.Context, log *PredictionLog) error {
	return r.db.WithContext(ctx).
		Where(PredictionLog{EventID: log.EventID}).
		FirstOrCreate(log).Error
}

// Recent returns the most recent prediction logs up to limit.
func (r *Repository) Recent(ctx context.Context, limit int) ([]PredictionLog, error) {
	limit = clampLimit(limit)
	var logs []PredictionLog
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 500 {
		return 500
	}
	return limit
}

// LogFromEvent converts a prediction.completed event into a log row.
func LogFromEvent(event models.Event) (*PredictionLog, error) {
	if event.Type != models.EventPredictionCompleted {
		return nil, fmt.Errorf("unexpected event type %q", event.Type)
	}
	data := event.Data
	id, err := uuid.Parse(stringField(data, "prediction_id"))
	if err != nil {
		return nil, fmt.Errorf("prediction_id: %w", err)
	}
	probability, err := toFloat(data["probability"])
	if err != nil {
		return nil, fmt.Errorf("probability: %w", err)
	}
	latency, _ := toFloat(data["latency_ms"])

	features := datatypes.JSONMap{}
	if raw, ok := data["features"].(map[string]interface{}); ok {
		for k, v := range raw {
			features[k] = v
		}
	}
	cached, _ := data["cached"].(bool)

	createdAt := event.Timestamp
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return &PredictionLog{
		ID:           id,
		EventID:      event.ID,
		ModelName:    stringField(data, "model_name"),
		ModelVersion: stringField(data, "model_version"),
		Encoding:     stringField(data, "encoding"),
		Features:     features,
		Probability:  probability,
		Tier:         stringField(data, "tier"),
		Cached:       cached,
		LatencyMs:    latency,
		CreatedAt:    createdAt,
	}, nil
}

func stringField(data map[string]interface{}, key string) string {
	if s, ok := data[key].(string); ok {
		return s
	}
	return ""
}
