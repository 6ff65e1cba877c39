package models

import (
	"time"

	"github.com/synaptica-ai/cardiorisk/pkg/cardio"
)

// Event Bus models
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // prediction.completed, prediction.failed
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}

const (
	EventPredictionCompleted = "prediction.completed"
	EventPredictionFailed    = "prediction.failed"
)

// Model Serving
type PredictionResponse struct {
	PredictionID string              `json:"prediction_id"`
	Probability  float64             `json:"probability"`
	Percent      float64             `json:"probability_percent"`
	Display      string              `json:"display"`
	Tier         cardio.RiskTier     `json:"tier"`
	Message      string              `json:"message"`
	ModelName    string              `json:"model_name,omitempty"`
	ModelVersion string              `json:"model_version"`
	Encoding     cardio.EncodingMode `json:"encoding"`
	Cached       bool                `json:"cached"`
	Latency      time.Duration       `json:"latency"`
}

type ModelInfo struct {
	Name         string              `json:"name,omitempty"`
	Version      string              `json:"version"`
	Encoding     cardio.EncodingMode `json:"encoding"`
	FeatureNames []string            `json:"feature_names"`
	Classes      []int               `json:"classes"`
	DiseaseLabel int                 `json:"disease_label"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}
