package serving

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/synaptica-ai/cardiorisk/pkg/cardio"
	"github.com/synaptica-ai/cardiorisk/pkg/common/logger"
	"github.com/synaptica-ai/cardiorisk/pkg/common/models"
	"github.com/synaptica-ai/cardiorisk/pkg/observability/metrics"
)

const eventSource = "serving-service"

// ModelGateway is a loaded classifier. Implementations must be safe for
// concurrent reads.
type ModelGateway interface {
	Name() string
	Version() string
	Encoding() cardio.EncodingMode
	FeatureNames() []string
	Classes() []int
	PredictProbability(row cardio.FeatureRow) (map[int]float64, error)
}

type Cache interface {
	Get(ctx context.Context, version string, row cardio.FeatureRow) (cardio.Assessment, bool, error)
	Set(ctx context.Context, version string, row cardio.FeatureRow, assessment cardio.Assessment) error
}

type Publisher interface {
	PublishEvent(ctx context.Context, eventType string, source string, data map[string]interface{}) error
}

// Service runs one encode -> predict -> classify cycle per call.
type Service struct {
	gateway   ModelGateway
	schema    []string
	classes   []int
	mode      cardio.EncodingMode
	cache     Cache
	publisher Publisher
}

type Option func(*Service)

func WithCache(cache Cache) Option {
	return func(s *Service) { s.cache = cache }
}

func WithPublisher(publisher Publisher) Option {
	return func(s *Service) { s.publisher = publisher }
}

func NewService(gateway ModelGateway, opts ...Option) *Service {
	s := &Service{
		gateway: gateway,
		schema:  gateway.FeatureNames(),
		classes: gateway.Classes(),
		mode:    gateway.Encoding(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) ModelInfo() models.ModelInfo {
	return models.ModelInfo{
		Name:         s.gateway.Name(),
		Version:      s.gateway.Version(),
		Encoding:     s.mode,
		FeatureNames: append([]string(nil), s.schema...),
		Classes:      append([]int(nil), s.classes...),
		DiseaseLabel: cardio.DiseaseLabelFor(s.classes),
	}
}

// Verify encodes the form defaults against the model schema so an
// incompatible artifact is rejected at startup instead of on every request.
func (s *Service) Verify() error {
	row, err := cardio.Encode(cardio.DefaultInput(), s.schema, s.mode)
	if err != nil {
		return err
	}
	probabilities, err := s.gateway.PredictProbability(row)
	if err != nil {
		return err
	}
	_, err = cardio.Assess(probabilities, s.classes)
	return err
}

// Predict either returns a complete response or an error; cache and event
// bus failures are logged and never change the outcome.
func (s *Service) Predict(ctx context.Context, input cardio.PatientInput) (models.PredictionResponse, error) {
	start := time.Now()
	predictionID := uuid.New().String()

	assessment, row, cached, err := s.assess(ctx, input)
	if err != nil {
		metrics.ObserveFailure(err)
		s.publish(ctx, models.EventPredictionFailed, map[string]interface{}{
			"prediction_id": predictionID,
			"model_version": s.gateway.Version(),
			"error":         err.Error(),
		})
		return models.PredictionResponse{}, err
	}

	latency := time.Since(start)
	metrics.ObservePrediction(assessment.Tier, latency.Microseconds(), cached)

	resp := models.PredictionResponse{
		PredictionID: predictionID,
		Probability:  assessment.Probability,
		Percent:      assessment.Percent,
		Display:      assessment.Display,
		Tier:         assessment.Tier,
		Message:      assessment.Message,
		ModelName:    s.gateway.Name(),
		ModelVersion: s.gateway.Version(),
		Encoding:     s.mode,
		Cached:       cached,
		Latency:      latency,
	}

	logger.Log.WithFields(map[string]interface{}{
		"prediction_id": predictionID,
		"tier":          assessment.Tier,
		"cached":        cached,
		"latency_ms":    latency.Milliseconds(),
	}).Info("Prediction completed")

	s.publish(ctx, models.EventPredictionCompleted, completedEventData(resp, s.schema, row))
	return resp, nil
}

func (s *Service) assess(ctx context.Context, input cardio.PatientInput) (cardio.Assessment, cardio.FeatureRow, bool, error) {
	row, err := cardio.Encode(input, s.schema, s.mode)
	if err != nil {
		return cardio.Assessment{}, nil, false, err
	}

	if s.cache != nil {
		hit, ok, err := s.cache.Get(ctx, s.gateway.Version(), row)
		if err != nil {
			logger.Log.WithError(err).Warn("prediction cache read failed")
		} else if ok {
			return hit, row, true, nil
		}
	}

	probabilities, err := s.gateway.PredictProbability(row)
	if err != nil {
		return cardio.Assessment{}, nil, false, err
	}
	assessment, err := cardio.Assess(probabilities, s.classes)
	if err != nil {
		return cardio.Assessment{}, nil, false, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, s.gateway.Version(), row, assessment); err != nil {
			logger.Log.WithError(err).Warn("prediction cache write failed")
		}
	}
	return assessment, row, false, nil
}

func (s *Service) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEvent(ctx, eventType, eventSource, data); err != nil {
		logger.Log.WithError(err).WithField("event_type", eventType).Warn("prediction event not published")
	}
}

func completedEventData(resp models.PredictionResponse, schema []string, row cardio.FeatureRow) map[string]interface{} {
	features := make(map[string]interface{}, len(schema))
	for i, col := range schema {
		if i < len(row) {
			features[col] = row[i]
		}
	}
	return map[string]interface{}{
		"prediction_id": resp.PredictionID,
		"model_name":    resp.ModelName,
		"model_version": resp.ModelVersion,
		"encoding":      string(resp.Encoding),
		"features":      features,
		"probability":   resp.Probability,
		"tier":          string(resp.Tier),
		"cached":        resp.Cached,
		"latency_ms":    float64(resp.Latency.Microseconds()) / 1000.0,
	}
}
