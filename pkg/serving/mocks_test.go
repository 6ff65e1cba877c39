package serving

import (
	"context"
	"strconv"
	"sync"

	"github.com/synaptica-ai/cardiorisk/pkg/cardio"
	"github.com/synaptica-ai/cardiorisk/pkg/ml/linear"
)

var (
	_ ModelGateway       = (*mockGateway)(nil)
	_ Cache              = (*mockCache)(nil)
	_ Publisher          = (*mockPublisher)(nil)
	_ PredictionRecorder = (*mockRecorder)(nil)
)

// mockGateway scores rows with a fixed linear model over its schema.
type mockGateway struct {
	features []string
	classes  []int
	encoding cardio.EncodingMode
	model    linear.Model
	calls    int
	err      error
}

func newOneHotGateway(weights map[string]float64, bias float64) *mockGateway {
	features := cardio.OneHotColumns()
	coeffs := make([]float64, len(features))
	for i, col := range features {
		coeffs[i] = weights[col]
	}
	return &mockGateway{
		features: features,
		classes:  []int{0, 1},
		encoding: cardio.ModeOneHot,
		model: linear.Model{
			Weights:     linear.Weights{Bias: bias, Coefficients: coeffs},
			Calibration: linear.DefaultCalibration,
		},
	}
}

func (m *mockGateway) Name() string                  { return "mock" }
func (m *mockGateway) Version() string               { return "test" }
func (m *mockGateway) Encoding() cardio.EncodingMode { return m.encoding }
func (m *mockGateway) FeatureNames() []string        { return append([]string(nil), m.features...) }
func (m *mockGateway) Classes() []int                { return append([]int(nil), m.classes...) }

func (m *mockGateway) PredictProbability(row cardio.FeatureRow) (map[int]float64, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	p, err := m.model.Probability(row)
	if err != nil {
		return nil, cardio.NewSchemaError("%v", err)
	}
	return map[int]float64{m.classes[0]: 1 - p, m.classes[1]: p}, nil
}

type mockCache struct {
	mu      sync.Mutex
	entries map[string]cardio.Assessment
	getErr  error
	sets    int
}

func newMockCache() *mockCache {
	return &mockCache{entries: map[string]cardio.Assessment{}}
}

func cacheKey(version string, row cardio.FeatureRow) string {
	key := version
	for _, v := range row {
		key += ":" + strconv.FormatFloat(v, 'g', -1, 64)
	}
	return key
}

func (m *mockCache) Get(ctx context.Context, version string, row cardio.FeatureRow) (cardio.Assessment, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return cardio.Assessment{}, false, m.getErr
	}
	a, ok := m.entries[cacheKey(version, row)]
	return a, ok, nil
}

func (m *mockCache) Set(ctx context.Context, version string, row cardio.FeatureRow, assessment cardio.Assessment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	m.entries[cacheKey(version, row)] = assessment
	return nil
}

type publishedEvent struct {
	eventType string
	source    string
	data      map[string]interface{}
}

type mockPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (m *mockPublisher) PublishEvent(ctx context.Context, eventType string, source string, data map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, publishedEvent{eventType: eventType, source: source, data: data})
	return m.err
}

type mockRecorder struct {
	RecordFunc func(ctx context.Context, log *PredictionLog) error
	recorded   []*PredictionLog
}

func (m *mockRecorder) RecordPrediction(ctx context.Context, log *PredictionLog) error {
	m.recorded = append(m.recorded, log)
	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, log)
	}
	return nil
}
