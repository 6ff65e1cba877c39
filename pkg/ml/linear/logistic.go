package linear

import (
	"errors"
	"math"
)

var ErrDimension = errors.New("dimension mismatch")

type Weights struct {
	Bias         float64   `json:"bias" yaml:"bias"`
	Coefficients []float64 `json:"coefficients" yaml:"coefficients"`
}

// Scaler standardizes a sample as (x - mean) / scale. Zero scale entries are
// treated as 1.
type Scaler struct {
	Mean  []float64 `json:"mean" yaml:"mean"`
	Scale []float64 `json:"scale" yaml:"scale"`
}

// Calibration maps a decision value f to 1 / (1 + exp(A*f + B)).
type Calibration struct {
	A float64 `json:"a" yaml:"a"`
	B float64 `json:"b" yaml:"b"`
}

// DefaultCalibration is the plain logistic sigmoid.
var DefaultCalibration = Calibration{A: -1, B: 0}

type Model struct {
	Scaler      *Scaler
	Weights     Weights
	Calibration Calibration
}

func (m Model) Dimension() int {
	return len(m.Weights.Coefficients)
}

func (m Model) Validate() error {
	n := m.Dimension()
	if n == 0 {
		return errors.New("model has no coefficients")
	}
	if m.Scaler != nil && (len(m.Scaler.Mean) != n || len(m.Scaler.Scale) != n) {
		return ErrDimension
	}
	if m.Calibration.A == 0 {
		return errors.New("calibration slope must be non-zero")
	}
	return nil
}

// Decision returns the signed distance of sample from the separating
// hyperplane, after scaling.
func (m Model) Decision(sample []float64) (float64, error) {
	if len(sample) != m.Dimension() {
		return 0, ErrDimension
	}
	x := sample
	if m.Scaler != nil {
		x = m.Scaler.Transform(sample)
	}
	return dot(m.Weights.Coefficients, x) + m.Weights.Bias, nil
}

// Probability of the positive class.
func (m Model) Probability(sample []float64) (float64, error) {
	f, err := m.Decision(sample)
	if err != nil {
		return 0, err
	}
	return m.Calibration.Apply(f), nil
}

func (s Scaler) Transform(sample []float64) []float64 {
	out := make([]float64, len(sample))
	for i, v := range sample {
		scale := s.Scale[i]
		if scale == 0 {
			scale = 1
		}
		out[i] = (v - s.Mean[i]) / scale
	}
	return out
}

func (c Calibration) Apply(f float64) float64 {
	return 1 / (1 + math.Exp(c.A*f+c.B))
}

func dot(weights []float64, sample []float64) float64 {
	var sum float64
	for i := 0; i < len(weights); i++ {
		sum += weights[i] * sample[i]
	}
	return sum
}
