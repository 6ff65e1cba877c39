package cardio

import (
	"fmt"
	"math"
)

type RiskTier string

const (
	RiskLow      RiskTier = "low"
	RiskModerate RiskTier = "moderate"
	RiskHigh     RiskTier = "high"
)

// Percent thresholds, lower bound inclusive.
const (
	ModerateThreshold = 20.0
	HighThreshold     = 50.0
)

const (
	DiseaseLabel  = 1
	FallbackLabel = 0
)

var advisories = map[RiskTier]string{
	RiskLow:      "Low risk based on the current data.",
	RiskModerate: "Possible risk. Additional examination is recommended.",
	RiskHigh:     "Elevated risk. A cardiology consultation is strongly recommended.",
}

type Assessment struct {
	Probability float64  `json:"probability"`
	Percent     float64  `json:"probability_percent"`
	Display     string   `json:"display"`
	Tier        RiskTier `json:"tier"`
	Message     string   `json:"message"`
}

// DiseaseLabelFor returns the label that means "disease present" for a model
// with the given classes: 1 when the model knows it, otherwise 0.
func DiseaseLabelFor(classes []int) int {
	for _, c := range classes {
		if c == DiseaseLabel {
			return DiseaseLabel
		}
	}
	return FallbackLabel
}

// ClassifyPercent maps a percentage in [0,100] to a risk tier.
func ClassifyPercent(percent float64) RiskTier {
	switch {
	case percent >= HighThreshold:
		return RiskHigh
	case percent >= ModerateThreshold:
		return RiskModerate
	default:
		return RiskLow
	}
}

func Advisory(tier RiskTier) string {
	return advisories[tier]
}

// Assess picks the disease probability out of a label->probability mapping
// and grades it.
func Assess(probabilities map[int]float64, classes []int) (Assessment, error) {
	label := DiseaseLabelFor(classes)
	p, ok := probabilities[label]
	if !ok {
		return Assessment{}, NewSchemaError("model returned no probability for label %d", label)
	}
	if math.IsNaN(p) || p < 0 || p > 1 {
		return Assessment{}, fmt.Errorf("probability %v outside [0,1]", p)
	}
	percent := p * 100
	tier := ClassifyPercent(percent)
	return Assessment{
		Probability: p,
		Percent:     percent,
		Display:     fmt.Sprintf("%.3f%%", math.Min(percent, 100)),
		Tier:        tier,
		Message:     Advisory(tier),
	}, nil
}
