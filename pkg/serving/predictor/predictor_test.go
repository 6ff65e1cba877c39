package predictor

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/synaptica-ai/cardiorisk/pkg/cardio"
)

const rawArtifact = `{
  "model": {
    "name": "heart-raw",
    "version": "2024-05-01",
    "algorithm": "logistic",
    "feature_names": ["age","sex","cp","trestbps","chol","fbs","restecg","thalach","exang","oldpeak","slope","ca","thal"],
    "classes": [0, 1],
    "weights": {"bias": 0, "coefficients": [0,0,0,0,0,0,0,0,0,0,0,0,0]}
  }
}`

const oneHotYAML = `model:
  name: heart-svm
  algorithm: linear_svm
  feature_names: [age, cp_0, cp_1]
  classes: [0, 1]
  scaler:
    mean: [50, 0, 0]
    scale: [10, 1, 1]
  weights:
    bias: 0
    coefficients: [1, 0, 0]
  calibration:
    a: -2
    b: 0
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write artifact: %v", err)
	}
	return path
}

func TestLoadRawJSON(t *testing.T) {
	p, err := Load(writeFile(t, "heart_raw.json", rawArtifact))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Encoding() != cardio.ModeRaw {
		t.Fatalf("expected raw encoding to be inferred, got %s", p.Encoding())
	}
	if p.Version() != "2024-05-01" {
		t.Fatalf("unexpected version %q", p.Version())
	}

	row := make(cardio.FeatureRow, 13)
	probs, err := p.PredictProbability(row)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if probs[0] != 0.5 || probs[1] != 0.5 {
		t.Fatalf("expected 0.5/0.5 for zero weights, got %v", probs)
	}
}

func TestLoadOneHotYAML(t *testing.T) {
	p, err := Load(writeFile(t, "heart_svm.yaml", oneHotYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Encoding() != cardio.ModeOneHot {
		t.Fatalf("expected one-hot encoding, got %s", p.Encoding())
	}
	if p.Version() != "latest" {
		t.Fatalf("expected default version, got %q", p.Version())
	}

	// f = (60-50)/10 = 1; p = 1/(1+exp(-2))
	probs, err := p.PredictProbability(cardio.FeatureRow{60, 1, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 1 / (1 + math.Exp(-2))
	if math.Abs(probs[1]-want) > 1e-12 {
		t.Fatalf("expected %v, got %v", want, probs[1])
	}
	if math.Abs(probs[0]+probs[1]-1) > 1e-12 {
		t.Fatalf("probabilities do not sum to 1: %v", probs)
	}
}

func TestPositiveClassFollowsPosition(t *testing.T) {
	artifact := strings.Replace(rawArtifact, `"classes": [0, 1]`, `"classes": [1, 0]`, 1)
	artifact = strings.Replace(artifact, `"bias": 0`, `"bias": 2`, 1)
	p, err := Load(writeFile(t, "inverted.json", artifact))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	probs, _ := p.PredictProbability(make(cardio.FeatureRow, 13))
	if probs[0] <= probs[1] {
		t.Fatalf("expected label 0 (second class) to receive the positive score, got %v", probs)
	}
}

func TestLoadFailures(t *testing.T) {
	cases := map[string]string{
		"bad json":       `{"model":`,
		"no features":    `{"model":{"classes":[0,1],"weights":{"coefficients":[1]}}}`,
		"not binary":     `{"model":{"feature_names":["age"],"classes":[0,1,2],"weights":{"coefficients":[1]}}}`,
		"dimension":      `{"model":{"feature_names":["age","sex"],"classes":[0,1],"weights":{"coefficients":[1]}}}`,
		"bad encoding":   `{"model":{"feature_names":["age"],"encoding":"ordinal","classes":[0,1],"weights":{"coefficients":[1]}}}`,
		"bad algorithm":  `{"model":{"feature_names":["age"],"algorithm":"forest","classes":[0,1],"weights":{"coefficients":[1]}}}`,
		"duplicate":      `{"model":{"feature_names":["age"],"classes":[1,1],"weights":{"coefficients":[1]}}}`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, "model.json", content))
			if !cardio.IsModelLoadFailure(err) {
				t.Fatalf("expected model load failure, got %v", err)
			}
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if !cardio.IsModelLoadFailure(err) || !os.IsNotExist(unwrapLoad(err)) {
		t.Fatalf("expected not-exist load failure, got %v", err)
	}
}

func unwrapLoad(err error) error {
	if le, ok := err.(*cardio.LoadError); ok {
		return le.Err
	}
	return err
}

func TestPredictRejectsWrongWidth(t *testing.T) {
	p, err := Load(writeFile(t, "heart_raw.json", rawArtifact))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.PredictProbability(cardio.FeatureRow{1, 2}); !cardio.IsSchemaMismatch(err) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	p, err := Load(writeFile(t, "heart_raw.json", rawArtifact))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	names := p.FeatureNames()
	names[0] = "mutated"
	if p.FeatureNames()[0] != "age" {
		t.Fatal("feature names must not be shared with callers")
	}
}
