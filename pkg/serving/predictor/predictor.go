package predictor

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/synaptica-ai/cardiorisk/pkg/cardio"
	"github.com/synaptica-ai/cardiorisk/pkg/ml/linear"
	"gopkg.in/yaml.v3"
)

// Artifact is the on-disk description of a trained binary classifier.
type Artifact struct {
	Model struct {
		Name         string              `json:"name" yaml:"name"`
		Version      string              `json:"version" yaml:"version"`
		Algorithm    string              `json:"algorithm" yaml:"algorithm"`
		Encoding     string              `json:"encoding" yaml:"encoding"`
		FeatureNames []string            `json:"feature_names" yaml:"feature_names"`
		Classes      []int               `json:"classes" yaml:"classes"`
		Scaler       *linear.Scaler      `json:"scaler,omitempty" yaml:"scaler,omitempty"`
		Weights      linear.Weights      `json:"weights" yaml:"weights"`
		Calibration  *linear.Calibration `json:"calibration,omitempty" yaml:"calibration,omitempty"`
	} `json:"model" yaml:"model"`
}

// Predictor serves one loaded artifact. It is immutable after Load and safe
// for concurrent use.
type Predictor struct {
	path     string
	name     string
	version  string
	encoding cardio.EncodingMode
	features []string
	classes  []int
	model    linear.Model
}

// Load reads and checks the artifact at path. Any failure wraps
// cardio.ErrModelLoadFailure.
func Load(path string) (*Predictor, error) {
	artifact, err := readArtifact(path)
	if err != nil {
		return nil, &cardio.LoadError{Path: path, Err: err}
	}
	p, err := fromArtifact(artifact)
	if err != nil {
		return nil, &cardio.LoadError{Path: path, Err: err}
	}
	p.path = path
	return p, nil
}

func readArtifact(path string) (Artifact, error) {
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Artifact{}, err
	}
	var artifact Artifact
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(content, &artifact)
	default:
		err = json.Unmarshal(content, &artifact)
	}
	if err != nil {
		return Artifact{}, err
	}
	return artifact, nil
}

func fromArtifact(artifact Artifact) (*Predictor, error) {
	m := artifact.Model
	if len(m.FeatureNames) == 0 {
		return nil, errors.New("artifact missing feature names")
	}
	if len(m.Classes) != 2 {
		return nil, fmt.Errorf("expected a binary classifier, got classes %v", m.Classes)
	}
	if m.Classes[0] == m.Classes[1] {
		return nil, fmt.Errorf("duplicate class label %d", m.Classes[0])
	}
	if algo := strings.ToLower(m.Algorithm); algo != "" && algo != "logistic" && algo != "linear_svm" {
		return nil, fmt.Errorf("unsupported algorithm %q", m.Algorithm)
	}

	mode := cardio.InferMode(m.FeatureNames)
	if m.Encoding != "" {
		parsed, err := cardio.ParseEncodingMode(m.Encoding)
		if err != nil {
			return nil, err
		}
		mode = parsed
	}

	calibration := linear.DefaultCalibration
	if m.Calibration != nil {
		calibration = *m.Calibration
	}
	model := linear.Model{Scaler: m.Scaler, Weights: m.Weights, Calibration: calibration}
	if err := model.Validate(); err != nil {
		return nil, err
	}
	if model.Dimension() != len(m.FeatureNames) {
		return nil, fmt.Errorf("%d coefficients for %d feature names", model.Dimension(), len(m.FeatureNames))
	}

	version := m.Version
	if version == "" {
		version = "latest"
	}
	return &Predictor{
		name:     m.Name,
		version:  version,
		encoding: mode,
		features: append([]string(nil), m.FeatureNames...),
		classes:  append([]int(nil), m.Classes...),
		model:    model,
	}, nil
}

func (p *Predictor) Name() string {
	return p.name
}

func (p *Predictor) Version() string {
	return p.version
}

func (p *Predictor) Path() string {
	return p.path
}

func (p *Predictor) Encoding() cardio.EncodingMode {
	return p.encoding
}

// FeatureNames returns a copy of the schema the model was trained on.
func (p *Predictor) FeatureNames() []string {
	return append([]string(nil), p.features...)
}

func (p *Predictor) Classes() []int {
	return append([]int(nil), p.classes...)
}

// PredictProbability scores row and returns a probability per class label.
// The positive side of the decision function belongs to Classes()[1].
func (p *Predictor) PredictProbability(row cardio.FeatureRow) (map[int]float64, error) {
	if len(row) != len(p.features) {
		return nil, cardio.NewSchemaError("row has %d columns, model expects %d", len(row), len(p.features))
	}
	positive, err := p.model.Probability(row)
	if err != nil {
		return nil, err
	}
	return map[int]float64{
		p.classes[0]: 1 - positive,
		p.classes[1]: positive,
	}, nil
}
