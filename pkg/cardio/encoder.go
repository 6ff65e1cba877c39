package cardio

import (
	"fmt"
	"strings"
)

type EncodingMode string

const (
	ModeRaw    EncodingMode = "raw"
	ModeOneHot EncodingMode = "one_hot"
)

// ParseEncodingMode accepts the artifact spellings of a mode.
func ParseEncodingMode(value string) (EncodingMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "raw":
		return ModeRaw, nil
	case "one_hot", "onehot", "one-hot":
		return ModeOneHot, nil
	default:
		return "", fmt.Errorf("unknown encoding mode %q", value)
	}
}

// Column names as the classifiers were trained with them.
const (
	ColAge      = "age"
	ColSex      = "sex"
	ColCP       = "cp"
	ColTrestbps = "trestbps"
	ColChol     = "chol"
	ColFBS      = "fbs"
	ColRestECG  = "restecg"
	ColThalach  = "thalach"
	ColExang    = "exang"
	ColOldpeak  = "oldpeak"
	ColSlope    = "slope"
	ColCA       = "ca"
	ColThal     = "thal"
)

// RawColumns is the fixed positional order of RAW mode.
var RawColumns = []string{
	ColAge, ColSex, ColCP, ColTrestbps, ColChol, ColFBS, ColRestECG,
	ColThalach, ColExang, ColOldpeak, ColSlope, ColCA, ColThal,
}

// oneHotCardinality lists the nominal columns expanded in ONE_HOT mode and
// how many codes each can take.
var oneHotCardinality = map[string]int{
	ColCP:      len(chestPainCodes),
	ColRestECG: len(restingECGCodes),
	ColSlope:   len(slopeCodes),
}

// FeatureRow is aligned 1:1 with the schema it was encoded against.
type FeatureRow []float64

func (p PatientInput) codes() map[string]float64 {
	return map[string]float64{
		ColAge:      float64(p.Age),
		ColSex:      float64(sexCodes[p.Sex]),
		ColCP:       float64(chestPainCodes[p.ChestPainType]),
		ColTrestbps: float64(p.RestingBloodPressure),
		ColChol:     float64(p.Cholesterol),
		ColFBS:      boolCode(p.FastingBloodSugarHigh),
		ColRestECG:  float64(restingECGCodes[p.RestingECG]),
		ColThalach:  float64(p.MaxHeartRate),
		ColExang:    boolCode(p.ExerciseAngina),
		ColOldpeak:  p.STDepression,
		ColSlope:    float64(slopeCodes[p.STSlope]),
		ColCA:       float64(p.MajorVesselsCount),
		ColThal:     float64(thalCodes[p.ThalassemiaResult]),
	}
}

// OneHotColumns returns every column the ONE_HOT expansion can produce, in
// raw column order with indicator columns in code order.
func OneHotColumns() []string {
	cols := make([]string, 0, len(RawColumns)+8)
	for _, col := range RawColumns {
		n, ok := oneHotCardinality[col]
		if !ok {
			cols = append(cols, col)
			continue
		}
		for code := 0; code < n; code++ {
			cols = append(cols, indicatorName(col, code))
		}
	}
	return cols
}

func indicatorName(col string, code int) string {
	return fmt.Sprintf("%s_%d", col, code)
}

// Encode turns a patient record into the numeric row a classifier expects.
//
// In RAW mode the row is the 13 base columns in RawColumns order; a non-empty
// schema must list exactly those columns in that order. In ONE_HOT mode the
// nominal columns are expanded to indicators and the result is reindexed
// against schema: missing columns are 0, unknown ones are dropped.
func Encode(input PatientInput, schema []string, mode EncodingMode) (FeatureRow, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	values := input.codes()

	switch mode {
	case ModeRaw:
		if len(schema) > 0 && !sameColumns(schema, RawColumns) {
			return nil, NewSchemaError("raw encoding expects %v, model declares %v", RawColumns, schema)
		}
		row := make(FeatureRow, len(RawColumns))
		for i, col := range RawColumns {
			row[i] = values[col]
		}
		return row, nil

	case ModeOneHot:
		expanded := expand(values)
		row := make(FeatureRow, len(schema))
		matched := 0
		for i, col := range schema {
			if v, ok := expanded[col]; ok {
				row[i] = v
				matched++
			}
		}
		if matched == 0 {
			return nil, NewSchemaError("no column of %d-column schema is produced by one-hot encoding", len(schema))
		}
		return row, nil

	default:
		return nil, fmt.Errorf("unknown encoding mode %q", mode)
	}
}

func expand(values map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(values)+8)
	for col, v := range values {
		n, ok := oneHotCardinality[col]
		if !ok {
			out[col] = v
			continue
		}
		for code := 0; code < n; code++ {
			out[indicatorName(col, code)] = 0
		}
		out[indicatorName(col, int(v))] = 1
	}
	return out
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// InferMode picks RAW when schema is exactly the raw column list and ONE_HOT
// otherwise.
func InferMode(schema []string) EncodingMode {
	if sameColumns(schema, RawColumns) {
		return ModeRaw
	}
	return ModeOneHot
}
