package cardio

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func sampleInput() PatientInput {
	return PatientInput{
		Age:                   45,
		Sex:                   SexMale,
		ChestPainType:         ChestPainAsymptomatic,
		RestingBloodPressure:  120,
		Cholesterol:           200,
		FastingBloodSugarHigh: false,
		RestingECG:            RestingECGNormal,
		MaxHeartRate:          150,
		ExerciseAngina:        false,
		STDepression:          1.0,
		STSlope:               STSlopeUp,
		MajorVesselsCount:     0,
		ThalassemiaResult:     ThalNormal,
	}
}

func indexOf(schema []string, col string) int {
	for i, c := range schema {
		if c == col {
			return i
		}
	}
	return -1
}

func TestEncodeRawScenario(t *testing.T) {
	row, err := Encode(sampleInput(), nil, ModeRaw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := FeatureRow{45, 1, 0, 120, 200, 0, 0, 150, 0, 1.0, 0, 0, 1}
	if !reflect.DeepEqual(row, want) {
		t.Fatalf("expected %v, got %v", want, row)
	}
}

func TestEncodeRawAgainstDeclaredSchema(t *testing.T) {
	schema := append([]string(nil), RawColumns...)
	row, err := Encode(sampleInput(), schema, ModeRaw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(row) != 13 {
		t.Fatalf("expected 13 columns, got %d", len(row))
	}

	swapped := append([]string(nil), RawColumns...)
	swapped[0], swapped[1] = swapped[1], swapped[0]
	_, err = Encode(sampleInput(), swapped, ModeRaw)
	if !IsSchemaMismatch(err) {
		t.Fatalf("expected schema mismatch for reordered raw schema, got %v", err)
	}
}

func TestEncodeThalIsOneBased(t *testing.T) {
	row, err := Encode(sampleInput(), nil, ModeRaw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := row[indexOf(RawColumns, ColThal)]; got != 1 {
		t.Fatalf("expected thal normal to encode as 1, got %v", got)
	}

	in := sampleInput()
	in.ThalassemiaResult = ThalReversibleDefect
	row, _ = Encode(in, nil, ModeRaw)
	if got := row[indexOf(RawColumns, ColThal)]; got != 3 {
		t.Fatalf("expected reversible defect to encode as 3, got %v", got)
	}
}

func TestEncodeOneHotScenario(t *testing.T) {
	schema := OneHotColumns()
	row, err := Encode(sampleInput(), schema, ModeOneHot)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(row) != len(schema) {
		t.Fatalf("expected %d columns, got %d", len(schema), len(row))
	}

	for _, prefix := range []string{"cp_", "restecg_", "slope_"} {
		ones := 0
		for i, col := range schema {
			if !strings.HasPrefix(col, prefix) {
				continue
			}
			switch row[i] {
			case 1:
				ones++
			case 0:
			default:
				t.Fatalf("indicator %s has value %v", col, row[i])
			}
		}
		if ones != 1 {
			t.Fatalf("expected exactly one %s indicator set, got %d", prefix, ones)
		}
	}

	checks := map[string]float64{
		"cp_0": 1, "cp_3": 0, "restecg_0": 1, "slope_0": 1, "slope_2": 0,
		ColAge: 45, ColSex: 1, ColOldpeak: 1.0, ColThal: 1,
	}
	for col, want := range checks {
		if got := row[indexOf(schema, col)]; got != want {
			t.Fatalf("%s: expected %v, got %v", col, want, got)
		}
	}
}

func TestEncodeOneHotFollowsSchemaOrder(t *testing.T) {
	schema := []string{"thal", "unknown_col", "cp_2", "age", "slope_1"}
	in := sampleInput()
	in.ChestPainType = ChestPainNonAnginal
	in.STSlope = STSlopeFlat

	row, err := Encode(in, schema, ModeOneHot)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := FeatureRow{1, 0, 1, 45, 1}
	if !reflect.DeepEqual(row, want) {
		t.Fatalf("expected %v, got %v", want, row)
	}
}

func TestEncodeOneHotDroppedIndicator(t *testing.T) {
	in := sampleInput()
	in.ChestPainType = ChestPainTypicalAngina
	schema := []string{"age", "cp_0", "cp_1", "cp_2"}

	row, err := Encode(in, schema, ModeOneHot)
	if err != nil {
		t.Fatalf("dropped indicator must not be an error: %v", err)
	}
	for i := 1; i < len(schema); i++ {
		if row[i] != 0 {
			t.Fatalf("expected %s to be 0, got %v", schema[i], row[i])
		}
	}
}

func TestEncodeOneHotNoOverlap(t *testing.T) {
	_, err := Encode(sampleInput(), []string{"foo", "bar"}, ModeOneHot)
	if !IsSchemaMismatch(err) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
	_, err = Encode(sampleInput(), nil, ModeOneHot)
	if !IsSchemaMismatch(err) {
		t.Fatalf("expected schema mismatch for empty schema, got %v", err)
	}
}

func TestEncodeIsIdempotent(t *testing.T) {
	schema := OneHotColumns()
	in := sampleInput()
	in.RestingECG = RestingECGLVHypertrophy
	first, err := Encode(in, schema, ModeOneHot)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Encode(in, schema, ModeOneHot)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical rows, got %v and %v", first, second)
	}
}

func TestEncodeRejectsOutOfRange(t *testing.T) {
	cases := map[string]func(*PatientInput){
		"age low":        func(p *PatientInput) { p.Age = 17 },
		"age high":       func(p *PatientInput) { p.Age = 101 },
		"bp":             func(p *PatientInput) { p.RestingBloodPressure = 79 },
		"chol":           func(p *PatientInput) { p.Cholesterol = 601 },
		"max hr":         func(p *PatientInput) { p.MaxHeartRate = 221 },
		"vessels":        func(p *PatientInput) { p.MajorVesselsCount = 5 },
		"st depression":  func(p *PatientInput) { p.STDepression = 6.3 },
		"negative st":    func(p *PatientInput) { p.STDepression = -0.1 },
		"sex":            func(p *PatientInput) { p.Sex = "other" },
		"chest pain":     func(p *PatientInput) { p.ChestPainType = "" },
		"ecg":            func(p *PatientInput) { p.RestingECG = "abnormal" },
		"slope":          func(p *PatientInput) { p.STSlope = "sideways" },
		"thal":           func(p *PatientInput) { p.ThalassemiaResult = "unknown" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := sampleInput()
			mutate(&in)
			_, err := Encode(in, OneHotColumns(), ModeOneHot)
			if !IsInvalidInput(err) {
				t.Fatalf("expected invalid input, got %v", err)
			}
			var rangeErr *RangeError
			if !errors.As(err, &rangeErr) || rangeErr.Field == "" {
				t.Fatalf("expected RangeError naming the field, got %v", err)
			}
		})
	}
}

func TestEncodeAcceptsDomainBounds(t *testing.T) {
	in := sampleInput()
	in.Age = 100
	in.RestingBloodPressure = 80
	in.Cholesterol = 600
	in.MaxHeartRate = 60
	in.MajorVesselsCount = 4
	in.STDepression = 6.2
	if _, err := Encode(in, nil, ModeRaw); err != nil {
		t.Fatalf("bounds should be accepted: %v", err)
	}
}

func TestInferMode(t *testing.T) {
	if InferMode(RawColumns) != ModeRaw {
		t.Fatal("expected raw mode for raw columns")
	}
	if InferMode(OneHotColumns()) != ModeOneHot {
		t.Fatal("expected one-hot mode for expanded columns")
	}
}

func TestOneHotColumns(t *testing.T) {
	cols := OneHotColumns()
	if len(cols) != 20 {
		t.Fatalf("expected 20 columns, got %d: %v", len(cols), cols)
	}
	if cols[2] != "cp_0" || cols[5] != "cp_3" {
		t.Fatalf("unexpected cp expansion: %v", cols)
	}
}
