package cardio

import (
	"fmt"
	"math"
)

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

type ChestPainType string

const (
	ChestPainAsymptomatic   ChestPainType = "asymptomatic"
	ChestPainAtypicalAngina ChestPainType = "atypical_angina"
	ChestPainNonAnginal     ChestPainType = "non_anginal_angina"
	ChestPainTypicalAngina  ChestPainType = "typical_angina"
)

type RestingECG string

const (
	RestingECGNormal        RestingECG = "normal"
	RestingECGSTTAbnormal   RestingECG = "st_t_abnormality"
	RestingECGLVHypertrophy RestingECG = "lv_hypertrophy"
)

type STSlope string

const (
	STSlopeUp   STSlope = "up"
	STSlopeFlat STSlope = "flat"
	STSlopeDown STSlope = "down"
)

type Thalassemia string

const (
	ThalNormal           Thalassemia = "normal"
	ThalFixedDefect      Thalassemia = "fixed_defect"
	ThalReversibleDefect Thalassemia = "reversible_defect"
)

// Ordinal codes, in the order the classifier was trained with.
var (
	sexCodes = map[Sex]int{SexFemale: 0, SexMale: 1}

	chestPainCodes = map[ChestPainType]int{
		ChestPainAsymptomatic:   0,
		ChestPainAtypicalAngina: 1,
		ChestPainNonAnginal:     2,
		ChestPainTypicalAngina:  3,
	}

	restingECGCodes = map[RestingECG]int{
		RestingECGNormal:        0,
		RestingECGSTTAbnormal:   1,
		RestingECGLVHypertrophy: 2,
	}

	slopeCodes = map[STSlope]int{
		STSlopeUp:   0,
		STSlopeFlat: 1,
		STSlopeDown: 2,
	}

	// thal is 1-based.
	thalCodes = map[Thalassemia]int{
		ThalNormal:           1,
		ThalFixedDefect:      2,
		ThalReversibleDefect: 3,
	}
)

// PatientInput is one submission of the clinical form. Treat it as a value:
// the encoder never mutates it.
type PatientInput struct {
	Age                   int           `json:"age"`
	Sex                   Sex           `json:"sex"`
	ChestPainType         ChestPainType `json:"chest_pain_type"`
	RestingBloodPressure  int           `json:"resting_blood_pressure"`
	Cholesterol           int           `json:"cholesterol"`
	FastingBloodSugarHigh bool          `json:"fasting_blood_sugar_high"`
	RestingECG            RestingECG    `json:"resting_ecg"`
	MaxHeartRate          int           `json:"max_heart_rate"`
	ExerciseAngina        bool          `json:"exercise_angina"`
	STDepression          float64       `json:"st_depression"`
	STSlope               STSlope       `json:"st_slope"`
	MajorVesselsCount     int           `json:"major_vessels_count"`
	ThalassemiaResult     Thalassemia   `json:"thalassemia_result"`
}

// DefaultInput returns the form's initial values.
func DefaultInput() PatientInput {
	return PatientInput{
		Age:                  45,
		Sex:                  SexMale,
		ChestPainType:        ChestPainAsymptomatic,
		RestingBloodPressure: 120,
		Cholesterol:          200,
		RestingECG:           RestingECGNormal,
		MaxHeartRate:         150,
		STDepression:         1.0,
		STSlope:              STSlopeUp,
		MajorVesselsCount:    0,
		ThalassemiaResult:    ThalNormal,
	}
}

type intRange struct {
	field    string
	value    int
	min, max int
}

// Validate checks every field against its declared domain.
func (p PatientInput) Validate() error {
	ranges := []intRange{
		{"age", p.Age, 18, 100},
		{"resting_blood_pressure", p.RestingBloodPressure, 80, 200},
		{"cholesterol", p.Cholesterol, 100, 600},
		{"max_heart_rate", p.MaxHeartRate, 60, 220},
		{"major_vessels_count", p.MajorVesselsCount, 0, 4},
	}
	for _, r := range ranges {
		if r.value < r.min || r.value > r.max {
			return &RangeError{Field: r.field, Value: r.value, Domain: fmt.Sprintf("[%d,%d]", r.min, r.max)}
		}
	}
	if math.IsNaN(p.STDepression) || p.STDepression < 0 || p.STDepression > 6.2 {
		return &RangeError{Field: "st_depression", Value: p.STDepression, Domain: "[0.0,6.2]"}
	}

	if _, ok := sexCodes[p.Sex]; !ok {
		return &RangeError{Field: "sex", Value: p.Sex, Domain: "{male,female}"}
	}
	if _, ok := chestPainCodes[p.ChestPainType]; !ok {
		return &RangeError{Field: "chest_pain_type", Value: p.ChestPainType, Domain: "{asymptomatic,atypical_angina,non_anginal_angina,typical_angina}"}
	}
	if _, ok := restingECGCodes[p.RestingECG]; !ok {
		return &RangeError{Field: "resting_ecg", Value: p.RestingECG, Domain: "{normal,st_t_abnormality,lv_hypertrophy}"}
	}
	if _, ok := slopeCodes[p.STSlope]; !ok {
		return &RangeError{Field: "st_slope", Value: p.STSlope, Domain: "{up,flat,down}"}
	}
	if _, ok := thalCodes[p.ThalassemiaResult]; !ok {
		return &RangeError{Field: "thalassemia_result", Value: p.ThalassemiaResult, Domain: "{normal,fixed_defect,reversible_defect}"}
	}
	return nil
}

func boolCode(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
