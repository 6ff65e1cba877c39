package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/synaptica-ai/cardiorisk/pkg/cardio"
	"github.com/synaptica-ai/cardiorisk/pkg/common/config"
	"github.com/synaptica-ai/cardiorisk/pkg/common/httpclient"
	"github.com/synaptica-ai/cardiorisk/pkg/common/logger"
	"github.com/synaptica-ai/cardiorisk/pkg/common/models"
	"github.com/synaptica-ai/cardiorisk/pkg/serving"
	"github.com/synaptica-ai/cardiorisk/pkg/serving/predictor"
)

const (
	exitOK = iota
	exitFailure
	exitInvalidInput
	exitSchemaMismatch
	exitModelLoad
)

type predictFunc func(ctx context.Context, input cardio.PatientInput) (models.PredictionResponse, error)

func main() {
	logger.InitWithOutput(os.Stderr)
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg := config.Load()
	defaults := cardio.DefaultInput()

	fs := flag.NewFlagSet("cardio-cli", flag.ContinueOnError)
	fs.SetOutput(stderr)
	artifact := fs.String("artifact", "", "predict locally with this model artifact instead of calling the service")
	url := fs.String("url", cfg.ServingBaseURL, "serving service base URL")

	age := fs.Int("age", defaults.Age, "age in years [18,100]")
	sex := fs.String("sex", string(defaults.Sex), "male|female")
	cp := fs.String("cp", string(defaults.ChestPainType), "asymptomatic|atypical_angina|non_anginal_angina|typical_angina")
	trestbps := fs.Int("trestbps", defaults.RestingBloodPressure, "resting blood pressure, mmHg [80,200]")
	chol := fs.Int("chol", defaults.Cholesterol, "cholesterol, mg/dl [100,600]")
	fbs := fs.Bool("fbs", defaults.FastingBloodSugarHigh, "fasting blood sugar > 120 mg/dl")
	restecg := fs.String("restecg", string(defaults.RestingECG), "normal|st_t_abnormality|lv_hypertrophy")
	thalach := fs.Int("thalach", defaults.MaxHeartRate, "max heart rate [60,220]")
	exang := fs.Bool("exang", defaults.ExerciseAngina, "exercise induced angina")
	oldpeak := fs.Float64("oldpeak", defaults.STDepression, "ST depression, mm [0.0,6.2]")
	slope := fs.String("slope", string(defaults.STSlope), "up|flat|down")
	ca := fs.Int("ca", defaults.MajorVesselsCount, "major vessels [0,4]")
	thal := fs.String("thal", string(defaults.ThalassemiaResult), "normal|fixed_defect|reversible_defect")

	if err := fs.Parse(args); err != nil {
		return exitInvalidInput
	}

	input := cardio.PatientInput{
		Age:                   *age,
		Sex:                   cardio.Sex(*sex),
		ChestPainType:         cardio.ChestPainType(*cp),
		RestingBloodPressure:  *trestbps,
		Cholesterol:           *chol,
		FastingBloodSugarHigh: *fbs,
		RestingECG:            cardio.RestingECG(*restecg),
		MaxHeartRate:          *thalach,
		ExerciseAngina:        *exang,
		STDepression:          *oldpeak,
		STSlope:               cardio.STSlope(*slope),
		MajorVesselsCount:     *ca,
		ThalassemiaResult:     cardio.Thalassemia(*thal),
	}

	var predict predictFunc
	if *artifact != "" {
		model, err := predictor.Load(*artifact)
		if err != nil {
			return report(stderr, err)
		}
		predict = serving.NewService(model).Predict
	} else {
		predict = httpclient.NewServingClient(*url, httpclient.New(cfg.ClientTimeout)).Predict
	}

	resp, err := predict(context.Background(), input)
	if err != nil {
		return report(stderr, err)
	}

	fmt.Fprintf(stdout, "Probability of heart disease: %s\n", resp.Display)
	fmt.Fprintf(stdout, "[%s] %s\n", resp.Tier, resp.Message)
	return exitOK
}

func report(w io.Writer, err error) int {
	fmt.Fprintf(w, "error: %v\n", err)
	switch {
	case errors.Is(err, cardio.ErrInvalidInputRange):
		return exitInvalidInput
	case errors.Is(err, cardio.ErrSchemaMismatch):
		return exitSchemaMismatch
	case errors.Is(err, cardio.ErrModelLoadFailure):
		return exitModelLoad
	default:
		return exitFailure
	}
}
