package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/synaptica-ai/cardiorisk/pkg/cardio"
)

var (
	predictionsLow      atomic.Int64
	predictionsModerate atomic.Int64
	predictionsHigh     atomic.Int64
	invalidInput        atomic.Int64
	schemaMismatch      atomic.Int64
	internalFailures    atomic.Int64
	cacheHits           atomic.Int64
	latencyMicrosTotal  atomic.Int64
)

func ObservePrediction(tier cardio.RiskTier, latencyMicros int64, cached bool) {
	switch tier {
	case cardio.RiskLow:
		predictionsLow.Add(1)
	case cardio.RiskModerate:
		predictionsModerate.Add(1)
	case cardio.RiskHigh:
		predictionsHigh.Add(1)
	}
	if cached {
		cacheHits.Add(1)
	}
	latencyMicrosTotal.Add(latencyMicros)
}

func ObserveFailure(err error) {
	switch {
	case cardio.IsInvalidInput(err):
		invalidInput.Add(1)
	case cardio.IsSchemaMismatch(err):
		schemaMismatch.Add(1)
	default:
		internalFailures.Add(1)
	}
}

// Reset zeroes every counter.
func Reset() {
	for _, c := range []*atomic.Int64{
		&predictionsLow, &predictionsModerate, &predictionsHigh,
		&invalidInput, &schemaMismatch, &internalFailures,
		&cacheHits, &latencyMicrosTotal,
	} {
		c.Store(0)
	}
}

func WritePrometheus(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "# HELP cardiorisk_predictions_total Completed predictions by risk tier.\n")
	fmt.Fprintf(w, "# TYPE cardiorisk_predictions_total counter\n")
	fmt.Fprintf(w, "cardiorisk_predictions_total{tier=\"low\"} %d\n", predictionsLow.Load())
	fmt.Fprintf(w, "cardiorisk_predictions_total{tier=\"moderate\"} %d\n", predictionsModerate.Load())
	fmt.Fprintf(w, "cardiorisk_predictions_total{tier=\"high\"} %d\n", predictionsHigh.Load())

	fmt.Fprintf(w, "# HELP cardiorisk_prediction_failures_total Aborted predictions by error kind.\n")
	fmt.Fprintf(w, "# TYPE cardiorisk_prediction_failures_total counter\n")
	fmt.Fprintf(w, "cardiorisk_prediction_failures_total{kind=\"invalid_input_range\"} %d\n", invalidInput.Load())
	fmt.Fprintf(w, "cardiorisk_prediction_failures_total{kind=\"schema_mismatch\"} %d\n", schemaMismatch.Load())
	fmt.Fprintf(w, "cardiorisk_prediction_failures_total{kind=\"internal\"} %d\n", internalFailures.Load())

	fmt.Fprintf(w, "# HELP cardiorisk_prediction_cache_hits_total Predictions answered from the cache.\n")
	fmt.Fprintf(w, "# TYPE cardiorisk_prediction_cache_hits_total counter\n")
	fmt.Fprintf(w, "cardiorisk_prediction_cache_hits_total %d\n", cacheHits.Load())

	fmt.Fprintf(w, "# HELP cardiorisk_prediction_latency_microseconds_total Summed prediction latency.\n")
	fmt.Fprintf(w, "# TYPE cardiorisk_prediction_latency_microseconds_total counter\n")
	fmt.Fprintf(w, "cardiorisk_prediction_latency_microseconds_total %d\n", latencyMicrosTotal.Load())
}
