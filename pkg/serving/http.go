package serving

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/synaptica-ai/cardiorisk/pkg/cardio"
	"github.com/synaptica-ai/cardiorisk/pkg/common/logger"
	"github.com/synaptica-ai/cardiorisk/pkg/common/models"
)

type LogReader interface {
	Recent(ctx context.Context, limit int) ([]PredictionLog, error)
}

type HTTPHandler struct {
	service *Service
	logs    LogReader
	maxBody int64
}

// NewHTTPHandler wires the prediction routes. logs may be nil when no audit
// database is configured.
func NewHTTPHandler(service *Service, logs LogReader, maxBody int64) *HTTPHandler {
	return &HTTPHandler{service: service, logs: logs, maxBody: maxBody}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/api/v1/predict", h.handlePredict).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/model", h.handleModel).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/predictions/recent", h.handleRecent).Methods(http.MethodGet)
}

func (h *HTTPHandler) handlePredict(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	var input cardio.PatientInput
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&input); err != nil {
		logger.Log.WithError(err).Warn("invalid prediction payload")
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	resp, err := h.service.Predict(r.Context(), input)
	if err != nil {
		status, kind := StatusFor(err)
		if status == http.StatusInternalServerError {
			logger.Log.WithError(err).Error("prediction failed")
			writeError(w, status, kind, "internal error")
			return
		}
		writeError(w, status, kind, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) handleModel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.ModelInfo())
}

func (h *HTTPHandler) handleRecent(w http.ResponseWriter, r *http.Request) {
	if h.logs == nil {
		writeError(w, http.StatusNotImplemented, "audit_disabled", "prediction audit log is not configured")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	logs, err := h.logs.Recent(r.Context(), limit)
	if err != nil {
		logger.Log.WithError(err).Error("failed to fetch prediction logs")
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

// StatusFor maps the error taxonomy onto HTTP status codes.
func StatusFor(err error) (int, string) {
	switch {
	case cardio.IsInvalidInput(err):
		return http.StatusBadRequest, "invalid_input_range"
	case cardio.IsSchemaMismatch(err):
		return http.StatusUnprocessableEntity, "schema_mismatch"
	case cardio.IsModelLoadFailure(err):
		return http.StatusServiceUnavailable, "model_load_failure"
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout, "canceled"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, models.ErrorResponse{Error: message, Kind: kind})
}
