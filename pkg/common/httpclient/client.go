package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/synaptica-ai/cardiorisk/pkg/cardio"
	"github.com/synaptica-ai/cardiorisk/pkg/common/models"
)

// New creates an HTTP client tuned for calls to the serving service.
func New(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// ServingClient submits patient records to a running serving service. Each
// call is a single attempt.
type ServingClient struct {
	baseURL string
	http    *http.Client
}

func NewServingClient(baseURL string, client *http.Client) *ServingClient {
	return &ServingClient{baseURL: strings.TrimRight(baseURL, "/"), http: client}
}

func (c *ServingClient) Predict(ctx context.Context, input cardio.PatientInput) (models.PredictionResponse, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return models.PredictionResponse{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/predict", bytes.NewReader(payload))
	if err != nil {
		return models.PredictionResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var resp models.PredictionResponse
	err = c.do(req, &resp)
	return resp, err
}

func (c *ServingClient) Model(ctx context.Context) (models.ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/model", nil)
	if err != nil {
		return models.ModelInfo{}, err
	}
	var info models.ModelInfo
	err = c.do(req, &info)
	return info, err
}

func (c *ServingClient) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling serving service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp models.ErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errResp); decodeErr != nil {
			return fmt.Errorf("serving service returned %s", resp.Status)
		}
		return remoteError(errResp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// remoteError restores the error taxonomy from an error response so callers
// can match it with errors.Is.
func remoteError(resp models.ErrorResponse) error {
	switch resp.Kind {
	case "invalid_input_range":
		return fmt.Errorf("%s: %w", resp.Error, cardio.ErrInvalidInputRange)
	case "schema_mismatch":
		return fmt.Errorf("%s: %w", resp.Error, cardio.ErrSchemaMismatch)
	case "model_load_failure":
		return fmt.Errorf("%s: %w", resp.Error, cardio.ErrModelLoadFailure)
	default:
		return fmt.Errorf("serving service error (%s): %s", resp.Kind, resp.Error)
	}
}
