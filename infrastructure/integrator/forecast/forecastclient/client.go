package forecastclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	forecastdomain "github.com/salestrack/sales-tracker-api/infrastructure/integrator/forecast/domain"
	"github.com/salestrack/sales-tracker-api/internal/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Client interface {
	Train(ctx context.Context, req forecastdomain.TrainRequest) (*forecastdomain.TrainResponse, error)
	Predict(ctx context.Context, req forecastdomain.PredictRequest) (forecastdomain.PredictResponse, error)
}

// StatusError is returned when the forecast service answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("forecast service responded with status %d", e.StatusCode)
	}
	return fmt.Sprintf("forecast service responded with status %d: %s", e.StatusCode, e.Message)
}

type ForecastClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient builds a client for the forecast service. httpClient may be shared
// with other clients; when nil a dedicated one is created with cfg.Timeout.
func NewClient(cfg config.Forecast, httpClient *http.Client) Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &ForecastClient{
		httpClient: httpClient,
		baseURL:    cfg.URL,
	}
}

func (c *ForecastClient) post(ctx context.Context, endpointPath string, body any, out any) error {
	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return errors.Wrap(err, "parse forecast base url")
	}
	endpoint.Path = path.Join(endpoint.Path, endpointPath)

	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "call %s", endpointPath)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read response")
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var errResp forecastdomain.ErrorResponse
		_ = json.Unmarshal(raw, &errResp)
		return &StatusError{StatusCode: resp.StatusCode, Message: errResp.Error}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrap(err, "decode response")
	}

	return nil
}
