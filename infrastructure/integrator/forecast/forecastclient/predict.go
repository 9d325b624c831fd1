package forecastclient

import (
	"context"

	forecastdomain "github.com/salestrack/sales-tracker-api/infrastructure/integrator/forecast/domain"
)

const predictPath = "/ml/predict"

func (c *ForecastClient) Predict(ctx context.Context, req forecastdomain.PredictRequest) (forecastdomain.PredictResponse, error) {
	var response forecastdomain.PredictResponse
	if err := c.post(ctx, predictPath, req, &response); err != nil {
		return nil, err
	}
	return response, nil
}
