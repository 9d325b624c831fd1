package forecastclient

import (
	"context"

	forecastdomain "github.com/salestrack/sales-tracker-api/infrastructure/integrator/forecast/domain"
)

const trainPath = "/ml/train"

func (c *ForecastClient) Train(ctx context.Context, req forecastdomain.TrainRequest) (*forecastdomain.TrainResponse, error) {
	var response forecastdomain.TrainResponse
	if err := c.post(ctx, trainPath, req, &response); err != nil {
		return nil, err
	}
	return &response, nil
}
