package forecastdomain

type PredictRequest struct {
	PredictionPeriod int    `json:"predictionPeriod"`
	StartDate        string `json:"startDate,omitempty"`
	EndDate          string `json:"endDate,omitempty"`
}

// Prediction is a single forecast row. Bounds are optional on the wire.
type Prediction struct {
	Date            string   `json:"date"`
	PredictedAmount *float64 `json:"predicted_amount"`
	LowerBound      *float64 `json:"lower_bound"`
	UpperBound      *float64 `json:"upper_bound"`
}

type PredictResponse []Prediction
