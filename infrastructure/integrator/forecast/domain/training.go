package forecastdomain

// TrainingSale is one historical point sent to /ml/train.
type TrainingSale struct {
	SaleDate    string  `json:"sale_date"`
	TotalAmount float64 `json:"total_amount"`
}

type TrainRequest struct {
	Sales []TrainingSale `json:"sales"`
}

type TrainResponse struct {
	Message string `json:"message"`
}
