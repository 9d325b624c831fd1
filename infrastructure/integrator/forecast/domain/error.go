package forecastdomain

// ErrorResponse is the body the forecast service returns on 4xx/5xx.
type ErrorResponse struct {
	Error string `json:"error"`
}
