package domain

import "time"

type ReportStatus string

const (
	ReportIdle       ReportStatus = "idle"
	ReportLoading    ReportStatus = "loading"
	ReportLoaded     ReportStatus = "loaded"
	ReportLoadFailed ReportStatus = "load_failed"
)

const NoMatchingSalesMessage = "No sales match the selected filters."

// ReportNotice is an error or warning attached to a report view.
type ReportNotice struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Detail  string    `json:"detail,omitempty"`
}

func NoticeFromError(err error) *ReportNotice {
	kind := KindOf(err)
	return &ReportNotice{
		Kind:    kind,
		Message: kind.Message(),
		Detail:  err.Error(),
	}
}

type ReportState struct {
	Status       ReportStatus       `json:"status"`
	Sequence     uint64             `json:"sequence"`
	Filters      SaleFilters        `json:"filters"`
	Period       PredictionPeriod   `json:"period"`
	Sales        []*Sale            `json:"sales"`
	Aggregation  *AggregationResult `json:"aggregation"`
	Predictions  []PredictionPoint  `json:"predictions"`
	ModelTrained bool               `json:"model_trained"`
	Error        *ReportNotice      `json:"error,omitempty"`
	Warning      *ReportNotice      `json:"warning,omitempty"`
	Info         string             `json:"info,omitempty"`
	StartedAt    *time.Time         `json:"started_at,omitempty"`
	FinishedAt   *time.Time         `json:"finished_at,omitempty"`
}

// Clone copies the state. Sales are shared since they are never mutated once loaded.
func (s *ReportState) Clone() *ReportState {
	if s == nil {
		return nil
	}
	clone := *s
	if s.Sales != nil {
		clone.Sales = append([]*Sale(nil), s.Sales...)
	}
	if s.Predictions != nil {
		clone.Predictions = append([]PredictionPoint(nil), s.Predictions...)
	}
	if s.Aggregation != nil {
		aggregation := *s.Aggregation
		clone.Aggregation = &aggregation
	}
	return &clone
}
