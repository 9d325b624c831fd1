package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDateRange   = errors.New("end date is before start date")
	ErrInvalidUserFilter  = errors.New("user filter must be a positive id")
	ErrInvalidPeriodValue = errors.New("prediction period must be a positive number")
	ErrInvalidPeriodUnit  = errors.New("unknown prediction period unit")
	ErrPeriodTooLong      = errors.New("prediction period exceeds ten years")
	ErrInvalidGroupKey    = errors.New("unknown user grouping key")
)

// ErrorKind tags report-level failures so callers never branch on message text.
type ErrorKind int

const (
	UnknownErrorKind ErrorKind = iota
	FetchErrorKind
	TrainingErrorKind
	PredictionErrorKind
	ValidationErrorKind
)

var errorKindNames = map[ErrorKind]string{
	UnknownErrorKind:    "unknown_error",
	FetchErrorKind:      "fetch_error",
	TrainingErrorKind:   "training_error",
	PredictionErrorKind: "prediction_error",
	ValidationErrorKind: "validation_error",
}

func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return errorKindNames[UnknownErrorKind]
}

func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *ErrorKind) UnmarshalText(text []byte) error {
	for kind, name := range errorKindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown error kind %q", string(text))
}

// Message is the user-facing text shown for a failure of this kind.
func (k ErrorKind) Message() string {
	switch k {
	case FetchErrorKind:
		return "Could not load sales data."
	case TrainingErrorKind:
		return "Could not train the forecasting model. Historical data is shown without predictions."
	case PredictionErrorKind:
		return "Could not fetch predictions. Please try again."
	case ValidationErrorKind:
		return "Invalid report parameters."
	default:
		return "Unexpected error."
	}
}

// Error carries an ErrorKind alongside the operation that failed.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, msg)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) ErrorKind {
	var kindErr *Error
	if errors.As(err, &kindErr) {
		return kindErr.Kind
	}
	return UnknownErrorKind
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
