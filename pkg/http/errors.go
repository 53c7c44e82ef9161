package http

import (
	"fmt"
	"net/http"
)

// AppError is the error entry written in the `data` array of a failed response.
// Code carries the pipeline error kind.
type AppError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Field   string                 `json:"field,omitempty"`
	Params  map[string]interface{} `json:"params,omitempty"`
	Status  int                    `json:"-"`
	Err     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new application error.
func NewAppError(code, field, message string, status int) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Field:   field,
		Status:  status,
	}
}

// WithParams attaches structured context such as the missing instrument.
func (e *AppError) WithParams(params map[string]interface{}) *AppError {
	e.Params = params
	return e
}

// WithError wraps an underlying error.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// TooManyRequestsError is returned when a caller exceeds its request budget.
func TooManyRequestsError(endpoint string) *AppError {
	return NewAppError("RateLimited", "", "too many requests", http.StatusTooManyRequests).
		WithParams(map[string]interface{}{"endpoint": endpoint})
}
