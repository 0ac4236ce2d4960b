package payment

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyResponse   = errors.New("host response is empty")
	ErrRecordNotFound  = errors.New("payment record not found")
	ErrDuplicateRecord = errors.New("payment record already exists")
)

// TransportError is returned when the gateway could not be reached or
// answered with a non-200 status. Code is the HTTP status, or 0 when the
// connection itself failed.
type TransportError struct {
	Code    int
	Message string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("paynet transport error (code %d): %s", e.Code, e.Message)
}

// ValidationError is a terminal rejection of the payload by the gateway.
type ValidationError struct {
	Message string
	Raw     string
}

func (e *ValidationError) Error() string {
	return "paynet validation error: " + e.Message
}

// MissingInputError reports a required inbound field that was absent.
type MissingInputError struct {
	Field   string
	Message string
}

func (e *MissingInputError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Field + " is required!"
}

func Missing(field string) error {
	return &MissingInputError{Field: field}
}
