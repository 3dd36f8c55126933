package sheets

import (
	"errors"
	"fmt"
)

// TransportError is a network-level failure. It is the only transient kind.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return "Failed to fetch"
	}
	return "Failed to fetch: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIError is a non-OK HTTP status from the data source.
type APIError struct {
	Status int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.Status)
}

// SchemaError is a response that does not have the expected shape.
type SchemaError struct {
	Msg string
	Err error
}

func (e *SchemaError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *SchemaError) Unwrap() error { return e.Err }

func IsTransient(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
