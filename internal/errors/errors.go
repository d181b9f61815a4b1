package errors

import (
	"errors"
	"fmt"
)

// Failure kinds surfaced by the search term pipeline. Concrete errors wrap one of
// these together with their cause, so callers match them with errors.Is.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrDecode        = errors.New("decode error")
	ErrStorage       = errors.New("storage error")
	ErrEndpoint      = errors.New("endpoint error")
	ErrResponseShape = errors.New("response shape error")
)

const MissingConnectionStringMsg = "No 'StorageConnectionString' setting has been configured"

// EndpointStatusError is returned when the predictor endpoint answers with a non-2xx status.
type EndpointStatusError struct {
	StatusCode int
	Status     string
}

func (e *EndpointStatusError) Error() string {
	return fmt.Sprintf("predictor endpoint responded with %s", e.Status)
}

func (e *EndpointStatusError) Is(target error) bool {
	return target == ErrEndpoint
}

// Wrap tags err with kind. The message is prefixed with the kind and msg.
func Wrap(kind error, msg string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", kind, msg)
	}
	return fmt.Errorf("%w: %s: %w", kind, msg, err)
}
