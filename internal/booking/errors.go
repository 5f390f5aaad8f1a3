package booking

import (
	"errors"
	"fmt"
)

// ErrInvalidInput covers user-correctable problems: missing attendee
// name or no tickets requested.
var ErrInvalidInput = errors.New("invalid booking input")

// ErrEventNotAvailable means the target event is missing or not
// published.
var ErrEventNotAvailable = errors.New("event not available for booking")

// InsufficientInventoryError reports which ticket kind could not cover
// the requested quantity.
type InsufficientInventoryError struct {
	Kind      string
	Requested int
}

func (e *InsufficientInventoryError) Error() string {
	if e.Requested > 0 {
		return fmt.Sprintf("not enough %s tickets available for quantity %d", e.Kind, e.Requested)
	}
	return fmt.Sprintf("not enough %s tickets available", e.Kind)
}
