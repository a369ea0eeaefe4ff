package pricing

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidInput is the kind wrapped by every InvalidInputError, so callers
// can match with errors.Is without knowing the concrete type.
var ErrInvalidInput = errors.New("invalid input")

// Reason classifies why an attribute value was rejected.
type Reason string

// Rejection reasons.
const (
	ReasonMissing   Reason = "missing"
	ReasonNotNumber Reason = "not a number"
	ReasonInfinite  Reason = "not finite"
	ReasonNegative  Reason = "negative"
)

// InvalidInputError reports the first attribute that failed validation.
type InvalidInputError struct {
	Attribute string
	Reason    Reason
	Value     float64
}

func (e *InvalidInputError) Error() string {
	if e.Reason == ReasonMissing {
		return fmt.Sprintf("%s: %s: %s", ErrInvalidInput, e.Attribute, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s (%s)", ErrInvalidInput, e.Attribute, e.Reason,
		strconv.FormatFloat(e.Value, 'g', -1, 64))
}

// Unwrap exposes ErrInvalidInput to errors.Is.
func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }
