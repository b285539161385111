package valueobject

import (
	"errors"
	"fmt"
)

// Sentinel errors for the pricing domain. Transports map these to status
// codes with errors.Is.
var (
	ErrValidation               = errors.New("validation failed")
	ErrUnknownProduct           = errors.New("unknown product type")
	ErrConfigurationUnavailable = errors.New("rate configuration unavailable")
	ErrInvalidRateConfig        = errors.New("invalid rate configuration")
	ErrUnknownReference         = errors.New("unknown configuration reference")
	ErrPersistence              = errors.New("scenario store failure")
	ErrScenarioNotFound         = errors.New("scenario not found")
)

// UnknownProductError reports a product code outside the supported set.
type UnknownProductError struct {
	Value string
}

func (e *UnknownProductError) Error() string {
	return "Unknown product type: " + e.Value
}

// Is lets errors.Is match ErrUnknownProduct.
func (e *UnknownProductError) Is(target error) bool {
	return target == ErrUnknownProduct
}

// InvalidInputError reports a single structurally invalid request field.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is lets errors.Is match ErrValidation.
func (e *InvalidInputError) Is(target error) bool {
	return target == ErrValidation
}
