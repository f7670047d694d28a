package appcore

import (
	"fmt"
	"slices"

	"github.com/lllypuk/imghost/internal/domain/uuid"
)

// ValidateRequired checks that a string is not empty
func ValidateRequired(field, value string) error {
	if value == "" {
		return NewValidationError(field, "is required")
	}
	return nil
}

// ValidateUUID checks that the id is set
func ValidateUUID(field string, id uuid.UUID) error {
	if id.IsZero() {
		return NewValidationError(field, "must be a valid UUID")
	}
	return nil
}

// ValidateEnum checks that value is one of allowedValues
func ValidateEnum(field, value string, allowedValues []string) error {
	if slices.Contains(allowedValues, value) {
		return nil
	}
	return NewValidationError(field, fmt.Sprintf("must be one of: %v", allowedValues))
}

// ValidatePositive checks that value > 0
func ValidatePositive(field string, value int) error {
	if value <= 0 {
		return NewValidationError(field, "must be positive")
	}
	return nil
}

// ValidateNonNegative checks that value >= 0
func ValidateNonNegative(field string, value int) error {
	if value < 0 {
		return NewValidationError(field, "must be non-negative")
	}
	return nil
}

// ValidateRange checks that value lies within [minValue, maxValue]
func ValidateRange(field string, value, minValue, maxValue int) error {
	if value < minValue || value > maxValue {
		return NewValidationError(field, fmt.Sprintf("must be between %d and %d", minValue, maxValue))
	}
	return nil
}
