package actuator

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDuration is returned for a transition time that is not positive.
	ErrInvalidDuration = errors.New("transition time must be positive")
	// ErrThresholdOutOfRange is returned for an auto-extend speed outside [0, 300].
	ErrThresholdOutOfRange = errors.New("extend speed must be within [0, 300] m/s")
	// ErrInvalidLiftAdd is returned for a lift add fraction outside [0, 1].
	ErrInvalidLiftAdd = errors.New("lift add must be within [0, 1]")
	// ErrUnknownKind is returned for an unrecognised surface kind.
	ErrUnknownKind = errors.New("unknown surface kind")
	// ErrUnknownAction is returned for an unrecognised host action.
	ErrUnknownAction = errors.New("unknown action")
)

// ConfigError reports a rejected configuration field.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
