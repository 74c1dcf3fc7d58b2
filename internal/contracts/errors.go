package contracts

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the pipeline; callers match them with errors.Is
var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrDataUnavailable      = errors.New("data unavailable")
	ErrFormat               = errors.New("format error")
	ErrInsufficientData     = errors.New("insufficient data")
)

// ConfigError reports a rejected fund or region setting
type ConfigError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s %q: %s", ErrInvalidConfiguration, e.Field, e.Value, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidConfiguration
func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfiguration
}
