// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
)

// ErrConfig is the sentinel error wrapped by every ConfigError.
var ErrConfig = errors.New("configuration error")

// ConfigError reports bad or ambiguous configuration. It is always fatal
// and never retried; the CLI maps it to exit code 2.
type ConfigError struct {
	// File is the config file involved, when one is (optional).
	File string

	// Field names the offending key, in dotted form (optional).
	Field string

	// Message describes what is wrong.
	Message string

	// Cause is the underlying parse or I/O error (optional).
	Cause error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	var prefix string
	switch {
	case e.File != "" && e.Field != "":
		prefix = fmt.Sprintf("%s: %s: ", e.File, e.Field)
	case e.File != "":
		prefix = e.File + ": "
	case e.Field != "":
		prefix = e.Field + ": "
	}
	if e.Cause != nil && e.Message == "" {
		return prefix + e.Cause.Error()
	}
	return prefix + e.Message
}

// Unwrap returns the cause when set, otherwise ErrConfig, so callers can use
// errors.Is(err, ErrConfig) for programmatic detection.
func (e *ConfigError) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return ErrConfig
}

// Is reports true for ErrConfig so wrapped causes do not hide the category.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}
