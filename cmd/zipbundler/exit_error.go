// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"zipbundler/pkg/types"
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

// Error returns the error message for ExitError. ActionableError causes
// render with their suggestions, the full chain in verbose mode.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return formatErrorForDisplay(e.Err, verbose)
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}
