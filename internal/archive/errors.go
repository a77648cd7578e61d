// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"errors"
	"fmt"
)

// ErrBuild is the sentinel error wrapped by BuildError. The CLI maps it to
// exit code 3; the watch loop logs it and keeps running.
var ErrBuild = errors.New("build error")

// ErrFilesystemRace marks a source file that vanished between filtering and
// assembly. It is a BuildError subtype: errors.Is matches both sentinels.
var ErrFilesystemRace = errors.New("source file vanished")

// BuildError reports an I/O or assembly failure.
type BuildError struct {
	Op    string
	Path  string
	Cause error
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	msg := "failed to " + e.Op
	if e.Path != "" {
		msg += ": " + e.Path
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the cause when set, otherwise ErrBuild.
func (e *BuildError) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return ErrBuild
}

// Is reports true for ErrBuild so wrapped causes do not hide the category.
func (e *BuildError) Is(target error) bool {
	return target == ErrBuild
}

// RaceError is the FilesystemRace case: a FileEntry's source disappeared
// after filtering. One automatic retry happens inside the same build
// attempt before this surfaces.
type RaceError struct {
	Path string
}

// Error implements the error interface.
func (e *RaceError) Error() string {
	return fmt.Sprintf("source file vanished during build: %s", e.Path)
}

// Unwrap returns ErrFilesystemRace.
func (e *RaceError) Unwrap() error { return ErrFilesystemRace }

// Is reports true for both ErrBuild and ErrFilesystemRace.
func (e *RaceError) Is(target error) bool {
	return target == ErrBuild || target == ErrFilesystemRace
}
