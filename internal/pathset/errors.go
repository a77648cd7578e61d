// SPDX-License-Identifier: MPL-2.0

package pathset

import (
	"errors"
	"fmt"
)

// ErrCollision is the sentinel error wrapped by CollisionError.
var ErrCollision = errors.New("archive path collision")

// ErrInvalidPath is the sentinel error wrapped by InvalidPathError.
var ErrInvalidPath = errors.New("invalid archive path")

// CollisionError reports two distinct source files mapping to the same
// archive path without an intentional overlay (both sides naming an explicit
// destination). It is fatal; nothing is silently overwritten.
type CollisionError struct {
	ArchivePath  string
	FirstSource  string
	SecondSource string
}

// Error implements the error interface.
func (e *CollisionError) Error() string {
	return fmt.Sprintf("archive path %q claimed by both %s and %s",
		e.ArchivePath, e.FirstSource, e.SecondSource)
}

// Unwrap returns ErrCollision for errors.Is detection.
func (e *CollisionError) Unwrap() error { return ErrCollision }

// InvalidPathError reports an archive path that would escape the archive
// root or is otherwise malformed (absolute, or containing ".." segments).
type InvalidPathError struct {
	ArchivePath string
	Source      string
}

// Error implements the error interface.
func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("archive path %q (from %s) escapes the archive root", e.ArchivePath, e.Source)
}

// Unwrap returns ErrInvalidPath for errors.Is detection.
func (e *InvalidPathError) Unwrap() error { return ErrInvalidPath }
