// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// CompressionMethod selects the zip compression applied to every entry.
// It is a closed enum; dispatch to the matching writer happens in the
// archive assembler.
type CompressionMethod string

const (
	CompressionStored  CompressionMethod = "stored"
	CompressionDeflate CompressionMethod = "deflate"
	CompressionBzip2   CompressionMethod = "bzip2"
	CompressionLZMA    CompressionMethod = "lzma"
)

// ValidCompressionMethods lists every accepted compression method, in the
// order shown to users in error messages.
var ValidCompressionMethods = []CompressionMethod{
	CompressionStored,
	CompressionDeflate,
	CompressionBzip2,
	CompressionLZMA,
}

// IsValid reports whether the method is one of the closed enum values.
func (m CompressionMethod) IsValid() bool {
	for _, v := range ValidCompressionMethods {
		if m == v {
			return true
		}
	}
	return false
}

func (m CompressionMethod) String() string { return string(m) }

// DefaultInterpreter is the shebang interpreter used when the config enables
// a shebang without naming an interpreter.
const DefaultInterpreter = "/usr/bin/env python3"

// entryPointRe accepts dotted module paths with an optional :function suffix.
var entryPointRe = regexp.MustCompile(
	`^[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)*(:[a-zA-Z_][a-zA-Z0-9_]*)?$`)

// EntryPoint is a parsed module[:function] reference. Function is empty when
// the entry point names a bare module.
type EntryPoint struct {
	Module   string
	Function string
}

// ParseEntryPoint parses a module[.submodule]*[:identifier] string.
func ParseEntryPoint(s string) (*EntryPoint, error) {
	if !entryPointRe.MatchString(s) {
		return nil, &ConfigError{
			Field:   "entry_point",
			Message: fmt.Sprintf("%q does not match module[.submodule]*[:function]", s),
		}
	}
	module, function, _ := strings.Cut(s, ":")
	return &EntryPoint{Module: module, Function: function}, nil
}

// String renders the entry point back to its module[:function] form.
func (e *EntryPoint) String() string {
	if e.Function == "" {
		return e.Module
	}
	return e.Module + ":" + e.Function
}

// IncludePattern is one include entry: a glob (or literal path) plus an
// optional explicit archive destination from the source:dest form.
type IncludePattern struct {
	Source string
	Dest   string
}

// ParseIncludePattern splits a raw include string on its first colon.
// "src/app/**/*.py" has no destination; "extra/lib:lib" maps extra/lib
// under lib/ in the archive.
func ParseIncludePattern(raw string) (IncludePattern, error) {
	source, dest, hasDest := strings.Cut(raw, ":")
	if strings.TrimSpace(source) == "" {
		return IncludePattern{}, &ConfigError{
			Field:   "include",
			Message: fmt.Sprintf("empty source in include pattern %q", raw),
		}
	}
	if hasDest && strings.TrimSpace(dest) == "" {
		return IncludePattern{}, &ConfigError{
			Field:   "include",
			Message: fmt.Sprintf("empty destination in include pattern %q", raw),
		}
	}
	return IncludePattern{Source: source, Dest: dest}, nil
}

// String renders the pattern back to its source[:dest] form.
func (p IncludePattern) String() string {
	if p.Dest == "" {
		return p.Source
	}
	return p.Source + ":" + p.Dest
}

// Metadata is the PKG-INFO-style record embedded in every archive.
type Metadata struct {
	Name    string
	Version string
	Summary string
	Author  string
	License string
	// Extra holds additional key/value pairs from the config's metadata
	// table, written after the well-known fields in sorted key order.
	Extra map[string]string
}

// ResolvedConfig is the fully-resolved, immutable build configuration.
// Every field holds a concrete value once Resolve returns; nothing is
// re-read from the environment or from files afterwards.
type ResolvedConfig struct {
	Includes         []IncludePattern
	Excludes         []string
	RespectGitignore bool

	OutputPath string

	EntryPoint      *EntryPoint
	Interpreter     string // empty means no shebang line
	InsertMainGuard bool
	ForceMainStub   bool // synthesize __main__.py even when the FileSet has one

	Compression      CompressionMethod
	CompressionLevel *int // nil means the writer's default

	DisableBuildTimestamp bool
	HashContents          bool

	WatchInterval time.Duration
	Debounce      time.Duration

	Metadata Metadata

	// Warnings collects non-fatal findings from non-strict resolution.
	Warnings []string
}

// HasShebang reports whether the output starts with a shebang line.
func (c *ResolvedConfig) HasShebang() bool { return c.Interpreter != "" }
