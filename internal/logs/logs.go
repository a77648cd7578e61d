// SPDX-License-Identifier: MPL-2.0

// Package logs owns the application-wide logger.
//
// The logger writes human-oriented output to stderr so that command results
// on stdout stay machine-consumable. Verbosity is resolved from, in order of
// precedence: explicit CLI flags (--log-level / -v / -q) and the LOG_LEVEL
// environment variable, falling back to "info".
package logs

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// EnvLogLevel is the environment variable consulted when no CLI flag sets
// an explicit level.
const EnvLogLevel = "LOG_LEVEL"

// DefaultLevel is used when neither a flag nor LOG_LEVEL is set.
const DefaultLevel = "info"

var (
	appLogger *log.Logger
	initOnce  sync.Once
)

// App returns the shared application logger, creating it on first use with
// the level resolved from the environment.
func App() *log.Logger {
	initOnce.Do(func() {
		appLogger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: false,
		})
		lvl := os.Getenv(EnvLogLevel)
		if lvl == "" {
			lvl = DefaultLevel
		}
		// Ignore a bad LOG_LEVEL here; SetLevel surfaces the error for
		// CLI-provided values, which is where users can act on it.
		_ = setLevel(appLogger, lvl)
	})
	return appLogger
}

// SetLevel sets the logger verbosity from a level name. Accepted names are
// debug, info, warn and error; "trace" is accepted as an alias for debug.
func SetLevel(name string) error {
	return setLevel(App(), name)
}

func setLevel(l *log.Logger, name string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "trace" {
		name = "debug"
	}
	lvl, err := log.ParseLevel(name)
	if err != nil {
		return fmt.Errorf("invalid log level %q (valid: debug, info, warn, error)", name)
	}
	l.SetLevel(lvl)
	return nil
}

// ResolveLevel picks the effective level name from the mutually exclusive
// CLI verbosity flags: --log-level wins, then -q, then -v, then LOG_LEVEL.
func ResolveLevel(quiet, verbose bool, explicit string) string {
	switch {
	case explicit != "":
		return explicit
	case quiet:
		return "warn"
	case verbose:
		return "debug"
	default:
		if env := os.Getenv(EnvLogLevel); env != "" {
			return env
		}
		return DefaultLevel
	}
}
