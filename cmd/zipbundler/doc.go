// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for zipbundler.
//
// This package implements the Cobra command hierarchy for the zipbundler
// CLI: the root command plus the build, watch, init, validate, list and
// info subcommands. Execution goes through charmbracelet/fang for styled
// help, version output and interrupt handling.
package cmd
