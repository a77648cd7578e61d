// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"zipbundler/internal/issue"
	"zipbundler/internal/logs"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose raises the log level to debug
	verbose bool
	// quiet lowers the log level to warn
	quiet bool
	// logLevel sets an explicit log level, overriding -v and -q
	logLevel string
	// cfgFile allows specifying a custom config file
	cfgFile string
	// pyprojectFile allows specifying a custom pyproject.toml
	pyprojectFile string
	// strict turns unknown config keys and bad enum values into errors
	strict bool
	// projectRoot is the directory config resolution and includes run against
	projectRoot string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "zipbundler",
		Short: "Bundle source trees into a single runnable zipapp archive",
		Long: TitleStyle.Render("zipbundler") + SubtitleStyle.Render(" - deterministic zipapp bundling") + `

zipbundler packages Python source trees into a single zipapp-compatible
archive: an optional shebang line, a standards-conformant zip stream, a
generated __main__.py entry stub and a PKG-INFO metadata record.

Builds are reproducible (fixed entry timestamps, sorted file order) and
incremental (a manifest beside the archive records content fingerprints,
so unchanged trees are not rebuilt).

` + SubtitleStyle.Render("Quick Start:") + `
  1. Run 'zipbundler init' to create a .zipbundler.jsonc config
  2. Adjust the include patterns and entry point
  3. Run 'zipbundler build' to produce the archive

` + SubtitleStyle.Render("Examples:") + `
  zipbundler build                  Build the configured archive
  zipbundler build --force          Rebuild even when up to date
  zipbundler watch                  Rebuild on source changes
  zipbundler list                   Show the files a build would bundle
  zipbundler info dist/bundle.pyz   Inspect an existing archive`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only report warnings and errors")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "explicit log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.zipbundler.jsonc)")
	rootCmd.PersistentFlags().StringVar(&pyprojectFile, "pyproject", "", "project metadata file (default is ./pyproject.toml)")
	rootCmd.PersistentFlags().BoolVar(&strict, "strict", false, "treat unknown config keys and values as errors")
	rootCmd.PersistentFlags().StringVarP(&projectRoot, "directory", "C", ".", "project root to resolve config and includes against")

	// Add subcommands
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(infoCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}

// initRootConfig loads .env overrides and settles the log level before any
// subcommand runs.
func initRootConfig() {
	// A .env beside the invocation is a convenience, not a requirement.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+"cannot load .env: "+err.Error())
	}

	level := logs.ResolveLevel(quiet, verbose, logLevel)
	if err := logs.SetLevel(level); err != nil {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+err.Error())
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
