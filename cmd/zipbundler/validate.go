// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"zipbundler/internal/pathset"
)

var (
	validateFlags pipelineFlags

	// validateCmd checks the configuration without building
	validateCmd = &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration and report what a build would do",
		Long: `Check the configuration and report what a build would do.

Runs full config resolution and include filtering, then prints a summary.
Problems that would fail a build (bad entry points, unknown keys in
--strict mode, archive path collisions) are reported with the same exit
codes the build command would use.`,
		Args: cobra.NoArgs,
		RunE: runValidate,
	}
)

func init() {
	validateFlags.register(validateCmd.Flags())
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, root, err := resolvePipeline(validateFlags.overrides(cmd.Flags()))
	if err != nil {
		return err
	}

	set, err := pathset.Collect(cfg, root)
	if err != nil {
		return pipelineExit(err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s configuration is valid\n", SuccessStyle.Render("✓"))
	fmt.Fprintf(out, "  output:      %s\n", PathStyle.Render(cfg.OutputPath))
	if cfg.EntryPoint != nil {
		fmt.Fprintf(out, "  entry point: %s\n", cfg.EntryPoint)
	}
	if cfg.HasShebang() {
		fmt.Fprintf(out, "  interpreter: %s\n", cfg.Interpreter)
	}
	fmt.Fprintf(out, "  compression: %s\n", cfg.Compression)
	fmt.Fprintf(out, "  files:       %d\n", len(set))

	if len(set) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(),
			WarningStyle.Render("Warning: ")+"the include patterns match no files")
	}
	return nil
}
