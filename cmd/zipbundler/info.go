// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"zipbundler/pkg/zipapp"
)

var (
	// infoCmd inspects an existing archive
	infoCmd = &cobra.Command{
		Use:   "info <archive>",
		Short: "Show the interpreter and metadata of an existing archive",
		Long: `Show the interpreter and metadata of an existing archive.

Reads the shebang line back out of a zipapp archive (compatible with
Python's zipapp.get_interpreter) and prints the PKG-INFO record when the
archive carries one.`,
		Args: cobra.ExactArgs(1),
		RunE: runInfo,
	}
)

// infoMetadataOrder is the display order for well-known PKG-INFO keys.
var infoMetadataOrder = []string{"Name", "Version", "Summary", "Author", "License"}

func runInfo(cmd *cobra.Command, args []string) error {
	a, err := zipapp.Open(args[0])
	if err != nil {
		return pipelineExit(err)
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if interp := a.Interpreter(); interp == "" {
		fmt.Fprintln(out, "No interpreter specified in archive")
	} else {
		fmt.Fprintf(out, "Interpreter: %s\n", PathStyle.Render(interp))
	}
	fmt.Fprintf(out, "Files: %d\n", len(a.Names()))

	meta, err := a.Metadata()
	if err != nil {
		return pipelineExit(err)
	}
	if len(meta) == 0 {
		return nil
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, SubtitleStyle.Render("Metadata:"))
	for _, key := range infoMetadataOrder {
		if value, ok := meta[key]; ok {
			fmt.Fprintf(out, "  %s: %s\n", key, value)
		}
	}
	if ts, ok := meta["Build-Timestamp"]; ok {
		fmt.Fprintf(out, "  Build-Timestamp: %s\n", ts)
	}
	return nil
}
