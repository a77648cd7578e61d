// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path"
	"strings"

	"github.com/spf13/cobra"

	"zipbundler/internal/pathset"
)

var (
	listFlags pipelineFlags
	listCount bool
	listTree  bool

	// listCmd prints the resolved file set without building
	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List the files a build would bundle",
		Long: `List the files a build would bundle.

Runs config resolution and include filtering only; nothing is written.
Each line is the archive path an entry would occupy. --count prints just
the total, --tree groups entries by directory.`,
		Args: cobra.NoArgs,
		RunE: runList,
	}
)

func init() {
	listFlags.register(listCmd.Flags())
	listCmd.Flags().BoolVar(&listCount, "count", false, "print only the number of files")
	listCmd.Flags().BoolVar(&listTree, "tree", false, "group archive paths by directory")
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, root, err := resolvePipeline(listFlags.overrides(cmd.Flags()))
	if err != nil {
		return err
	}

	set, err := pathset.Collect(cfg, root)
	if err != nil {
		return pipelineExit(err)
	}

	out := cmd.OutOrStdout()
	switch {
	case listCount:
		fmt.Fprintf(out, "%d\n", len(set))
	case listTree:
		printTree(cmd, set)
	default:
		for _, ap := range set.ArchivePaths() {
			fmt.Fprintln(out, ap)
		}
	}
	return nil
}

// printTree groups archive paths by directory, indenting entries under a
// directory heading. The set is already sorted, so directories come out in
// lexicographic order.
func printTree(cmd *cobra.Command, set pathset.FileSet) {
	out := cmd.OutOrStdout()
	lastDir := ""
	for _, ap := range set.ArchivePaths() {
		dir := path.Dir(ap)
		if dir != lastDir {
			if dir == "." {
				fmt.Fprintln(out, SubtitleStyle.Render("./"))
			} else {
				fmt.Fprintln(out, SubtitleStyle.Render(dir+"/"))
			}
			lastDir = dir
		}
		depth := strings.Count(dir, "/")
		if dir != "." {
			depth++
		}
		fmt.Fprintf(out, "%s%s\n", strings.Repeat("  ", depth), path.Base(ap))
	}
}
