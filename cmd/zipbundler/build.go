// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"zipbundler/internal/archive"
	"zipbundler/internal/pathset"
	"zipbundler/internal/plan"
)

var (
	buildFlags  pipelineFlags
	buildForce  bool
	buildDryRun bool

	// buildCmd assembles the archive once
	buildCmd = &cobra.Command{
		Use:   "build",
		Short: "Build the configured archive",
		Long: `Build the configured archive.

Resolves the configuration, collects and filters the include patterns,
and assembles the zip archive. When a build manifest from a previous run
exists and nothing changed, the build is skipped; --force rebuilds
regardless and --dry-run stops after planning.`,
		Args: cobra.NoArgs,
		RunE: runBuild,
	}
)

func init() {
	buildFlags.register(buildCmd.Flags())
	buildCmd.Flags().BoolVarP(&buildForce, "force", "f", false, "rebuild even when the manifest says up to date")
	buildCmd.Flags().BoolVar(&buildDryRun, "dry-run", false, "plan the build and report, without assembling")
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, root, err := resolvePipeline(buildFlags.overrides(cmd.Flags()))
	if err != nil {
		return err
	}

	set, err := pathset.Collect(cfg, root)
	if err != nil {
		return pipelineExit(err)
	}

	manifestPath := plan.ManifestPath(cfg.OutputPath)
	manifest, err := plan.Load(manifestPath)
	if err != nil {
		return pipelineExit(err)
	}

	decision, err := plan.Decide(set, cfg, manifest, buildForce)
	if err != nil {
		return pipelineExit(err)
	}

	if buildDryRun {
		verb := "would skip"
		if decision.Rebuild {
			verb = "would rebuild"
		}
		fmt.Printf("%s %s (%s): %d files\n",
			SubtitleStyle.Render("dry run:"), verb, decision.Reason, len(set))
		return nil
	}

	if !decision.Rebuild {
		fmt.Printf("%s %s (%s)\n",
			SuccessStyle.Render("✓"), PathStyle.Render(cfg.OutputPath), decision.Reason)
		return nil
	}

	res, err := archive.Assemble(set, cfg)
	if err != nil {
		return pipelineExit(err)
	}

	m := plan.NewManifest(cfg, decision.Snapshot, time.Now().Unix())
	if err := m.Save(manifestPath); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), WarningStyle.Render("Warning: ")+"cannot persist build manifest: "+err.Error())
	}

	fmt.Printf("%s Built %s (%d files, %d bytes in %s)\n",
		SuccessStyle.Render("✓"), PathStyle.Render(res.OutputPath),
		res.FileCount, res.SizeBytes, res.Duration.Round(time.Millisecond))
	return nil
}
