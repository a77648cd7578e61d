// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"zipbundler/internal/logs"
	"zipbundler/internal/watch"
)

var (
	watchFlags        pipelineFlags
	watchInterval     float64
	watchDebounce     float64
	watchBuildOnStart bool

	// watchCmd rebuilds whenever the filtered file set changes
	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Rebuild the archive whenever sources change",
		Long: `Rebuild the archive whenever sources change.

Polls the filtered file set at a fixed interval; changes open a debounce
window that coalesces bursts of edits into a single rebuild. Build
failures are reported and watching continues. Stop with Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}
)

func init() {
	watchFlags.register(watchCmd.Flags())
	watchCmd.Flags().Float64Var(&watchInterval, "interval", 0, "poll interval in seconds (default from config)")
	watchCmd.Flags().Float64Var(&watchDebounce, "debounce", 0, "debounce window in seconds (default from config)")
	watchCmd.Flags().BoolVar(&watchBuildOnStart, "build-on-start", true, "run one build before watching")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ov := watchFlags.overrides(cmd.Flags())
	if cmd.Flags().Changed("interval") {
		ov.WatchInterval = time.Duration(watchInterval * float64(time.Second))
	}
	if cmd.Flags().Changed("debounce") {
		ov.Debounce = time.Duration(watchDebounce * float64(time.Second))
	}

	cfg, root, err := resolvePipeline(ov)
	if err != nil {
		return err
	}

	w, err := watch.New(watch.Config{
		Resolved:     cfg,
		ProjectRoot:  root,
		BuildOnStart: watchBuildOnStart,
		Logger:       logs.App(),
	})
	if err != nil {
		return pipelineExit(err)
	}

	// fang's signal notification cancels this context on interrupt.
	return pipelineExit(w.Run(cmd.Context()))
}
