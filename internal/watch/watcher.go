// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs the build pipeline when the filtered file set
// changes.
//
// The loop is poll-based and cooperative. One logical thread of control
// cycles through idle, scanning, debouncing and building states.
// Every interval the file set is re-collected and re-fingerprinted; a
// difference opens a debounce window that coalesces bursts of changes into
// a single planner and assembler pass. Build failures are logged and the loop
// returns to Idle. Cancellation is honored at the top of each Idle
// iteration and during waits, never mid-write.
package watch

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/charmbracelet/log"

	"zipbundler/internal/archive"
	"zipbundler/internal/config"
	"zipbundler/internal/logs"
	"zipbundler/internal/pathset"
	"zipbundler/internal/plan"
	"zipbundler/internal/testutil"
)

// state names the loop's position for debug logging.
type state int

const (
	stateIdle state = iota
	stateScanning
	stateDebouncing
	stateBuilding
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateScanning:
		return "scanning"
	case stateDebouncing:
		return "debouncing"
	case stateBuilding:
		return "building"
	default:
		return "unknown"
	}
}

// Config configures a Watcher. Resolved and ProjectRoot are required;
// everything else has working defaults.
type Config struct {
	Resolved    *config.ResolvedConfig
	ProjectRoot string

	// Interval and Debounce default to the resolved config's values.
	Interval time.Duration
	Debounce time.Duration

	// BuildOnStart runs one planner and assembler pass before entering the
	// loop, so a stale archive is refreshed immediately.
	BuildOnStart bool

	// Clock defaults to the real clock; tests inject a fake one.
	Clock testutil.Clock

	// Logger defaults to the application logger.
	Logger *log.Logger

	// OnBuild, when set, observes every completed build result.
	OnBuild func(*archive.BuildResult)
}

// Watcher owns the poll loop state between iterations.
type Watcher struct {
	cfg      Config
	clock    testutil.Clock
	logger   *log.Logger
	interval time.Duration
	debounce time.Duration

	// last settled observation, keyed by archive path
	lastSnapshot map[string]plan.FileRecord
}

// New validates the configuration and returns a ready watcher.
func New(cfg Config) (*Watcher, error) {
	if cfg.Resolved == nil {
		return nil, fmt.Errorf("watch: resolved config is required")
	}
	if cfg.ProjectRoot == "" {
		return nil, fmt.Errorf("watch: project root is required")
	}

	w := &Watcher{
		cfg:      cfg,
		clock:    cfg.Clock,
		logger:   cfg.Logger,
		interval: cfg.Interval,
		debounce: cfg.Debounce,
	}
	if w.clock == nil {
		w.clock = testutil.RealClock{}
	}
	if w.logger == nil {
		w.logger = logs.App()
	}
	if w.interval <= 0 {
		w.interval = cfg.Resolved.WatchInterval
	}
	if w.interval <= 0 {
		return nil, fmt.Errorf("watch: poll interval must be positive")
	}
	if w.debounce <= 0 {
		w.debounce = cfg.Resolved.Debounce
	}
	return w, nil
}

// Run blocks until ctx is canceled. The returned error is nil on clean
// cancellation; scan and build failures never terminate the loop.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("watching for changes",
		"root", w.cfg.ProjectRoot, "interval", w.interval)

	if w.cfg.BuildOnStart {
		w.build(ctx)
	}
	if snap, _, err := w.scan(); err == nil {
		w.lastSnapshot = snap
	} else {
		w.logger.Warn("initial scan failed", "err", err)
	}

	for {
		// Idle
		select {
		case <-ctx.Done():
			w.logger.Info("watch stopped")
			return nil
		case <-w.clock.After(w.interval):
		}

		w.logger.Debug("state transition", "state", stateScanning)
		snap, changed, err := w.observe()
		if err != nil {
			w.logger.Error("scan failed", "err", err)
			continue
		}
		if !changed {
			continue
		}

		w.logger.Debug("state transition", "state", stateDebouncing)
		snap, ok := w.settle(ctx, snap)
		if !ok {
			w.logger.Info("watch stopped")
			return nil
		}

		w.logger.Debug("state transition", "state", stateBuilding)
		w.build(ctx)
		w.lastSnapshot = snap
		w.logger.Debug("state transition", "state", stateIdle)
	}
}

// scan collects and fingerprints the current file set.
func (w *Watcher) scan() (map[string]plan.FileRecord, pathset.FileSet, error) {
	set, err := pathset.Collect(w.cfg.Resolved, w.cfg.ProjectRoot)
	if err != nil {
		return nil, nil, err
	}
	snap, err := plan.Snapshot(set, w.cfg.Resolved.HashContents)
	if err != nil {
		return nil, nil, err
	}
	return snap, set, nil
}

// observe scans once and reports whether anything differs from the last
// settled observation.
func (w *Watcher) observe() (map[string]plan.FileRecord, bool, error) {
	snap, _, err := w.scan()
	if err != nil {
		return nil, false, err
	}
	if w.lastSnapshot == nil {
		return snap, true, nil
	}
	return snap, !reflect.DeepEqual(snap, w.lastSnapshot), nil
}

// settle waits out the debounce window, rescanning until the tree stops
// changing so one build covers the whole burst. The bool is false when ctx
// was canceled during the wait.
func (w *Watcher) settle(ctx context.Context, pending map[string]plan.FileRecord) (map[string]plan.FileRecord, bool) {
	for {
		select {
		case <-ctx.Done():
			return nil, false
		case <-w.clock.After(w.debounce):
		}

		snap, _, err := w.scan()
		if err != nil {
			w.logger.Warn("rescan during debounce failed", "err", err)
			return pending, true
		}
		if reflect.DeepEqual(snap, pending) {
			return snap, true
		}
		w.logger.Debug("changes still arriving, extending debounce")
		pending = snap
	}
}

// build runs one planner and assembler pass. Failures are reported, not
// fatal; the previous good archive stays in place.
func (w *Watcher) build(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	cfg := w.cfg.Resolved

	set, err := pathset.Collect(cfg, w.cfg.ProjectRoot)
	if err != nil {
		w.logger.Error("build failed", "err", err)
		return
	}

	manifestPath := plan.ManifestPath(cfg.OutputPath)
	manifest, err := plan.Load(manifestPath)
	if err != nil {
		w.logger.Warn("cannot read build manifest", "err", err)
	}

	decision, err := plan.Decide(set, cfg, manifest, false)
	if err != nil {
		w.logger.Error("build failed", "err", err)
		return
	}
	if !decision.Rebuild {
		w.logger.Debug("build skipped", "reason", decision.Reason)
		if w.cfg.OnBuild != nil {
			w.cfg.OnBuild(&archive.BuildResult{OutputPath: cfg.OutputPath, Skipped: true})
		}
		return
	}

	w.logger.Info("rebuilding", "reason", decision.Reason)
	res, err := archive.Assemble(set, cfg)
	if err != nil {
		w.logger.Error("build failed", "err", err)
		return
	}

	m := plan.NewManifest(cfg, decision.Snapshot, w.clock.Now().Unix())
	if err := m.Save(manifestPath); err != nil {
		w.logger.Warn("cannot persist build manifest", "err", err)
	}

	w.logger.Info("build complete",
		"output", res.OutputPath, "files", res.FileCount, "bytes", res.SizeBytes)
	if w.cfg.OnBuild != nil {
		w.cfg.OnBuild(res)
	}
}
