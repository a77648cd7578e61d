// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"zipbundler/internal/archive"
	"zipbundler/internal/config"
	"zipbundler/internal/testutil"
)

func watchProject(t *testing.T) (string, *config.ResolvedConfig) {
	t.Helper()

	root := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(root, "src", "app", "__init__.py"), "x = 1\n")
	testutil.MustMkdirAll(t, filepath.Join(root, "dist"), 0o755)

	cfg := &config.ResolvedConfig{
		Includes:              []config.IncludePattern{{Source: "src"}},
		OutputPath:            filepath.Join(root, "dist", "bundle.pyz"),
		Interpreter:           config.DefaultInterpreter,
		InsertMainGuard:       true,
		Compression:           config.CompressionStored,
		DisableBuildTimestamp: true,
		HashContents:          true,
		WatchInterval:         time.Second,
		Debounce:              500 * time.Millisecond,
	}
	return root, cfg
}

func startWatcher(t *testing.T, cfg Config) (*testutil.FakeClock, chan *archive.BuildResult, context.CancelFunc, chan error) {
	t.Helper()

	clock := testutil.NewFakeClock(time.Time{})
	builds := make(chan *archive.BuildResult, 8)
	cfg.Clock = clock
	cfg.OnBuild = func(r *archive.BuildResult) { builds <- r }

	w, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	return clock, builds, cancel, done
}

func recvBuild(t *testing.T, builds <-chan *archive.BuildResult) *archive.BuildResult {
	t.Helper()
	select {
	case r := <-builds:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a build")
		return nil
	}
}

func waitStopped(t *testing.T, cancel context.CancelFunc, done <-chan error) {
	t.Helper()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v, want nil on cancellation", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop after cancellation")
	}
}

func TestNewValidation(t *testing.T) {
	root, cfg := watchProject(t)

	if _, err := New(Config{ProjectRoot: root}); err == nil {
		t.Error("New accepted a nil resolved config")
	}
	if _, err := New(Config{Resolved: cfg}); err == nil {
		t.Error("New accepted an empty project root")
	}

	zero := *cfg
	zero.WatchInterval = 0
	if _, err := New(Config{Resolved: &zero, ProjectRoot: root}); err == nil {
		t.Error("New accepted a non-positive poll interval")
	}
}

func TestNewDefaultsFromResolvedConfig(t *testing.T) {
	root, cfg := watchProject(t)

	w, err := New(Config{Resolved: cfg, ProjectRoot: root})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if w.interval != cfg.WatchInterval {
		t.Errorf("interval = %v, want %v", w.interval, cfg.WatchInterval)
	}
	if w.debounce != cfg.Debounce {
		t.Errorf("debounce = %v, want %v", w.debounce, cfg.Debounce)
	}
	if w.clock == nil || w.logger == nil {
		t.Error("clock and logger must default when unset")
	}
}

func TestBuildOnStart(t *testing.T) {
	root, cfg := watchProject(t)
	_, builds, cancel, done := startWatcher(t, Config{
		Resolved: cfg, ProjectRoot: root, BuildOnStart: true,
	})

	res := recvBuild(t, builds)
	if res.Skipped {
		t.Error("first build must not be skipped")
	}
	if res.FileCount != 1 {
		t.Errorf("FileCount = %d, want 1", res.FileCount)
	}
	if _, err := os.Stat(cfg.OutputPath); err != nil {
		t.Errorf("archive missing after initial build: %v", err)
	}

	waitStopped(t, cancel, done)
}

func TestRebuildOnChange(t *testing.T) {
	root, cfg := watchProject(t)
	clock, builds, cancel, done := startWatcher(t, Config{
		Resolved: cfg, ProjectRoot: root,
	})

	// The loop's first poll wait registers only after the baseline scan.
	clock.BlockUntil(1)
	testutil.MustWriteFile(t, filepath.Join(root, "src", "app", "__init__.py"), "x = 2\n")

	clock.Advance(cfg.WatchInterval)
	clock.BlockUntil(1) // debounce wait is pending
	clock.Advance(cfg.Debounce)

	res := recvBuild(t, builds)
	if res.Skipped {
		t.Error("changed tree must produce a real build")
	}
	if _, err := os.Stat(cfg.OutputPath); err != nil {
		t.Errorf("archive missing after rebuild: %v", err)
	}

	waitStopped(t, cancel, done)
}

func TestNoBuildWhenUnchanged(t *testing.T) {
	root, cfg := watchProject(t)
	clock, builds, cancel, done := startWatcher(t, Config{
		Resolved: cfg, ProjectRoot: root,
	})

	clock.BlockUntil(1)
	clock.Advance(cfg.WatchInterval)
	clock.BlockUntil(1) // back at the poll wait, no debounce opened
	clock.Advance(cfg.WatchInterval)
	clock.BlockUntil(1)

	select {
	case res := <-builds:
		t.Errorf("unexpected build for an unchanged tree: %+v", res)
	default:
	}

	waitStopped(t, cancel, done)
}

func TestDebounceCoalescesBurst(t *testing.T) {
	root, cfg := watchProject(t)
	clock, builds, cancel, done := startWatcher(t, Config{
		Resolved: cfg, ProjectRoot: root,
	})
	src := filepath.Join(root, "src", "app", "__init__.py")

	clock.BlockUntil(1)
	testutil.MustWriteFile(t, src, "x = 2\n")
	clock.Advance(cfg.WatchInterval)

	// A second change lands inside the debounce window; the window extends
	// and one build covers both edits.
	clock.BlockUntil(1)
	testutil.MustWriteFile(t, src, "x = 3\n")
	clock.Advance(cfg.Debounce)
	clock.BlockUntil(1)
	clock.Advance(cfg.Debounce)

	res := recvBuild(t, builds)
	if res.Skipped {
		t.Error("burst must end in a real build")
	}

	select {
	case extra := <-builds:
		t.Errorf("burst produced a second build: %+v", extra)
	default:
	}

	waitStopped(t, cancel, done)
}

func TestBuildFailureKeepsWatching(t *testing.T) {
	root, cfg := watchProject(t)
	cfg.EntryPoint = &config.EntryPoint{Module: "missing", Function: "main"}

	clock, builds, cancel, done := startWatcher(t, Config{
		Resolved: cfg, ProjectRoot: root, BuildOnStart: true,
	})

	// The initial build fails on the unresolvable entry point; the loop must
	// survive it and keep polling.
	clock.BlockUntil(1)
	clock.Advance(cfg.WatchInterval)
	clock.BlockUntil(1)

	select {
	case res := <-builds:
		t.Errorf("failed build must not report a result: %+v", res)
	default:
	}
	if _, err := os.Stat(cfg.OutputPath); !os.IsNotExist(err) {
		t.Errorf("failed build must not create an archive, stat err = %v", err)
	}

	waitStopped(t, cancel, done)
}

func TestBuildSkipsWhenPlannerSaysUpToDate(t *testing.T) {
	root, cfg := watchProject(t)

	var results []*archive.BuildResult
	w, err := New(Config{
		Resolved:    cfg,
		ProjectRoot: root,
		Clock:       testutil.NewFakeClock(time.Time{}),
		OnBuild:     func(r *archive.BuildResult) { results = append(results, r) },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := context.Background()
	w.build(ctx)
	w.build(ctx)

	if len(results) != 2 {
		t.Fatalf("got %d build results, want 2", len(results))
	}
	if results[0].Skipped {
		t.Error("first pass must build")
	}
	if !results[1].Skipped {
		t.Error("second pass must be skipped, nothing changed")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	root, cfg := watchProject(t)
	_, _, cancel, done := startWatcher(t, Config{Resolved: cfg, ProjectRoot: root})
	waitStopped(t, cancel, done)
}
