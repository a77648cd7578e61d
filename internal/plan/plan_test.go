// SPDX-License-Identifier: MPL-2.0

package plan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"zipbundler/internal/config"
	"zipbundler/internal/pathset"
	"zipbundler/internal/testutil"
)

func fixtureSet(t *testing.T, root string, files map[string]string) pathset.FileSet {
	t.Helper()
	var set pathset.FileSet
	for ap, content := range files {
		src := filepath.Join(root, filepath.FromSlash(ap))
		testutil.MustWriteFile(t, src, content)
		set = append(set, pathset.FileEntry{SourcePath: src, ArchivePath: ap})
	}
	return set
}

func planConfig() *config.ResolvedConfig {
	return &config.ResolvedConfig{
		Compression:  config.CompressionStored,
		HashContents: true,
		Metadata:     config.Metadata{Name: "demo", Version: "1.0.0"},
	}
}

func TestDecideNoManifest(t *testing.T) {
	root := t.TempDir()
	set := fixtureSet(t, root, map[string]string{"app/core.py": "x = 1\n"})

	d, err := Decide(set, planConfig(), nil, false)
	if err != nil {
		t.Fatalf("Decide returned error: %v", err)
	}
	if !d.Rebuild {
		t.Error("missing manifest must force a rebuild")
	}
	if len(d.Snapshot) != 1 {
		t.Errorf("Snapshot has %d records, want 1", len(d.Snapshot))
	}
}

func TestDecideUpToDate(t *testing.T) {
	root := t.TempDir()
	cfg := planConfig()
	set := fixtureSet(t, root, map[string]string{
		"app/core.py": "x = 1\n",
		"app/util.py": "y = 2\n",
	})

	snapshot, err := Snapshot(set, true)
	if err != nil {
		t.Fatalf("Snapshot returned error: %v", err)
	}
	manifest := NewManifest(cfg, snapshot, time.Now().Unix())

	d, err := Decide(set, cfg, manifest, false)
	if err != nil {
		t.Fatalf("Decide returned error: %v", err)
	}
	if d.Rebuild {
		t.Errorf("unchanged input should skip; reason = %q", d.Reason)
	}
	if d.Reason != "up to date" {
		t.Errorf("Reason = %q, want up to date", d.Reason)
	}
}

func TestDecideForce(t *testing.T) {
	root := t.TempDir()
	cfg := planConfig()
	set := fixtureSet(t, root, map[string]string{"app/core.py": "x = 1\n"})

	snapshot, _ := Snapshot(set, true)
	manifest := NewManifest(cfg, snapshot, time.Now().Unix())

	d, err := Decide(set, cfg, manifest, true)
	if err != nil {
		t.Fatalf("Decide returned error: %v", err)
	}
	if !d.Rebuild {
		t.Error("--force must always rebuild")
	}
}

func TestDecideContentChange(t *testing.T) {
	root := t.TempDir()
	cfg := planConfig()
	set := fixtureSet(t, root, map[string]string{"app/core.py": "x = 1\n"})

	snapshot, _ := Snapshot(set, true)
	manifest := NewManifest(cfg, snapshot, time.Now().Unix())

	testutil.MustWriteFile(t, set[0].SourcePath, "x = 2\n")

	d, err := Decide(set, cfg, manifest, false)
	if err != nil {
		t.Fatalf("Decide returned error: %v", err)
	}
	if !d.Rebuild {
		t.Error("content change must trigger a rebuild")
	}
	if !strings.Contains(d.Reason, "app/core.py") {
		t.Errorf("Reason = %q, should name the changed file", d.Reason)
	}
}

func TestDecidePathSetChange(t *testing.T) {
	root := t.TempDir()
	cfg := planConfig()
	set := fixtureSet(t, root, map[string]string{"app/core.py": "x = 1\n"})

	snapshot, _ := Snapshot(set, true)
	manifest := NewManifest(cfg, snapshot, time.Now().Unix())

	grown := append(set, fixtureSet(t, root, map[string]string{"app/new.py": ""})...)
	d, err := Decide(grown, cfg, manifest, false)
	if err != nil {
		t.Fatalf("Decide returned error: %v", err)
	}
	if !d.Rebuild || !strings.Contains(d.Reason, "added") {
		t.Errorf("added file should rebuild with an added reason, got %+v", d)
	}

	d, err = Decide(pathset.FileSet{}, cfg, manifest, false)
	if err != nil {
		t.Fatalf("Decide returned error: %v", err)
	}
	if !d.Rebuild || !strings.Contains(d.Reason, "removed") {
		t.Errorf("removed file should rebuild with a removed reason, got %+v", d)
	}
}

func TestDecideConfigChange(t *testing.T) {
	root := t.TempDir()
	cfg := planConfig()
	set := fixtureSet(t, root, map[string]string{"app/core.py": "x = 1\n"})

	snapshot, _ := Snapshot(set, true)
	manifest := NewManifest(cfg, snapshot, time.Now().Unix())

	changed := planConfig()
	changed.Compression = config.CompressionDeflate

	d, err := Decide(set, changed, manifest, false)
	if err != nil {
		t.Fatalf("Decide returned error: %v", err)
	}
	if !d.Rebuild || d.Reason != "configuration changed" {
		t.Errorf("config change should rebuild, got %+v", d)
	}
}

func TestDecideFastModeUsesMtime(t *testing.T) {
	root := t.TempDir()
	cfg := planConfig()
	cfg.HashContents = false
	set := fixtureSet(t, root, map[string]string{"app/core.py": "x = 1\n"})

	snapshot, err := Snapshot(set, false)
	if err != nil {
		t.Fatalf("Snapshot returned error: %v", err)
	}
	for ap, rec := range snapshot {
		if !strings.HasPrefix(rec.Fingerprint, "mtime:") {
			t.Errorf("%s fingerprint = %q, want mtime mode", ap, rec.Fingerprint)
		}
	}
	manifest := NewManifest(cfg, snapshot, time.Now().Unix())

	// Same content, bumped mtime: fast mode must still rebuild.
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(set[0].SourcePath, future, future); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	d, err := Decide(set, cfg, manifest, false)
	if err != nil {
		t.Fatalf("Decide returned error: %v", err)
	}
	if !d.Rebuild {
		t.Error("mtime bump should rebuild in fast mode")
	}
}

func TestDecideMissingSourceErrors(t *testing.T) {
	root := t.TempDir()
	set := fixtureSet(t, root, map[string]string{"app/core.py": "x = 1\n"})
	if err := os.Remove(set[0].SourcePath); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	if _, err := Decide(set, planConfig(), nil, false); err == nil {
		t.Error("vanished source should surface as an error")
	}
}

func TestManifestRoundTrip(t *testing.T) {
	root := t.TempDir()
	cfg := planConfig()
	cfg.OutputPath = filepath.Join(root, "dist", "bundle.pyz")
	testutil.MustMkdirAll(t, filepath.Dir(cfg.OutputPath), 0o755)

	snapshot := map[string]FileRecord{
		"app/core.py": {Fingerprint: "xxh3:00000000deadbeef", Size: 6},
	}
	m := NewManifest(cfg, snapshot, 1700000000)

	mp := ManifestPath(cfg.OutputPath)
	if err := m.Save(mp); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded, err := Load(mp)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded == nil {
		t.Fatal("Load returned nil for existing manifest")
	}
	if loaded.ConfigFingerprint != m.ConfigFingerprint {
		t.Errorf("ConfigFingerprint = %q, want %q", loaded.ConfigFingerprint, m.ConfigFingerprint)
	}
	if loaded.BuildEpoch == nil || *loaded.BuildEpoch != 1700000000 {
		t.Errorf("BuildEpoch = %v, want 1700000000", loaded.BuildEpoch)
	}
	if rec := loaded.Files["app/core.py"]; rec.Size != 6 {
		t.Errorf("Files[app/core.py] = %+v", rec)
	}
}

func TestManifestOmitsEpochWhenTimestampDisabled(t *testing.T) {
	cfg := planConfig()
	cfg.DisableBuildTimestamp = true
	m := NewManifest(cfg, nil, 1700000000)
	if m.BuildEpoch != nil {
		t.Error("BuildEpoch should be nil with the timestamp disabled")
	}
}

func TestLoadMissingAndCorrupt(t *testing.T) {
	root := t.TempDir()

	m, err := Load(filepath.Join(root, "absent.manifest.json"))
	if err != nil || m != nil {
		t.Errorf("missing manifest: got (%v, %v), want (nil, nil)", m, err)
	}

	corrupt := filepath.Join(root, "corrupt.manifest.json")
	testutil.MustWriteFile(t, corrupt, "{not json")
	m, err = Load(corrupt)
	if err != nil || m != nil {
		t.Errorf("corrupt manifest: got (%v, %v), want (nil, nil)", m, err)
	}
}
