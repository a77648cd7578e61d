// SPDX-License-Identifier: MPL-2.0

package plan

import (
	"fmt"
	"sort"

	"zipbundler/internal/config"
	"zipbundler/internal/pathset"
)

// Decision is the planner's verdict for one build attempt. Snapshot carries
// the freshly computed fingerprints so a following assembly can persist them
// without hashing everything twice.
type Decision struct {
	Rebuild  bool
	Reason   string
	Snapshot map[string]FileRecord
}

// Decide determines whether the archive must be rebuilt. manifest may be nil
// (first build). force always rebuilds.
func Decide(set pathset.FileSet, cfg *config.ResolvedConfig, manifest *Manifest, force bool) (Decision, error) {
	snapshot, err := Snapshot(set, cfg.HashContents)
	if err != nil {
		return Decision{}, err
	}

	d := Decision{Snapshot: snapshot}

	switch {
	case force:
		d.Rebuild, d.Reason = true, "forced rebuild"
	case manifest == nil:
		d.Rebuild, d.Reason = true, "no previous build manifest"
	case manifest.ConfigFingerprint != cfg.Fingerprint():
		d.Rebuild, d.Reason = true, "configuration changed"
	default:
		d.Rebuild, d.Reason = diffFiles(manifest.Files, snapshot)
	}
	return d, nil
}

// diffFiles compares the manifest's records with the current snapshot and
// names the first difference found, checking set membership before
// fingerprints so the reason reflects the more fundamental change.
func diffFiles(previous, current map[string]FileRecord) (bool, string) {
	for _, ap := range sortedKeys(current) {
		if _, ok := previous[ap]; !ok {
			return true, fmt.Sprintf("file added: %s", ap)
		}
	}
	for _, ap := range sortedKeys(previous) {
		if _, ok := current[ap]; !ok {
			return true, fmt.Sprintf("file removed: %s", ap)
		}
	}
	for _, ap := range sortedKeys(current) {
		prev, rec := previous[ap], current[ap]
		if prev.Fingerprint != rec.Fingerprint || prev.Size != rec.Size {
			return true, fmt.Sprintf("file changed: %s", ap)
		}
	}
	return false, "up to date"
}

func sortedKeys(m map[string]FileRecord) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NewManifest assembles the record persisted after a successful build.
// buildEpoch is ignored (left null) when the config disables the timestamp.
func NewManifest(cfg *config.ResolvedConfig, snapshot map[string]FileRecord, buildEpoch int64) *Manifest {
	m := &Manifest{
		OutputPath:        cfg.OutputPath,
		ConfigFingerprint: cfg.Fingerprint(),
		Files:             snapshot,
	}
	if !cfg.DisableBuildTimestamp {
		m.BuildEpoch = &buildEpoch
	}
	return m
}
