// SPDX-License-Identifier: MPL-2.0

package plan

import (
	"fmt"
	"io"
	"os"

	"github.com/zeebo/xxh3"

	"zipbundler/internal/pathset"
)

// FingerprintFile computes the change-detection record for one source file.
// With hashContents the fingerprint is an xxh3 hash of the file bytes;
// without it, mtime+size stand in for speed on large trees. The two modes
// produce disjoint fingerprint strings, so toggling the mode forces one full
// rebuild instead of silently trusting stale records.
func FingerprintFile(path string, hashContents bool) (FileRecord, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileRecord{}, err
	}

	if !hashContents {
		return FileRecord{
			Fingerprint: fmt.Sprintf("mtime:%d", info.ModTime().UnixNano()),
			Size:        info.Size(),
		}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return FileRecord{}, err
	}
	defer f.Close()

	h := xxh3.New()
	if _, err := io.Copy(h, f); err != nil {
		return FileRecord{}, err
	}
	return FileRecord{
		Fingerprint: fmt.Sprintf("xxh3:%016x", h.Sum64()),
		Size:        info.Size(),
	}, nil
}

// Snapshot fingerprints every entry of the set, keyed by archive path.
func Snapshot(set pathset.FileSet, hashContents bool) (map[string]FileRecord, error) {
	records := make(map[string]FileRecord, len(set))
	for _, e := range set {
		rec, err := FingerprintFile(e.SourcePath, hashContents)
		if err != nil {
			return nil, fmt.Errorf("fingerprinting %s: %w", e.SourcePath, err)
		}
		records[e.ArchivePath] = rec
	}
	return records, nil
}
