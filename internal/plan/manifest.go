// SPDX-License-Identifier: MPL-2.0

package plan

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileRecord is the persisted fingerprint of one archived file.
type FileRecord struct {
	Fingerprint string `json:"fingerprint"`
	Size        int64  `json:"size"`
}

// Manifest records the previous successful build. BuildEpoch is omitted
// when the build ran with the timestamp disabled, keeping the manifest
// itself reproducible.
type Manifest struct {
	OutputPath        string                `json:"output_path"`
	ConfigFingerprint string                `json:"config_fingerprint"`
	Files             map[string]FileRecord `json:"files"`
	BuildEpoch        *int64                `json:"build_epoch,omitempty"`
}

// ManifestPath returns where the manifest for an output archive lives.
func ManifestPath(outputPath string) string {
	return outputPath + ".manifest.json"
}

// Load reads a manifest. A missing file returns (nil, nil): the first build
// of a project has no manifest, and a corrupt one is treated the same way
// (the build falls back to a full rebuild rather than failing).
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, nil
	}
	return &m, nil
}

// Save writes the manifest atomically (temp file in the same directory,
// then rename), the same discipline the archive itself uses.
func (m *Manifest) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating manifest temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing manifest temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing manifest: %w", err)
	}
	return nil
}
