// SPDX-License-Identifier: MPL-2.0

package zipapp

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ExtractToTemp unpacks an archive into a fresh temporary directory and
// returns its path. The shebang line, when present, is not part of the
// extracted tree. The caller owns the directory and should remove it when
// done.
func ExtractToTemp(path string) (string, error) {
	a, err := Open(path)
	if err != nil {
		return "", err
	}
	defer a.Close()

	dir, err := os.MkdirTemp("", "zipbundler-extract-")
	if err != nil {
		return "", err
	}

	for _, f := range a.zr.File {
		if err := extractEntry(dir, f); err != nil {
			os.RemoveAll(dir)
			return "", err
		}
	}
	return dir, nil
}

// extractEntry writes one archive entry under dir, refusing paths that
// would land outside it.
func extractEntry(dir string, f *zip.File) error {
	clean := filepath.Clean(filepath.FromSlash(f.Name))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("archive entry %q escapes the extraction directory", f.Name)
	}
	dest := filepath.Join(dir, clean)

	if strings.HasSuffix(f.Name, "/") {
		return os.MkdirAll(dest, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
