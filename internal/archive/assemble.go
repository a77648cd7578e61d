// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"zipbundler/internal/config"
	"zipbundler/internal/pathset"
)

// BuildResult is the outcome of one assembly pass.
type BuildResult struct {
	OutputPath string
	FileCount  int
	SizeBytes  int64
	Duration   time.Duration
	Skipped    bool
}

// entryModTime is the fixed modification time stamped on every zip entry.
// Zip timestamps cannot represent anything before 1980; pinning them is
// what keeps repeated builds byte-identical.
var entryModTime = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// Assemble writes the archive for the given FileSet and config.
//
// Layout: optional shebang prefix, then the zip stream containing PKG-INFO,
// the synthesized __main__.py (when an entry point is configured and the set
// does not already carry one at the root), and every FileEntry in set order.
// The destination is replaced atomically and made executable when a shebang
// is present.
func Assemble(set pathset.FileSet, cfg *config.ResolvedConfig) (*BuildResult, error) {
	start := time.Now()

	if cfg.EntryPoint != nil {
		if err := resolveEntryModule(set, cfg.EntryPoint); err != nil {
			return nil, err
		}
	}
	_, hasRootMain := set.Find("__main__.py")
	needStub := cfg.EntryPoint != nil && (cfg.ForceMainStub || !hasRootMain)

	dir := filepath.Dir(cfg.OutputPath)
	tmp, err := os.CreateTemp(dir, ".zipbundler-*.tmp")
	if err != nil {
		return nil, &BuildError{Op: "create temp file in output directory", Path: dir, Cause: err}
	}
	tmpName := tmp.Name()
	defer func() {
		// No-ops after the successful rename.
		tmp.Close()
		os.Remove(tmpName)
	}()

	if cfg.HasShebang() {
		if _, err := tmp.WriteString("#!" + cfg.Interpreter + "\n"); err != nil {
			return nil, &BuildError{Op: "write shebang", Path: tmpName, Cause: err}
		}
	}

	zw := zip.NewWriter(tmp)
	registerCompressors(zw, cfg.CompressionLevel)
	method := zipMethod(cfg.Compression)

	timestamp := BuildTimestampPlaceholder
	if !cfg.DisableBuildTimestamp {
		timestamp = start.UTC().Format(time.RFC3339)
	}
	if err := writeEntry(zw, "PKG-INFO", []byte(renderPKGINFO(cfg.Metadata, timestamp)), method); err != nil {
		return nil, err
	}

	if needStub {
		stub := renderMainStub(cfg.EntryPoint, cfg.InsertMainGuard)
		if err := writeEntry(zw, "__main__.py", []byte(stub), method); err != nil {
			return nil, err
		}
	}

	fileCount := 0
	for _, e := range set {
		if needStub && e.ArchivePath == "__main__.py" {
			continue // the forced stub replaces it
		}
		data, err := readSource(e.SourcePath)
		if err != nil {
			return nil, err
		}
		if err := writeEntry(zw, e.ArchivePath, data, method); err != nil {
			return nil, err
		}
		fileCount++
	}

	if err := zw.Close(); err != nil {
		return nil, &BuildError{Op: "finalize archive", Path: tmpName, Cause: err}
	}
	if err := tmp.Close(); err != nil {
		return nil, &BuildError{Op: "close temp file", Path: tmpName, Cause: err}
	}

	mode := os.FileMode(0o644)
	if cfg.HasShebang() {
		mode = 0o755
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return nil, &BuildError{Op: "set output permissions", Path: tmpName, Cause: err}
	}

	if err := os.Rename(tmpName, cfg.OutputPath); err != nil {
		return nil, &BuildError{Op: "replace output archive", Path: cfg.OutputPath, Cause: err}
	}

	info, err := os.Stat(cfg.OutputPath)
	if err != nil {
		return nil, &BuildError{Op: "stat output archive", Path: cfg.OutputPath, Cause: err}
	}

	return &BuildResult{
		OutputPath: cfg.OutputPath,
		FileCount:  fileCount,
		SizeBytes:  info.Size(),
		Duration:   time.Since(start),
	}, nil
}

// writeEntry adds one file to the archive with the fixed timestamp and mode.
func writeEntry(zw *zip.Writer, name string, data []byte, method uint16) error {
	hdr := &zip.FileHeader{
		Name:     name,
		Method:   method,
		Modified: entryModTime,
	}
	hdr.SetMode(0o644)

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return &BuildError{Op: "add archive entry", Path: name, Cause: err}
	}
	if _, err := w.Write(data); err != nil {
		return &BuildError{Op: "write archive entry", Path: name, Cause: err}
	}
	return nil
}

// readSource reads a source file, retrying once when it vanished between
// filtering and assembly. A second miss surfaces as a RaceError.
func readSource(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		return data, nil
	}
	if !os.IsNotExist(err) {
		return nil, &BuildError{Op: "read source file", Path: path, Cause: err}
	}

	data, err = os.ReadFile(path)
	if err == nil {
		return data, nil
	}
	if os.IsNotExist(err) {
		return nil, &RaceError{Path: path}
	}
	return nil, &BuildError{Op: "read source file", Path: path, Cause: err}
}

// resolveEntryModule checks the entry point against the FileSet's own module
// namespace. The top-level component must exist as a module file, a package
// __init__, or a package directory; deeper attributes are the interpreter's
// business at run time (the scenario of an entry point naming pkg.__main__
// while only pkg/__init__.py is bundled is legitimate).
func resolveEntryModule(set pathset.FileSet, ep *config.EntryPoint) error {
	top := ep.Module
	if i := strings.IndexByte(top, '.'); i >= 0 {
		top = top[:i]
	}

	if _, ok := set.Find(top + ".py"); ok {
		return nil
	}
	if _, ok := set.Find(top + "/__init__.py"); ok {
		return nil
	}
	for _, e := range set {
		if strings.HasPrefix(e.ArchivePath, top+"/") {
			return nil
		}
	}
	return &BuildError{
		Op:   "resolve entry point",
		Path: ep.String(),
		Cause: fmt.Errorf("module %q does not exist among the bundled files",
			ep.Module),
	}
}
