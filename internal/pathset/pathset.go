// SPDX-License-Identifier: MPL-2.0

package pathset

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"zipbundler/internal/config"
)

// FileEntry is one unit of inclusion: an absolute source path and the
// slash-separated relative path it occupies inside the archive.
type FileEntry struct {
	SourcePath  string
	ArchivePath string

	// IsDirectoryMember is true when the entry was found by walking a
	// literal directory include rather than matched by a glob.
	IsDirectoryMember bool
}

// FileSet is an ordered sequence of FileEntry, sorted lexicographically by
// ArchivePath. The sort order is the only determinism source for archive
// layout and fingerprint computation.
type FileSet []FileEntry

// ArchivePaths returns the archive paths in set order.
func (s FileSet) ArchivePaths() []string {
	paths := make([]string, len(s))
	for i, e := range s {
		paths[i] = e.ArchivePath
	}
	return paths
}

// Find locates the entry for an archive path via binary search.
func (s FileSet) Find(archivePath string) (FileEntry, bool) {
	i := sort.Search(len(s), func(i int) bool { return s[i].ArchivePath >= archivePath })
	if i < len(s) && s[i].ArchivePath == archivePath {
		return s[i], true
	}
	return FileEntry{}, false
}

// baselineDirs are always excluded, regardless of gitignore settings.
var baselineDirs = map[string]bool{
	".git":        true,
	".hg":         true,
	".svn":        true,
	"__pycache__": true,
}

// candidate pairs an entry with whether its archive path came from an
// explicit source:dest destination, which is what licenses an intentional
// overlay on collision.
type candidate struct {
	entry        FileEntry
	explicitDest bool
}

// Collect expands the config's include patterns against projectRoot,
// filters them, and returns the deduplicated, sorted FileSet.
func Collect(cfg *config.ResolvedConfig, projectRoot string) (FileSet, error) {
	root := filepath.Clean(projectRoot)

	var ign *ignoreMatcher
	if cfg.RespectGitignore {
		var err error
		ign, err = loadGitignore(root)
		if err != nil {
			return nil, err
		}
	}

	byArchive := make(map[string]candidate)

	for _, pat := range cfg.Includes {
		cands, err := expandInclude(root, pat)
		if err != nil {
			return nil, err
		}
		for _, c := range cands {
			rel := sourceRel(root, c.entry.SourcePath)

			// The output archive can sit inside an include; never bundle it.
			if c.entry.SourcePath == cfg.OutputPath {
				continue
			}
			if baselineExcluded(rel) {
				continue
			}
			if matchesExcludes(cfg.Excludes, rel) {
				continue
			}
			if ign != nil && ign.Match(rel, false) {
				continue
			}
			if err := validateArchivePath(c.entry.ArchivePath, c.entry.SourcePath); err != nil {
				return nil, err
			}

			ap := c.entry.ArchivePath
			if prev, seen := byArchive[ap]; seen {
				if prev.entry.SourcePath == c.entry.SourcePath {
					continue // same file matched by two patterns
				}
				if prev.explicitDest && c.explicitDest {
					continue // intentional overlay, first occurrence wins
				}
				return nil, &CollisionError{
					ArchivePath:  ap,
					FirstSource:  prev.entry.SourcePath,
					SecondSource: c.entry.SourcePath,
				}
			}
			byArchive[ap] = c
		}
	}

	set := make(FileSet, 0, len(byArchive))
	for _, c := range byArchive {
		set = append(set, c.entry)
	}
	sort.Slice(set, func(i, j int) bool { return set[i].ArchivePath < set[j].ArchivePath })
	return set, nil
}

// expandInclude resolves one include pattern into candidates, sorted by
// source path. A literal path that does not exist yields no candidates, the
// same as a glob matching nothing; the validate command reports empty sets.
func expandInclude(root string, pat config.IncludePattern) ([]candidate, error) {
	source := path.Clean(filepath.ToSlash(pat.Source))

	if !strings.ContainsAny(source, "*?[{") {
		return expandLiteral(root, source, pat.Dest)
	}
	return expandGlob(root, source, pat.Dest)
}

// expandLiteral handles plain file and directory includes. A directory keeps
// its last path component in the archive ("extra/lib" lands under "lib/")
// unless an explicit destination replaces it.
func expandLiteral(root, source, dest string) ([]candidate, error) {
	abs := filepath.Join(root, filepath.FromSlash(source))
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	if !info.IsDir() {
		ap := dest
		if ap == "" {
			ap = path.Base(source)
		}
		return []candidate{{
			entry:        FileEntry{SourcePath: abs, ArchivePath: ap},
			explicitDest: dest != "",
		}}, nil
	}

	prefix := dest
	if prefix == "" {
		prefix = path.Base(source)
	}

	var cands []candidate
	err = filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if baselineDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		inner, err := filepath.Rel(abs, p)
		if err != nil {
			return err
		}
		cands = append(cands, candidate{
			entry: FileEntry{
				SourcePath:        p,
				ArchivePath:       path.Join(prefix, filepath.ToSlash(inner)),
				IsDirectoryMember: true,
			},
			explicitDest: dest != "",
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortCandidates(cands)
	return cands, nil
}

// expandGlob handles doublestar patterns. Matches are taken relative to the
// pattern's non-glob base; without an explicit destination the base's last
// literal directory component is kept, so "src/app/**/*.py" puts matches
// under "app/".
func expandGlob(root, pattern, dest string) ([]candidate, error) {
	base, _ := doublestar.SplitPattern(pattern)

	var matches []string
	err := doublestar.GlobWalk(os.DirFS(root), pattern,
		func(p string, d fs.DirEntry) error {
			matches = append(matches, p)
			return nil
		},
		doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	cands := make([]candidate, 0, len(matches))
	for _, m := range matches {
		relFromBase := m
		if base != "." {
			relFromBase = strings.TrimPrefix(m, base+"/")
		}

		var ap string
		switch {
		case dest != "":
			ap = path.Join(dest, relFromBase)
		case base == ".":
			ap = m
		default:
			ap = path.Join(path.Base(base), relFromBase)
		}

		cands = append(cands, candidate{
			entry: FileEntry{
				SourcePath:  filepath.Join(root, filepath.FromSlash(m)),
				ArchivePath: ap,
			},
			explicitDest: dest != "",
		})
	}
	return cands, nil
}

func sortCandidates(cands []candidate) {
	sort.Slice(cands, func(i, j int) bool {
		return cands[i].entry.SourcePath < cands[j].entry.SourcePath
	})
}

// sourceRel returns the root-relative slash path used for exclude and
// gitignore matching.
func sourceRel(root, abs string) string {
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(rel)
}

// baselineExcluded drops version-control metadata and bytecode caches.
func baselineExcluded(rel string) bool {
	for _, seg := range strings.Split(rel, "/") {
		if baselineDirs[seg] {
			return true
		}
	}
	return strings.HasSuffix(rel, ".pyc") || strings.HasSuffix(rel, ".pyo")
}

// matchesExcludes applies the configured exclude globs against the
// source-relative path. Patterns without a slash also match the base name,
// so "*.tmp" excludes nested temp files the way users expect.
func matchesExcludes(excludes []string, rel string) bool {
	for _, pat := range excludes {
		if ok, err := doublestar.Match(pat, rel); err == nil && ok {
			return true
		}
		if !strings.Contains(pat, "/") {
			if ok, err := doublestar.Match(pat, path.Base(rel)); err == nil && ok {
				return true
			}
		}
	}
	return false
}

// validateArchivePath rejects paths that would escape the archive root.
func validateArchivePath(ap, source string) error {
	cleaned := path.Clean(ap)
	if cleaned == "." || cleaned == "" || path.IsAbs(cleaned) ||
		cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return &InvalidPathError{ArchivePath: ap, Source: source}
	}
	return nil
}
