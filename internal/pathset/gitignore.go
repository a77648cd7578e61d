// SPDX-License-Identifier: MPL-2.0

package pathset

import (
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// ignoreMatcher wraps go-git's gitignore matcher. ReadPatterns collects
// .gitignore files from the root down, appending deeper files after
// shallower ones; the matcher evaluates patterns last-to-first, which gives
// the standard precedence (deeper files and later lines override, negation
// included).
type ignoreMatcher struct {
	m gitignore.Matcher
}

// loadGitignore reads every .gitignore under root. Returns nil when no
// patterns exist, so callers can skip matching entirely.
func loadGitignore(root string) (*ignoreMatcher, error) {
	patterns, err := gitignore.ReadPatterns(osfs.New(root), nil)
	if err != nil {
		return nil, err
	}
	if len(patterns) == 0 {
		return nil, nil
	}
	return &ignoreMatcher{m: gitignore.NewMatcher(patterns)}, nil
}

// Match reports whether the root-relative slash path is ignored.
func (im *ignoreMatcher) Match(rel string, isDir bool) bool {
	return im.m.Match(strings.Split(rel, "/"), isDir)
}
