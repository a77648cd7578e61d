// SPDX-License-Identifier: MPL-2.0

// Package pathset turns the resolved include/exclude configuration into a
// deterministic, sorted list of (source path, archive path) pairs.
//
// Include patterns expand with doublestar globbing; literal directory
// includes are walked recursively. The archive path for a match is the
// explicit destination from the source:dest form when one was given,
// otherwise it is derived by stripping everything above the pattern's last
// literal directory component ("src/app/**/*.py" puts matches under
// "app/"). Exclude globs, a fixed baseline exclude set, and optional
// gitignore rules then filter the candidates.
//
// Filesystem iteration order is never trusted: candidates are sorted at
// every stage, and the final set is sorted lexicographically by archive
// path. That ordering is what makes archive bytes and incremental-build
// fingerprints reproducible.
package pathset
