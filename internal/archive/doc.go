// SPDX-License-Identifier: MPL-2.0

// Package archive assembles the output zipapp.
//
// The output file is a polyglot: an optional "#!<interpreter>\n" prefix
// followed by a byte-for-byte valid zip. Zip readers anchor the central
// directory from the end of the file, so the prefix never breaks them.
//
// Assembly is deterministic for a fixed FileSet and config: entries are
// written in set order with a fixed modification time and mode, and when the
// build timestamp is disabled the PKG-INFO record carries a placeholder, so
// repeated builds from identical inputs produce byte-identical archives.
// The destination is replaced atomically (temp file in the same directory,
// then rename); a crash mid-write never corrupts a previous good archive.
package archive
