// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"sort"
	"strings"

	"zipbundler/internal/config"
)

// BuildTimestampPlaceholder replaces the real build timestamp in PKG-INFO
// when reproducible output is requested.
const BuildTimestampPlaceholder = "<build-timestamp>"

// renderPKGINFO produces the metadata record embedded at the archive root.
// The layout follows the Python packaging metadata format: well-known
// fields first, extra pairs in sorted key order, Metadata-Version last.
func renderPKGINFO(meta config.Metadata, timestamp string) string {
	var lines []string

	name := meta.Name
	if name == "" {
		name = "Unknown"
	}
	lines = append(lines, "Name: "+name)

	if meta.Version != "" {
		lines = append(lines, "Version: "+meta.Version)
	}
	if meta.Summary != "" {
		// Summary is a single-line field.
		lines = append(lines, "Summary: "+strings.ReplaceAll(meta.Summary, "\n", " "))
	}
	if meta.Author != "" {
		lines = append(lines, "Author: "+meta.Author)
	}
	if meta.License != "" {
		lines = append(lines, "License: "+meta.License)
	}

	keys := make([]string, 0, len(meta.Extra))
	for k := range meta.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		lines = append(lines, k+": "+meta.Extra[k])
	}

	lines = append(lines, "Build-Timestamp: "+timestamp)
	lines = append(lines, "Metadata-Version: 2.1")

	return strings.Join(lines, "\n") + "\n"
}
