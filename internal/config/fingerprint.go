// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zeebo/xxh3"
)

// Fingerprint hashes every field that affects archive bytes, so the
// incremental planner can detect config changes that require a rebuild even
// when no source file changed. The build timestamp itself is not a config
// field; the toggle that replaces it with a placeholder is included because
// flipping it changes the PKG-INFO bytes.
func (c *ResolvedConfig) Fingerprint() string {
	var b strings.Builder

	fmt.Fprintf(&b, "interpreter=%s\n", c.Interpreter)
	if c.EntryPoint != nil {
		fmt.Fprintf(&b, "entry_point=%s\n", c.EntryPoint.String())
	}
	fmt.Fprintf(&b, "insert_main_guard=%t\n", c.InsertMainGuard)
	fmt.Fprintf(&b, "force_main_stub=%t\n", c.ForceMainStub)
	fmt.Fprintf(&b, "compression=%s\n", c.Compression)
	if c.CompressionLevel != nil {
		fmt.Fprintf(&b, "compression_level=%d\n", *c.CompressionLevel)
	}
	fmt.Fprintf(&b, "disable_build_timestamp=%t\n", c.DisableBuildTimestamp)

	fmt.Fprintf(&b, "metadata.name=%s\n", c.Metadata.Name)
	fmt.Fprintf(&b, "metadata.version=%s\n", c.Metadata.Version)
	fmt.Fprintf(&b, "metadata.summary=%s\n", c.Metadata.Summary)
	fmt.Fprintf(&b, "metadata.author=%s\n", c.Metadata.Author)
	fmt.Fprintf(&b, "metadata.license=%s\n", c.Metadata.License)

	keys := make([]string, 0, len(c.Metadata.Extra))
	for k := range c.Metadata.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "metadata.extra.%s=%s\n", k, c.Metadata.Extra[k])
	}

	return fmt.Sprintf("%016x", xxh3.HashString(b.String()))
}
