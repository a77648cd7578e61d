// SPDX-License-Identifier: MPL-2.0

// Package config resolves zipbundler's build configuration.
//
// Configuration cascades across four layers, highest precedence first:
//
//  1. CLI flag overrides
//  2. Environment variables (DISABLE_BUILD_TIMESTAMP, RESPECT_GITIGNORE,
//     COMPRESS, WATCH_INTERVAL)
//  3. Config files: the dedicated .zipbundler.jsonc file, falling back to the
//     [tool.zipbundler] table in pyproject.toml
//  4. Built-in defaults
//
// The JSONC file is parsed with the CUE toolchain (JSON-with-comments is
// valid CUE) and validated against an embedded schema; the pyproject table is
// decoded with go-toml. Layers are merged through viper and folded into an
// immutable ResolvedConfig. Resolution is pure apart from validation: no
// files are written, and the only filesystem side effect is creating the
// output directory to prove it is creatable.
package config
