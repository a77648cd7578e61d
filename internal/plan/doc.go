// SPDX-License-Identifier: MPL-2.0

// Package plan decides whether a rebuild is required.
//
// The decision compares the current FileSet and config against the manifest
// persisted next to the output archive by the previous successful build. The
// manifest is an explicit value: it is loaded by the caller, passed into
// Decide, and written back by the caller only after assembly succeeds. No
// ambient state is kept anywhere.
package plan
