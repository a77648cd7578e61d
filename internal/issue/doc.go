// SPDX-License-Identifier: MPL-2.0

// Package issue provides structured, user-facing error construction.
//
// Pipeline stages return plain sentinel-wrapped errors; the CLI layer
// enriches the ones a user can act on (bad config files, missing sources,
// unwritable outputs) with an operation, the resource involved, and concrete
// suggestions before printing them.
package issue
