// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE parsing utilities.
//
// zipbundler's dedicated config file is JSONC, and JSON-with-comments is a
// syntactic subset of CUE, so the config layer parses it with the CUE
// toolchain and unifies it against an embedded schema in one pass:
//
//  1. Compile the embedded schema
//  2. Compile user data and unify with schema
//  3. Validate and decode to Go struct
//
// # Usage
//
//	//go:embed config_schema.cue
//	var schemaBytes []byte
//
//	result, err := cueutil.ParseAndDecode[fileConfig](
//	    schemaBytes,
//	    userFileBytes,
//	    "#Config",
//	    cueutil.WithFilename(".zipbundler.jsonc"),
//	)
//	if err != nil {
//	    return nil, err  // Error includes the CUE path for debugging
//	}
//	return result.Value, nil
package cueutil
