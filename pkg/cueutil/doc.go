// SPDX-License-Identifier: MPL-2.0

// Package cueutil holds the CUE helpers shared by the config loader and the
// template parser: schema-checked decoding, path-aware error formatting and a
// file size guard.
//
//	settings, err := cueutil.ParseAndDecode[map[string]any](schema, data, "#Config",
//	    cueutil.WithFilename(path), cueutil.WithConcrete(false))
package cueutil
