// SPDX-License-Identifier: MPL-2.0

// Package template loads the user's project template (s.yaml, s.cue or
// s.toml) and exposes the declared projects together with the provider and
// component that serve each of them.
//
// Two declaration layouts are understood. The current one lists projects under
// a top-level services block:
//
//	services:
//	  api:
//	    component: fc
//	    provider: alibaba
//
// The legacy one declares each project at the top level:
//
//	Api:
//	  Component: fc
//	  Provider: alibaba
//
// Project order always follows the file.
package template
