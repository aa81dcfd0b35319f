// SPDX-License-Identifier: MPL-2.0

// Package argv splits raw invocation tokens into the part consumed by the
// command-line framework and the part forwarded to a delegated handler.
//
// All functions are pure: the input slice is never modified and results never
// alias it.
package argv
