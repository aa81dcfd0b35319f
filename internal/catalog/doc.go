// SPDX-License-Identifier: MPL-2.0

// Package catalog fetches human-readable descriptions of component-provided
// subcommands from the remote command catalog.
//
// Lookups degrade instead of failing: a transport error, an unexpected status
// or a malformed body is logged and an empty descriptor list is returned, so a
// slow or offline catalog never blocks command registration.
package catalog
