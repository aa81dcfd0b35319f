// SPDX-License-Identifier: MPL-2.0

// Package platform centralizes operating-system specific constants such as
// GOOS names and line terminators.
package platform
