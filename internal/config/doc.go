// SPDX-License-Identifier: MPL-2.0

// Package config handles devs configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/devs/config.cue (or the XDG equivalent on Linux,
// ~/Library/Application Support/devs/config.cue on macOS, %APPDATA%\devs\config.cue
// on Windows), validated against the embedded config_schema.cue, and merged over
// built-in defaults. DEVS_* environment variables override file values.
//
// The same directory holds the user profile (set-config.yml) and the invocation history.
package config
