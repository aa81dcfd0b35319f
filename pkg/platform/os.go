// SPDX-License-Identifier: MPL-2.0

package platform

import "runtime"

// OS name constants for runtime.GOOS comparisons.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)

// LineEnding returns the line terminator conventional on goos.
func LineEnding(goos string) string {
	if goos == Windows {
		return "\r\n"
	}
	return "\n"
}

// EOL is the line terminator of the running platform.
var EOL = LineEnding(runtime.GOOS)
