// SPDX-License-Identifier: MPL-2.0

package cmd

import "fmt"

// ExitError carries a component's exit status up to Execute, which exits the
// process with it once the command tree has unwound.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}
