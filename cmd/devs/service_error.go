// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"os"

	"devs-cli/internal/issue"

	"github.com/charmbracelet/log"
)

// ServiceError is an error that carries optional rendering information for
// the CLI layer. Always create via newServiceError.
type ServiceError struct {
	// Err is the underlying error (must not be nil).
	Err error
	// IssueID selects the help text rendered below the error. Zero means none.
	IssueID issue.Id
	// StyledMessage is printed before the issue help, if set.
	StyledMessage string
}

func newServiceError(err error, issueID issue.Id, styledMessage string) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{
		Err:           err,
		IssueID:       issueID,
		StyledMessage: styledMessage,
	}
}

func (e *ServiceError) Error() string { return e.Err.Error() }

func (e *ServiceError) Unwrap() error { return e.Err }

// renderServiceError prints the styled message and the issue help section.
func renderServiceError(stderr io.Writer, logger *log.Logger, svcErr *ServiceError) {
	if svcErr == nil {
		return
	}

	if svcErr.StyledMessage != "" {
		fmt.Fprint(stderr, svcErr.StyledMessage)
	}
	renderIssue(stderr, logger, svcErr.IssueID)
}

// renderIssue prints the help text of id. Zero and unknown ids print nothing.
func renderIssue(stderr io.Writer, logger *log.Logger, id issue.Id) {
	if id == 0 {
		return
	}

	entry := issue.Get(id)
	if entry == nil {
		return
	}
	f, _ := stderr.(*os.File)
	rendered, err := entry.Render(issue.StyleFor(f))
	if err != nil {
		logger.Warn("failed to render issue", "issue", id, "err", err)
		return
	}
	fmt.Fprint(stderr, rendered)
}
