// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"io/fs"

	"devs-cli/internal/argv"
	"devs-cli/internal/delegate"
	"devs-cli/internal/i18n"
	"devs-cli/internal/issue"
	"devs-cli/internal/template"

	"github.com/spf13/cobra"
)

// newUniversalCommand builds a node that forwards everything after name to
// the component of owner, or of every project when owner is empty. Building
// the node claims its split of the raw arguments.
func (s *session) newUniversalCommand(name, owner, desc string) *cobra.Command {
	s.inv.Claim(argv.SliceAfter(s.inv.Raw(), owner, name))

	if desc == "" && owner != "" && s.doc != nil {
		desc = i18n.Sprintf(s.locale, i18n.MethodFallback, name, s.doc.Entry(owner).Component)
	}

	return &cobra.Command{
		Use:   name,
		Short: desc,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if s.inv.TemplatePath == "" {
				return nil
			}
			err := s.delegate.Handle(cmd.Context(), delegate.Request{
				TemplatePath: s.inv.TemplatePath,
				Command:      name,
				Project:      owner,
				Params:       s.inv.Forwarded(),
				Verbose:      s.inv.Verbose,
			})
			return s.delegateError(cmd, err)
		},
	}
}

// delegateError prints the failure with its issue help and maps it onto an
// exit code. The cause chain is shown in verbose mode.
func (s *session) delegateError(cmd *cobra.Command, err error) error {
	if err == nil {
		return nil
	}
	cmd.SilenceErrors = true
	styled := ErrorStyle.Render("Error: ") + formatErrorForDisplay(err, s.inv.Verbose) + "\n"

	var codeErr *delegate.ExitCodeError
	if errors.As(err, &codeErr) {
		s.logger.Debug("component failed", "project", codeErr.Project, "component", codeErr.Component, "code", codeErr.Code)
		renderServiceError(s.app.stderr, s.logger, newServiceError(err, issue.ComponentFailedId, styled))
		return &ExitError{Code: codeErr.Code, Err: err}
	}

	svcErr := newServiceError(err, issueFor(err), styled)
	renderServiceError(s.app.stderr, s.logger, svcErr)
	return &ExitError{Code: 1, Err: svcErr}
}

// issueFor picks the help text for a template or delegation failure.
func issueFor(err error) issue.Id {
	switch {
	case errors.Is(err, delegate.ErrPluginNotFound):
		return issue.ComponentNotFoundId
	case errors.Is(err, delegate.ErrProjectNotFound), errors.Is(err, delegate.ErrNoComponent):
		return issue.ProjectNotFoundId
	case errors.Is(err, template.ErrInvalidTemplate):
		return issue.TemplateParseErrorId
	case errors.Is(err, fs.ErrNotExist):
		return issue.TemplateNotFoundId
	case errors.Is(err, fs.ErrPermission):
		return issue.PermissionDeniedId
	}
	return 0
}
