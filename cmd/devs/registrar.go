// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"slices"

	"devs-cli/internal/argv"
	"devs-cli/internal/i18n"
	"devs-cli/internal/issue"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// register attaches everything that depends on the invocation to root. The
// order matters: project nodes must exist before universal registration looks
// for name collisions.
func (s *session) register(ctx context.Context, root *cobra.Command) {
	s.recordCommandHistory()
	s.registerCommandChecker(root)
	s.registerExecCommand(root)
	s.registerCustomerCommand(ctx, root)
	s.registerUniversalCommand(root)
	s.registerVerbose(root)
}

// recordCommandHistory appends the raw vector to the history file.
func (s *session) recordCommandHistory() {
	if !s.cfg.History.Enabled {
		return
	}
	if err := s.app.History.Record(s.inv.Raw()); err != nil {
		s.logger.Warn("failed to record history", "err", err)
	}
}

// registerCommandChecker lets root accept any arguments and reports the ones
// that do not name a command.
func (s *session) registerCommandChecker(root *cobra.Command) {
	root.Args = cobra.ArbitraryArgs
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		checkCommand(cmd, args, s.logger, s.locale)
		return nil
	}
}

// checkCommand logs an error, prints help once and explains the failure on
// root's error stream when args[0] is not one of root's commands. It reports
// whether the token was unknown.
func checkCommand(root *cobra.Command, args []string, logger *log.Logger, locale string) bool {
	if len(args) == 0 || slices.Contains(commandNames(root), args[0]) {
		return false
	}
	logger.Error(i18n.Sprintf(locale, i18n.UnknownCommand, args[0]))
	if err := root.Help(); err != nil {
		logger.Debug("failed to print help", "err", err)
	}
	renderIssue(root.ErrOrStderr(), logger, issue.UnknownCommandId)
	return true
}

// commandNames lists the names and aliases of parent's direct children.
func commandNames(parent *cobra.Command) []string {
	var names []string
	for _, c := range parent.Commands() {
		names = append(names, c.Name())
		names = append(names, c.Aliases...)
	}
	return names
}

func hasCommand(parent *cobra.Command, name string) bool {
	return name == "help" || slices.Contains(commandNames(parent), name)
}

// registerExecCommand adds the exec node. For the shapes
//
//	exec -- <method> [params...]
//	exec <project> -- <method> [params...]
//
// it nests a universal node for the method and re-slices the framework
// arguments so cobra routes to it without seeing the terminator.
func (s *session) registerExecCommand(root *cobra.Command) {
	execCmd := &cobra.Command{
		Use:   argv.ExecCommand + " " + i18n.Sprintf(s.locale, i18n.ExecUsage),
		Short: i18n.Sprintf(s.locale, i18n.ExecAnalysis),
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.AddCommand(execCmd)

	if s.inv.TemplatePath == "" {
		return
	}
	shape, ok := argv.ParseExec(s.inv.Raw(), valueFlags...)
	if !ok {
		return
	}

	parent := execCmd
	if shape.Project != "" {
		parent = &cobra.Command{
			Use:  shape.Project,
			Args: cobra.ArbitraryArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return cmd.Help()
			},
		}
		execCmd.AddCommand(parent)
	}
	parent.AddCommand(s.newUniversalCommand(shape.Method, shape.Project, ""))
	s.inv.Reslice(shape.Framework, shape.Params)
}

// registerCustomerCommand adds one node per template project, skipping names
// taken by system commands.
func (s *session) registerCustomerCommand(ctx context.Context, root *cobra.Command) {
	if s.doc == nil {
		return
	}
	reserved := func(name string) bool { return hasCommand(root, name) }
	for _, node := range s.createCustomerCommand(ctx, reserved) {
		root.AddCommand(node)
	}
}

// registerUniversalCommand covers methods the catalog did not advertise. The
// first positional becomes a root node when it is not a project; a second
// positional after a project becomes a node of that project.
func (s *session) registerUniversalCommand(root *cobra.Command) {
	if s.doc == nil {
		return
	}
	pos := argv.Positionals(s.inv.Raw(), valueFlags...)
	if len(pos) == 0 {
		return
	}

	first := pos[0]
	if !s.doc.HasProject(first) {
		if isHelpToken(first) || hasCommand(root, first) {
			return
		}
		root.AddCommand(s.newUniversalCommand(first, "", ""))
		return
	}

	if len(pos) < 2 || s.doc.HasProject(pos[1]) {
		return
	}
	project := findCommand(root, first)
	if project == nil || project.Annotations[projectAnnotation] != first {
		return
	}
	method := pos[1]
	if !hasCommand(root, method) {
		root.AddCommand(s.newUniversalCommand(method, "", ""))
	}
	if !hasCommand(project, method) {
		project.AddCommand(s.newUniversalCommand(method, first, ""))
	}
}

// registerVerbose copies --verbose into the invocation once flags are parsed.
// Verbose runs also explain a failed catalog lookup.
func (s *session) registerVerbose(root *cobra.Command) {
	raw := s.inv.Raw()
	root.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		if slices.Contains(raw, "--verbose") || cmd.Flags().Changed("verbose") {
			if verbose, err := cmd.Flags().GetBool("verbose"); err == nil {
				s.inv.Verbose = verbose
			}
		}
		if !s.inv.Verbose {
			return
		}
		s.logger.SetLevel(log.DebugLevel)
		if s.catalogDown.Load() {
			renderIssue(s.app.stderr, s.logger, issue.CatalogUnavailableId)
		}
	}
}

func isHelpToken(tok string) bool {
	switch tok {
	case "help", "-h", "--help":
		return true
	}
	return false
}

func findCommand(parent *cobra.Command, name string) *cobra.Command {
	for _, c := range parent.Commands() {
		if c.Name() == name || slices.Contains(c.Aliases, name) {
			return c
		}
	}
	return nil
}
