// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"devs-cli/internal/argv"
	"devs-cli/internal/catalog"
	"devs-cli/internal/config"
	"devs-cli/internal/delegate"
	"devs-cli/internal/invocation"
	"devs-cli/internal/issue"
	"devs-cli/internal/profile"
	"devs-cli/internal/template"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

var (
	templateFlag = argv.FlagSpec{Long: "template", Short: "t"}
	configFlag   = argv.FlagSpec{Long: "config"}
	valueFlags   = []argv.FlagSpec{templateFlag, configFlag}
)

// session is the state of one invocation: the argument vector, the loaded
// configuration and template, and the services built from them.
type session struct {
	app        *App
	inv        *invocation.Context
	cfg        *config.Config
	configFile string
	locale     string
	doc        *template.Document
	catalog    catalog.Fetcher
	delegate   delegate.Handler
	logger     *log.Logger
	// catalogDown records that a catalog lookup failed.
	catalogDown atomic.Bool
}

func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute builds the command tree for the process arguments and runs it.
// This is called by main.main().
func Execute() {
	ctx := context.Background()

	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, formatErrorForDisplay(err, false))
		os.Exit(1)
	}

	rootCmd := app.NewRootCommand(ctx, os.Args[1:])
	if err := fang.Execute(
		ctx,
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// NewRootCommand builds the full command tree for raw (the process arguments
// without the program name) and sets the arguments cobra will route on.
func (a *App) NewRootCommand(ctx context.Context, raw []string) *cobra.Command {
	s := a.newSession(ctx, raw)

	root := &cobra.Command{
		Use:   config.AppName,
		Short: "Deploy multi-project templates through component plugins",
		Long: TitleStyle.Render("devs") + SubtitleStyle.Render(" - deploy multi-project templates through component plugins") + `

devs reads a template that declares your projects and the component each
one uses, then registers a command per project and per component method.
Everything after the method name is forwarded to the component untouched.

` + SubtitleStyle.Render("Examples:") + `
  devs deploy               Run 'deploy' on every project in order
  devs api deploy -y        Run 'deploy' on the 'api' project only
  devs exec -- deploy       Run a component method directly
  devs exec api -- logs     Same, for one project
  devs config show          Show current configuration`,
		SilenceUsage: true,
	}
	root.SetContext(ctx)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	root.PersistentFlags().StringP(templateFlag.Long, templateFlag.Short, "", "template file (default is s.yaml, s.yml, s.cue or s.toml in the working directory)")
	root.PersistentFlags().String(configFlag.Long, "", "config file (default is <config dir>/devs/config.cue)")

	root.AddCommand(newConfigCommand(s))
	root.AddCommand(newHistoryCommand(s))
	root.AddCommand(newCompletionCommand())

	s.register(ctx, root)
	root.SetArgs(s.inv.FrameworkArgs())
	return root
}

// newSession resolves everything registration needs before the tree is built.
// Problems are logged and degrade to defaults so system commands stay usable.
func (a *App) newSession(ctx context.Context, raw []string) *session {
	s := &session{app: a, logger: a.Logger, locale: a.userLocale()}

	seed, _ := a.LookupEnv(invocation.ParamsEnvVar)
	inv, err := invocation.New(raw, seed)
	if err != nil {
		s.logger.Warn("ignoring inherited parameters", "err", err)
	}
	s.inv = inv

	s.configFile, _ = argv.FlagValue(raw, configFlag)
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: s.configFile})
	if err != nil {
		fmt.Fprintln(a.stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, false))
		cfg = config.DefaultConfig()
	}
	s.cfg = cfg
	if cfg.UI.Verbose {
		s.inv.Verbose = true
		s.logger.SetLevel(log.DebugLevel)
	}
	applyColorScheme(cfg.UI.ColorScheme)

	s.catalog = a.catalogFor(cfg, func(error) { s.catalogDown.Store(true) })
	s.delegate = a.delegateFor(cfg)

	s.inv.TemplatePath = a.resolveTemplatePath(raw)
	if s.inv.TemplatePath == "" {
		s.logger.Debug("no template found")
		return s
	}
	doc, err := a.Templates.Load(s.inv.TemplatePath)
	if err != nil {
		s.logger.Warn(formatErrorForDisplay(err, s.inv.Verbose))
		renderIssue(a.stderr, s.logger, issueFor(err))
		return s
	}
	s.doc = doc
	return s
}

// resolveTemplatePath returns the --template value, then DEVS_TEMPLATE, then
// the first default template name found in the working directory.
func (a *App) resolveTemplatePath(raw []string) string {
	if v, ok := argv.FlagValue(raw, templateFlag); ok && v != "" {
		return v
	}
	if v, ok := a.LookupEnv(delegate.EnvTemplate); ok && v != "" {
		return v
	}
	wd, err := a.Getwd()
	if err != nil {
		return ""
	}
	if path, ok := template.Discover(wd); ok {
		return path
	}
	return ""
}

// userLocale returns the profile locale used for CLI messages.
func (a *App) userLocale() string {
	loc, err := a.Profile.Locale()
	if err != nil {
		a.Logger.Debug("failed to read profile", "err", err)
	}
	if loc == "" {
		return profile.DefaultLocale
	}
	return loc
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
