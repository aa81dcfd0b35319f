// SPDX-License-Identifier: MPL-2.0

// Package delegate hands project commands to component plugins.
//
// A component plugin is an executable named <prefix><component> found on PATH.
// It is invoked with the command name followed by the forwarded parameters and
// receives the template and project it serves through DEVS_* environment
// variables.
package delegate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"slices"
	"strconv"
	"strings"

	"devs-cli/internal/invocation"
	"devs-cli/internal/issue"
	"devs-cli/internal/template"

	"github.com/charmbracelet/log"
)

// Environment variables set for component plugins.
const (
	EnvTemplate  = "DEVS_TEMPLATE"
	EnvProject   = "DEVS_PROJECT"
	EnvProvider  = "DEVS_PROVIDER"
	EnvComponent = "DEVS_COMPONENT"
	EnvVerbose   = "DEVS_VERBOSE"
	EnvParams    = invocation.ParamsEnvVar
)

var (
	// ErrPluginNotFound is returned when no plugin executable serves a component.
	ErrPluginNotFound = errors.New("component plugin not found")
	// ErrProjectNotFound is returned when the requested project is not declared.
	ErrProjectNotFound = errors.New("project not declared in template")
	// ErrNoComponent is returned for projects that declare no component.
	ErrNoComponent = errors.New("project declares no component")
	// ErrNoProjects is returned when the template declares no projects at all.
	ErrNoProjects = errors.New("template declares no projects")
	// ErrComponentFailed is the sentinel wrapped by ExitCodeError.
	ErrComponentFailed = errors.New("component command failed")
)

type (
	// Request is one delegated command.
	Request struct {
		// TemplatePath is the template the command runs against.
		TemplatePath string
		// Command is the method name handed to the component, e.g. "deploy".
		Command string
		// Project restricts the command to one project. Empty means every
		// declared project, in declaration order.
		Project string
		// Params are the forwarded tokens.
		Params []string
		// Verbose is passed to plugins as DEVS_VERBOSE.
		Verbose bool
	}

	// Handler executes delegated commands.
	Handler interface {
		Handle(ctx context.Context, req Request) error
	}

	// HandlerFunc adapts a function to Handler.
	HandlerFunc func(ctx context.Context, req Request) error

	// TemplateLoader loads the template named by a request.
	TemplateLoader interface {
		Load(path string) (*template.Document, error)
	}

	// ComponentRunner is the default Handler. It runs one plugin process per
	// targeted project and stops at the first failure.
	ComponentRunner struct {
		Templates    TemplateLoader
		PluginPrefix string
		// LookPath resolves plugin executables. Nil means exec.LookPath.
		LookPath func(file string) (string, error)
		// Environ returns the base environment. Nil means os.Environ.
		Environ func() []string
		Stdin   io.Reader
		Stdout  io.Writer
		Stderr  io.Writer
		Logger  *log.Logger
	}

	// ExitCodeError reports a plugin that exited with a non-zero status.
	ExitCodeError struct {
		Project   string
		Component string
		Code      int
	}
)

// Handle calls f(ctx, req).
func (f HandlerFunc) Handle(ctx context.Context, req Request) error {
	return f(ctx, req)
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("%s (%s) exited with code %d", e.Project, e.Component, e.Code)
}

func (e *ExitCodeError) Unwrap() error { return ErrComponentFailed }

// Handle resolves the targeted projects and runs the component plugin of each.
func (r *ComponentRunner) Handle(ctx context.Context, req Request) error {
	doc, err := r.Templates.Load(req.TemplatePath)
	if err != nil {
		return err
	}

	entries, err := targets(doc, req.Project)
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("run " + req.Command).
			WithResource(doc.Path).
			WithSuggestion("Check the project names declared in the template").
			Wrap(err).
			BuildError()
	}

	for _, entry := range entries {
		if err := r.run(ctx, doc.Path, entry, req); err != nil {
			return err
		}
	}
	return nil
}

func targets(doc *template.Document, project string) ([]template.ProjectEntry, error) {
	if project != "" {
		if !doc.HasProject(project) {
			return nil, fmt.Errorf("%w: %q", ErrProjectNotFound, project)
		}
		return []template.ProjectEntry{doc.Entry(project)}, nil
	}

	names := doc.Projects()
	if len(names) == 0 {
		return nil, ErrNoProjects
	}
	entries := make([]template.ProjectEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, doc.Entry(name))
	}
	return entries, nil
}

func (r *ComponentRunner) run(ctx context.Context, templatePath string, entry template.ProjectEntry, req Request) error {
	if entry.Component == "" {
		return issue.NewErrorContext().
			WithOperation("run " + req.Command).
			WithResource(entry.Name).
			WithSuggestion("Add a 'component' field to the project").
			Wrap(fmt.Errorf("%w: %q", ErrNoComponent, entry.Name)).
			BuildError()
	}

	plugin := r.PluginPrefix + entry.Component
	path, err := r.lookPath(plugin)
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("find component plugin").
			WithResource(plugin).
			WithSuggestion("Install " + plugin + " and make sure it is on PATH").
			WithSuggestion("Or change the lookup prefix with 'devs config set delegate.plugin_prefix <prefix>'").
			Wrap(fmt.Errorf("%w: %w", ErrPluginNotFound, err)).
			BuildError()
	}

	args := append([]string{req.Command}, req.Params...)
	r.logger().Debug("running component", "project", entry.Name, "plugin", path, "args", args)

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Env = append(FilterEnv(r.environ()), Env(templatePath, entry, req)...)
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitCodeError{Project: entry.Name, Component: entry.Component, Code: exitErr.ExitCode()}
		}
		return issue.NewErrorContext().
			WithOperation("run component plugin").
			WithResource(path).
			WithSuggestion("Check that the plugin is executable").
			Wrap(err).
			BuildError()
	}
	return nil
}

// Env returns the DEVS_* variables describing entry and req to its plugin.
func Env(templatePath string, entry template.ProjectEntry, req Request) []string {
	return []string{
		EnvTemplate + "=" + templatePath,
		EnvProject + "=" + entry.Name,
		EnvProvider + "=" + entry.Provider,
		EnvComponent + "=" + entry.Component,
		EnvVerbose + "=" + strconv.FormatBool(req.Verbose),
		EnvParams + "=" + invocation.QuoteParams(req.Params),
	}
}

// FilterEnv drops inherited DEVS_* plugin variables so a nested invocation
// never sees stale values from its parent.
func FilterEnv(environ []string) []string {
	reserved := []string{EnvTemplate, EnvProject, EnvProvider, EnvComponent, EnvVerbose, EnvParams}
	out := make([]string, 0, len(environ))
	for _, kv := range environ {
		name, _, _ := strings.Cut(kv, "=")
		if slices.Contains(reserved, name) {
			continue
		}
		out = append(out, kv)
	}
	return out
}

func (r *ComponentRunner) lookPath(file string) (string, error) {
	if r.LookPath != nil {
		return r.LookPath(file)
	}
	return exec.LookPath(file)
}

func (r *ComponentRunner) environ() []string {
	if r.Environ != nil {
		return r.Environ()
	}
	return os.Environ()
}

func (r *ComponentRunner) logger() *log.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return log.Default()
}
