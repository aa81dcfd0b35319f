// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"slices"
	"strings"
	"testing"

	"devs-cli/internal/config"
	"devs-cli/internal/delegate"
	"devs-cli/internal/invocation"
	"devs-cli/internal/issue"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func TestRootCommand_Forwarding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  []string
		want delegate.Request
	}{
		{
			name: "catalog method under project",
			raw:  []string{"api", "deploy", "--env", "prod"},
			want: delegate.Request{Command: "deploy", Project: "api", Params: []string{"--env", "prod"}},
		},
		{
			name: "method for every project",
			raw:  []string{"deploy", "-y"},
			want: delegate.Request{Command: "deploy", Params: []string{"-y"}},
		},
		{
			name: "method unknown to the catalog",
			raw:  []string{"db", "logs", "--tail", "50"},
			want: delegate.Request{Command: "logs", Project: "db", Params: []string{"--tail", "50"}},
		},
		{
			name: "exec without project",
			raw:  []string{"exec", "--", "deploy", "-y"},
			want: delegate.Request{Command: "deploy", Params: []string{"-y"}},
		},
		{
			name: "exec with project",
			raw:  []string{"exec", "api", "--", "logs", "x", "--", "y"},
			want: delegate.Request{Command: "logs", Project: "api", Params: []string{"x", "--", "y"}},
		},
		{
			name: "method name repeated in params",
			raw:  []string{"api", "deploy", "remove", "deploy"},
			want: delegate.Request{Command: "deploy", Project: "api", Params: []string{"remove", "deploy"}},
		},
		{
			name: "framework flag before project",
			raw:  []string{"--verbose", "api", "remove"},
			want: delegate.Request{Command: "remove", Project: "api", Params: []string{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, withTemplate(t, testTemplate))
			if err := h.run(t, tt.raw...); err != nil {
				t.Fatalf("Execute() error = %v\nstderr: %s", err, h.stderr)
			}

			calls := h.delegate.calls()
			if len(calls) != 1 {
				t.Fatalf("delegate called %d times, want 1", len(calls))
			}
			got := calls[0]
			if got.TemplatePath == "" {
				t.Error("TemplatePath should be set")
			}
			if got.Command != tt.want.Command || got.Project != tt.want.Project || !slices.Equal(got.Params, tt.want.Params) {
				t.Errorf("request = {%s %s %q}, want {%s %s %q}",
					got.Command, got.Project, got.Params, tt.want.Command, tt.want.Project, tt.want.Params)
			}
		})
	}
}

func TestRootCommand_TemplateFlag(t *testing.T) {
	t.Parallel()

	path := writeTestTemplate(t, testTemplate)
	h := newHarness(t)
	if err := h.run(t, "-t", path, "api", "deploy", "-y"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	calls := h.delegate.calls()
	if len(calls) != 1 || calls[0].TemplatePath != path {
		t.Fatalf("calls = %+v, want one call against %s", calls, path)
	}
	if !slices.Equal(calls[0].Params, []string{"-y"}) {
		t.Errorf("Params = %q, want [-y]", calls[0].Params)
	}
}

func TestRootCommand_InheritedParams(t *testing.T) {
	t.Parallel()

	h := newHarness(t,
		withTemplate(t, testTemplate),
		withEnv(invocation.ParamsEnvVar, `'a b' c`))
	if err := h.run(t, "api", "deploy"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	calls := h.delegate.calls()
	if len(calls) != 1 {
		t.Fatalf("delegate called %d times, want 1", len(calls))
	}
	if want := []string{"a b", "c"}; !slices.Equal(calls[0].Params, want) {
		t.Errorf("Params = %q, want %q", calls[0].Params, want)
	}
}

func TestRootCommand_WithoutTemplate(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	if err := h.run(t, "frobnicate"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if calls := h.delegate.calls(); len(calls) != 0 {
		t.Errorf("delegate called without a template: %+v", calls)
	}
	if !strings.Contains(h.stderr.String(), "unknown command frobnicate") {
		t.Errorf("stderr should report the unknown command, got %q", h.stderr)
	}
	if !strings.Contains(h.stdout.String(), "Usage:") {
		t.Error("help should be printed for an unknown command")
	}
}

func TestRootCommand_ExecAlwaysRegistered(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	root := h.app.NewRootCommand(context.Background(), []string{"exec"})

	execCmd := findCommand(root, "exec")
	if execCmd == nil {
		t.Fatal("exec command not registered")
	}
	if execCmd.Short != "Subcommand execution analysis" {
		t.Errorf("exec Short = %q", execCmd.Short)
	}
	if !strings.Contains(execCmd.Use, "[subcommand] -- [method] [params]") {
		t.Errorf("exec Use = %q", execCmd.Use)
	}
	if len(execCmd.Commands()) != 0 {
		t.Error("exec should nest nothing without a template")
	}
}

func TestRootCommand_ExecRejectedShapeNestsNothing(t *testing.T) {
	t.Parallel()

	for _, raw := range [][]string{
		{"exec", "api", "db", "--", "deploy"},
		{"exec", "--", "-y", "x"},
		{"exec", "api", "--", "--force"},
	} {
		h := newHarness(t, withTemplate(t, testTemplate))
		root := h.app.NewRootCommand(context.Background(), raw)

		if n := len(findCommand(root, "exec").Commands()); n != 0 {
			t.Errorf("%q: exec has %d children, want 0", raw, n)
		}
	}
}

func TestRootCommand_ComponentExitCode(t *testing.T) {
	t.Parallel()

	h := newHarness(t, withTemplate(t, testTemplate))
	h.delegate.err = &delegate.ExitCodeError{Project: "api", Component: "fc", Code: 3}

	err := h.run(t, "api", "deploy")
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error = %v, want *ExitError", err)
	}
	if exitErr.Code != 3 {
		t.Errorf("Code = %d, want 3", exitErr.Code)
	}
	for _, want := range []string{"api (fc) exited with code 3", "Component command failed"} {
		if !strings.Contains(h.stderr.String(), want) {
			t.Errorf("stderr should contain %q, got %q", want, h.stderr)
		}
	}
}

func TestRootCommand_VerboseReachesDelegate(t *testing.T) {
	t.Parallel()

	verboseConfig := config.DefaultConfig()
	verboseConfig.UI.Verbose = true

	tests := []struct {
		name string
		opts []harnessOption
		raw  []string
		want bool
	}{
		{name: "long flag", raw: []string{"--verbose", "api", "deploy"}, want: true},
		{name: "short flag", raw: []string{"-v", "deploy"}, want: true},
		{name: "config", opts: []harnessOption{withConfig(verboseConfig)}, raw: []string{"api", "deploy"}, want: true},
		{name: "absent", raw: []string{"api", "deploy"}, want: false},
		{name: "forwarded flag is not ours", raw: []string{"api", "deploy", "--verbose"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, append(tt.opts, withTemplate(t, testTemplate))...)
			if err := h.run(t, tt.raw...); err != nil {
				t.Fatalf("Execute() error = %v\nstderr: %s", err, h.stderr)
			}
			calls := h.delegate.calls()
			if len(calls) != 1 {
				t.Fatalf("delegate called %d times, want 1", len(calls))
			}
			if calls[0].Verbose != tt.want {
				t.Errorf("Request.Verbose = %v, want %v", calls[0].Verbose, tt.want)
			}
		})
	}
}

func TestRootCommand_DelegateErrorChain(t *testing.T) {
	t.Parallel()

	pluginErr := issue.NewErrorContext().
		WithOperation("find component plugin").
		WithResource("devs-component-fc").
		WithSuggestion("Install devs-component-fc and make sure it is on PATH").
		Wrap(fmt.Errorf("%w: %w", delegate.ErrPluginNotFound, exec.ErrNotFound)).
		BuildError()

	tests := []struct {
		name      string
		raw       []string
		wantChain bool
	}{
		{name: "quiet", raw: []string{"api", "deploy"}},
		{name: "verbose", raw: []string{"--verbose", "api", "deploy"}, wantChain: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, withTemplate(t, testTemplate))
			h.delegate.err = pluginErr
			if err := h.run(t, tt.raw...); !errors.Is(err, delegate.ErrPluginNotFound) {
				t.Fatalf("Execute() error = %v, want ErrPluginNotFound", err)
			}

			stderr := h.stderr.String()
			if !strings.Contains(stderr, "• Install devs-component-fc") {
				t.Errorf("stderr should carry the suggestions, got %q", stderr)
			}
			if got := strings.Contains(stderr, "Error chain:"); got != tt.wantChain {
				t.Errorf("error chain shown = %v, want %v\n%s", got, tt.wantChain, stderr)
			}
		})
	}
}

func TestRootCommand_BrokenTemplate(t *testing.T) {
	t.Parallel()

	h := newHarness(t, withTemplate(t, "- api\n- db\n"))
	if err := h.run(t, "config", "path"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	stderr := h.stderr.String()
	for _, want := range []string{"failed to parse template", "Failed to parse the template"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr should contain %q, got %q", want, stderr)
		}
	}
}

func TestRootCommand_CatalogUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	cfg := config.DefaultConfig()
	cfg.Catalog.URL = srv.URL

	tests := []struct {
		name      string
		raw       []string
		wantIssue bool
	}{
		{name: "quiet", raw: []string{"api", "deploy"}},
		{name: "verbose", raw: []string{"--verbose", "api", "deploy"}, wantIssue: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, withConfig(cfg), withFetcher(nil), withTemplate(t, testTemplate))
			if err := h.run(t, tt.raw...); err != nil {
				t.Fatalf("Execute() error = %v\nstderr: %s", err, h.stderr)
			}

			stderr := h.stderr.String()
			if !strings.Contains(stderr, "command description lookup failed") {
				t.Errorf("stderr should log the failed lookup, got %q", stderr)
			}
			if got := strings.Contains(stderr, "Command catalog unavailable"); got != tt.wantIssue {
				t.Errorf("catalog issue shown = %v, want %v\n%s", got, tt.wantIssue, stderr)
			}
			if calls := h.delegate.calls(); len(calls) != 1 || calls[0].Command != "deploy" {
				t.Errorf("calls = %+v, want deploy forwarded without catalog methods", calls)
			}
		})
	}
}

func TestRootCommand_PluginNotFound(t *testing.T) {
	t.Parallel()

	h := newHarness(t, withTemplate(t, testTemplate))
	h.delegate.err = errors.Join(delegate.ErrPluginNotFound, errors.New("devs-component-fc"))

	err := h.run(t, "api", "deploy")
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("error = %v, want *ServiceError", err)
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 1 {
		t.Errorf("error = %v, want exit code 1", err)
	}
	if !strings.Contains(h.stderr.String(), "Component plugin not found") {
		t.Errorf("stderr should carry the issue help, got %q", h.stderr)
	}
}

func TestRootCommand_ReservedProjectName(t *testing.T) {
	t.Parallel()

	content := `services:
  config:
    component: fc
  api:
    component: fc
`
	h := newHarness(t, withTemplate(t, content))
	root := h.app.NewRootCommand(context.Background(), []string{"config", "path"})

	if c := findCommand(root, "config"); c == nil || c.Short != "Manage devs configuration" {
		t.Fatal("the system config command should not be replaced")
	}
	if findCommand(root, "api") == nil {
		t.Error("api project should still be registered")
	}
	if !strings.Contains(h.stderr.String(), "project name is reserved") {
		t.Errorf("stderr should warn about the reserved name, got %q", h.stderr)
	}
}

func TestRecordCommandHistory(t *testing.T) {
	t.Parallel()

	t.Run("enabled", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t)
		h.app.NewRootCommand(context.Background(), []string{"api", "deploy", "-y"})
		if len(h.history.records) != 1 || !slices.Equal(h.history.records[0], []string{"api", "deploy", "-y"}) {
			t.Errorf("records = %q", h.history.records)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.History.Enabled = false
		h := newHarness(t, withConfig(cfg))
		h.app.NewRootCommand(context.Background(), []string{"api", "deploy"})
		if len(h.history.records) != 0 {
			t.Errorf("records = %q, want none", h.history.records)
		}
	})
}

func TestRegisterVerbose(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  []string
		want log.Level
	}{
		{name: "long flag", raw: []string{"--verbose", "config", "path"}, want: log.DebugLevel},
		{name: "short flag", raw: []string{"-v", "config", "path"}, want: log.DebugLevel},
		{name: "absent", raw: []string{"config", "path"}, want: log.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t)
			if err := h.run(t, tt.raw...); err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if got := h.app.Logger.GetLevel(); got != tt.want {
				t.Errorf("logger level = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckCommand(t *testing.T) {
	t.Parallel()

	newRoot := func() (*cobra.Command, *int) {
		helpCalls := 0
		root := &cobra.Command{Use: "devs"}
		root.AddCommand(&cobra.Command{Use: "deploy"}, &cobra.Command{Use: "remove"})
		root.SetHelpFunc(func(*cobra.Command, []string) { helpCalls++ })
		root.SetErr(&bytes.Buffer{})
		return root, &helpCalls
	}

	t.Run("unknown token", func(t *testing.T) {
		t.Parallel()

		var logs bytes.Buffer
		root, helpCalls := newRoot()
		if !checkCommand(root, []string{"frobnicate"}, log.New(&logs), "en") {
			t.Error("checkCommand() = false, want true")
		}
		if !strings.Contains(logs.String(), "unknown command frobnicate") {
			t.Errorf("log = %q", logs.String())
		}
		if *helpCalls != 1 {
			t.Errorf("help called %d times, want 1", *helpCalls)
		}
		if errOut := root.ErrOrStderr().(*bytes.Buffer).String(); !strings.Contains(errOut, "Unknown command") {
			t.Errorf("stderr = %q, want the unknown command help", errOut)
		}
	})

	t.Run("known token", func(t *testing.T) {
		t.Parallel()

		var logs bytes.Buffer
		root, helpCalls := newRoot()
		if checkCommand(root, []string{"deploy"}, log.New(&logs), "en") {
			t.Error("checkCommand() = true, want false")
		}
		if logs.Len() != 0 {
			t.Errorf("unexpected log output %q", logs.String())
		}
		if *helpCalls != 0 {
			t.Errorf("help called %d times, want 0", *helpCalls)
		}
		if errOut := root.ErrOrStderr().(*bytes.Buffer).Len(); errOut != 0 {
			t.Errorf("unexpected stderr output of %d bytes", errOut)
		}
	})
}
