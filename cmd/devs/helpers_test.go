// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"devs-cli/internal/catalog"
	"devs-cli/internal/config"
	"devs-cli/internal/delegate"
	"devs-cli/internal/history"

	"github.com/charmbracelet/log"
)

const testTemplate = `edition: 1.0.0
services:
  api:
    component: fc
    provider: alibaba
  db:
    Component: rds
    Provider: aws
`

type (
	staticConfig struct {
		cfg *config.Config
		err error
	}

	// fakeFetcher maps a component name to its advertised methods.
	fakeFetcher map[string][]catalog.CommandDescriptor

	memHistory struct {
		mu      sync.Mutex
		records [][]string
	}

	memProfile struct {
		mu     sync.Mutex
		values map[string]string
	}

	recordingDelegate struct {
		mu       sync.Mutex
		requests []delegate.Request
		err      error
	}

	harness struct {
		app      *App
		delegate *recordingDelegate
		history  *memHistory
		profile  *memProfile
		stdout   *bytes.Buffer
		stderr   *bytes.Buffer
	}

	harnessOption func(*Dependencies, map[string]string)
)

func (s staticConfig) Load(context.Context, config.LoadOptions) (*config.Config, error) {
	if s.err != nil {
		return nil, s.err
	}
	cfg := *s.cfg
	return &cfg, nil
}

func (f fakeFetcher) CommandDetail(_ context.Context, name, _, _ string) []catalog.CommandDescriptor {
	if d, ok := f[name]; ok {
		return slices.Clone(d)
	}
	return []catalog.CommandDescriptor{}
}

func (h *memHistory) Record(argv []string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, slices.Clone(argv))
	return nil
}

func (h *memHistory) Entries(limit int) ([]history.Entry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	entries := make([]history.Entry, 0, len(h.records))
	for _, r := range h.records {
		entries = append(entries, history.Entry{Args: r})
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}

func (p *memProfile) Locale() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.values["locale"], nil
}

func (p *memProfile) Set(key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[key] = value
	return nil
}

func (d *recordingDelegate) Handle(_ context.Context, req delegate.Request) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.requests = append(d.requests, req)
	return d.err
}

func (d *recordingDelegate) calls() []delegate.Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.requests)
}

func withConfig(cfg *config.Config) harnessOption {
	return func(deps *Dependencies, _ map[string]string) {
		deps.Config = staticConfig{cfg: cfg}
	}
}

func withEnv(key, value string) harnessOption {
	return func(_ *Dependencies, env map[string]string) {
		env[key] = value
	}
}

func withFetcher(f catalog.Fetcher) harnessOption {
	return func(deps *Dependencies, _ map[string]string) {
		deps.Catalog = f
	}
}

// writeTestTemplate writes content as s.yaml in a temp dir and returns its path.
func writeTestTemplate(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "s.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	return path
}

// withTemplate points DEVS_TEMPLATE at a fresh copy of content.
func withTemplate(t *testing.T, content string) harnessOption {
	t.Helper()
	return withEnv(delegate.EnvTemplate, writeTestTemplate(t, content))
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()

	h := &harness{
		delegate: &recordingDelegate{},
		history:  &memHistory{},
		profile:  &memProfile{values: map[string]string{}},
		stdout:   &bytes.Buffer{},
		stderr:   &bytes.Buffer{},
	}
	env := map[string]string{}
	wd := t.TempDir()
	deps := Dependencies{
		Config: staticConfig{cfg: config.DefaultConfig()},
		Catalog: fakeFetcher{
			"fc":  {{Name: "deploy", Desc: "Deploy the function"}, {Name: "remove", Desc: "Remove the function"}},
			"rds": {{Name: "deploy", Desc: "Deploy the database"}},
		},
		Delegate:  h.delegate,
		History:   h.history,
		Profile:   h.profile,
		Logger:    log.NewWithOptions(h.stderr, log.Options{Prefix: "devs"}),
		LookupEnv: func(key string) (string, bool) { v, ok := env[key]; return v, ok },
		Getwd:     func() (string, error) { return wd, nil },
		Stdout:    h.stdout,
		Stderr:    h.stderr,
	}
	for _, opt := range opts {
		opt(&deps, env)
	}

	app, err := NewApp(deps)
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	h.app = app
	return h
}

// run builds the tree for raw and executes it.
func (h *harness) run(t *testing.T, raw ...string) error {
	t.Helper()
	root := h.app.NewRootCommand(context.Background(), raw)
	return root.Execute()
}
