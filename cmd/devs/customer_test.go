// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"devs-cli/internal/catalog"
)

func TestCreateCustomerCommand_KeepsProjectOrder(t *testing.T) {
	t.Parallel()

	content := `services:
  web:
    component: website
    provider: alibaba
  api:
    Component: fc
    Provider: alibaba
  db:
    component: rds
`
	h := newHarness(t, withTemplate(t, content))
	s := h.app.newSession(context.Background(), nil)

	nodes := s.createCustomerCommand(context.Background(), nil)
	var names []string
	for _, n := range nodes {
		names = append(names, n.Name())
	}
	if want := []string{"web", "api", "db"}; !slices.Equal(names, want) {
		t.Fatalf("project nodes = %q, want %q", names, want)
	}

	if got := nodes[1].Short; got != "[Custom] The fc@alibaba project." {
		t.Errorf("api Short = %q", got)
	}
	// Missing provider passes through as an empty string.
	if got := nodes[2].Short; got != "[Custom] The rds@ project." {
		t.Errorf("db Short = %q", got)
	}
}

func TestCreateCustomerCommand_MethodNodes(t *testing.T) {
	t.Parallel()

	h := newHarness(t, withTemplate(t, testTemplate))
	s := h.app.newSession(context.Background(), nil)
	nodes := s.createCustomerCommand(context.Background(), nil)

	api := nodes[0]
	deploy := findCommand(api, "deploy")
	if deploy == nil || findCommand(api, "remove") == nil {
		t.Fatalf("api children = %v, want deploy and remove", api.Commands())
	}
	if deploy.Short != "Deploy the function" {
		t.Errorf("deploy Short = %q", deploy.Short)
	}
}

func TestCreateCustomerCommand_FailedFetchDegrades(t *testing.T) {
	t.Parallel()

	h := newHarness(t,
		withTemplate(t, testTemplate),
		withFetcher(fakeFetcher{"rds": {{Name: "deploy", Desc: "Deploy the database"}}}))
	s := h.app.newSession(context.Background(), nil)
	nodes := s.createCustomerCommand(context.Background(), nil)

	if len(nodes) != 2 {
		t.Fatalf("got %d project nodes, want 2", len(nodes))
	}
	if n := len(nodes[0].Commands()); n != 0 {
		t.Errorf("api has %d method nodes, want 0", n)
	}
	if !strings.Contains(nodes[0].Long, "any method name is forwarded") {
		t.Errorf("api Long = %q, want the no-methods note", nodes[0].Long)
	}
	if findCommand(nodes[1], "deploy") == nil {
		t.Error("db should still get its deploy node")
	}
}

func TestCreateCustomerCommand_LocalizedDescription(t *testing.T) {
	t.Parallel()

	h := newHarness(t, withTemplate(t, testTemplate), withFetcher(fakeFetcher{}))
	h.profile.values["locale"] = "zh"
	s := h.app.newSession(context.Background(), nil)

	nodes := s.createCustomerCommand(context.Background(), nil)
	if got := nodes[0].Short; got != "[自定义] fc@alibaba 项目。" {
		t.Errorf("api Short = %q", got)
	}
}

func TestCreateCustomerCommand_ChildPerDescriptor(t *testing.T) {
	t.Parallel()

	h := newHarness(t,
		withTemplate(t, testTemplate),
		withFetcher(fakeFetcher{"fc": {{Name: "deploy", Desc: "Deploy it"}}, "rds": {}}))
	s := h.app.newSession(context.Background(), nil)
	nodes := s.createCustomerCommand(context.Background(), nil)

	if len(nodes) != 2 {
		t.Fatalf("got %d project nodes, want 2", len(nodes))
	}
	if children := nodes[0].Commands(); len(children) != 1 || children[0].Name() != "deploy" {
		t.Errorf("api children = %v, want [deploy]", children)
	}
	if n := len(nodes[1].Commands()); n != 0 {
		t.Errorf("db has %d children, want 0", n)
	}
}

// barrierFetcher holds every lookup until n lookups are in flight at once, or
// gives up after a timeout and reports no methods.
type barrierFetcher struct {
	n       int
	mu      sync.Mutex
	arrived int
	all     chan struct{}
}

func (b *barrierFetcher) CommandDetail(_ context.Context, name, _, _ string) []catalog.CommandDescriptor {
	b.mu.Lock()
	b.arrived++
	if b.arrived == b.n {
		close(b.all)
	}
	b.mu.Unlock()

	select {
	case <-b.all:
		return []catalog.CommandDescriptor{{Name: "deploy", Desc: "Deploy " + name}}
	case <-time.After(5 * time.Second):
		return []catalog.CommandDescriptor{}
	}
}

func TestCreateCustomerCommand_FetchesConcurrently(t *testing.T) {
	t.Parallel()

	content := `services:
  web:
    component: website
  api:
    component: fc
  db:
    component: rds
`
	fetcher := &barrierFetcher{n: 3, all: make(chan struct{})}
	h := newHarness(t, withTemplate(t, content), withFetcher(fetcher))
	s := h.app.newSession(context.Background(), nil)

	nodes := s.createCustomerCommand(context.Background(), nil)
	if len(nodes) != 3 {
		t.Fatalf("got %d project nodes, want 3", len(nodes))
	}
	for _, n := range nodes {
		if findCommand(n, "deploy") == nil {
			t.Errorf("%s has no deploy node: lookups did not overlap", n.Name())
		}
	}
}

func TestCreateCustomerCommand_ReservedSkippedBeforeClaim(t *testing.T) {
	t.Parallel()

	content := `services:
  config:
    component: fc
  api:
    component: fc
`
	h := newHarness(t, withTemplate(t, content))
	raw := []string{"config", "deploy", "x"}
	s := h.app.newSession(context.Background(), raw)

	nodes := s.createCustomerCommand(context.Background(), func(name string) bool { return name == "config" })
	if len(nodes) != 1 || nodes[0].Name() != "api" {
		t.Fatalf("project nodes = %v, want [api]", nodes)
	}
	if got := s.inv.FrameworkArgs(); !slices.Equal(got, raw) {
		t.Errorf("FrameworkArgs() = %q, want %q untouched", got, raw)
	}
	if got := s.inv.Forwarded(); len(got) != 0 {
		t.Errorf("Forwarded() = %q, want none", got)
	}
	if !strings.Contains(h.stderr.String(), "project name is reserved") {
		t.Errorf("stderr = %q, want the reserved-name warning", h.stderr)
	}
}

var (
	_ catalog.Fetcher = fakeFetcher{}
	_ catalog.Fetcher = (*barrierFetcher)(nil)
)
