// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"slices"

	"devs-cli/internal/catalog"
	"devs-cli/internal/i18n"
	"devs-cli/internal/template"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// projectAnnotation marks command nodes built from template projects.
const projectAnnotation = "devs.project"

// createCustomerCommand builds one node per template project, in declaration
// order, skipping the names reserved reports. Method descriptions for all
// projects are fetched concurrently; a failed fetch leaves that project
// without method nodes.
func (s *session) createCustomerCommand(ctx context.Context, reserved func(name string) bool) []*cobra.Command {
	projects := slices.DeleteFunc(s.doc.Projects(), func(name string) bool {
		if reserved == nil || !reserved(name) {
			return false
		}
		s.logger.Warn("project name is reserved, skipping", "project", name)
		return true
	})
	entries := make([]template.ProjectEntry, len(projects))
	details := make([][]catalog.CommandDescriptor, len(projects))

	var g errgroup.Group
	for i, name := range projects {
		g.Go(func() error {
			entries[i] = s.doc.Entry(name)
			details[i] = s.catalog.CommandDetail(ctx, entries[i].Component, entries[i].Provider, "")
			return nil
		})
	}
	// Fetch failures are logged by the catalog and never returned.
	_ = g.Wait()

	nodes := make([]*cobra.Command, 0, len(projects))
	for i, entry := range entries {
		nodes = append(nodes, s.newProjectCommand(entry, details[i]))
	}
	return nodes
}

func (s *session) newProjectCommand(entry template.ProjectEntry, methods []catalog.CommandDescriptor) *cobra.Command {
	project := &cobra.Command{
		Use:         entry.Name,
		Short:       i18n.Sprintf(s.locale, i18n.CustomProject, entry.Component, entry.Provider),
		Args:        cobra.ArbitraryArgs,
		Annotations: map[string]string{projectAnnotation: entry.Name},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	if len(methods) == 0 {
		project.Long = project.Short + "\n\n" + i18n.Sprintf(s.locale, i18n.NoMethodsListing)
	}
	for _, m := range methods {
		project.AddCommand(s.newUniversalCommand(m.Name, entry.Name, m.Desc))
	}
	return project
}
