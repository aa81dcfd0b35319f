// SPDX-License-Identifier: MPL-2.0

package template

import (
	"fmt"
	"slices"
)

// Keys looked up in project declarations. Both capitalizations are accepted
// and no other fallback applies.
var (
	servicesKeys  = []string{"services", "Services"}
	providerKeys  = []string{"Provider", "provider"}
	componentKeys = []string{"Component", "component"}
)

type (
	// Document is a parsed, variable-resolved template.
	Document struct {
		// Path is the file the document was loaded from.
		Path string

		projects []string
		services map[string]any
	}

	// ProjectEntry identifies the component that serves a declared project.
	ProjectEntry struct {
		Name      string
		Provider  string
		Component string
	}
)

// newDocument indexes root. topOrder is the declaration order of the top-level
// keys and servicesOrder the order of the services block, if any.
func newDocument(path string, root map[string]any, topOrder, servicesOrder []string) *Document {
	d := &Document{Path: path, projects: []string{}}

	for _, key := range servicesKeys {
		if services, ok := root[key].(map[string]any); ok {
			d.services = services
			d.projects = orderedKeys(services, servicesOrder)
			return d
		}
	}

	d.services = root
	for _, key := range orderedKeys(root, topOrder) {
		project, ok := root[key].(map[string]any)
		if !ok {
			continue
		}
		if lookupString(project, componentKeys) != "" {
			d.projects = append(d.projects, key)
		}
	}
	return d
}

// Projects returns the declared project names in declaration order.
func (d *Document) Projects() []string {
	return slices.Clone(d.projects)
}

// HasProject reports whether name is a declared project.
func (d *Document) HasProject(name string) bool {
	return slices.Contains(d.projects, name)
}

// Service returns the raw configuration block of a project, or nil.
func (d *Document) Service(name string) map[string]any {
	if !d.HasProject(name) {
		return nil
	}
	service, _ := d.services[name].(map[string]any)
	return service
}

// Entry resolves the provider and component of a project. Missing fields are
// returned empty; no validation is performed.
func (d *Document) Entry(name string) ProjectEntry {
	service := d.Service(name)
	return ProjectEntry{
		Name:      name,
		Provider:  lookupString(service, providerKeys),
		Component: lookupString(service, componentKeys),
	}
}

// lookupString returns the first present key rendered as a string. Falsy
// values (absent, nil, empty string, false) yield "".
func lookupString(m map[string]any, keys []string) string {
	for _, key := range keys {
		v, ok := m[key]
		if !ok || v == nil {
			continue
		}
		switch tv := v.(type) {
		case string:
			if tv != "" {
				return tv
			}
		case bool:
			if tv {
				return "true"
			}
		default:
			return fmt.Sprint(tv)
		}
	}
	return ""
}

// orderedKeys returns the keys of m in the given order, followed by any keys
// the order does not mention, sorted.
func orderedKeys(m map[string]any, order []string) []string {
	keys := make([]string, 0, len(m))
	seen := make(map[string]bool, len(m))
	for _, k := range order {
		if _, ok := m[k]; ok && !seen[k] {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	var rest []string
	for k := range m {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)
	return append(keys, rest...)
}
