// SPDX-License-Identifier: MPL-2.0

// Package invocation holds the per-invocation dispatch state that is threaded
// through command registration and command actions.
package invocation

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"devs-cli/internal/argv"

	"mvdan.cc/sh/v3/shell"
	"mvdan.cc/sh/v3/syntax"
)

// ParamsEnvVar carries forwarded parameters to nested devs processes. Its value
// is a shell-quoted word list.
const ParamsEnvVar = "DEVS_TEMP_PARAMS"

// Context is the state of a single CLI invocation. The raw argument vector is
// never modified; forwarding commands claim a split of it and the registrar
// hands FrameworkArgs to the command-line framework.
type Context struct {
	// TemplatePath is the resolved template file, empty when none applies.
	TemplatePath string
	// Verbose mirrors the --verbose flag once the registrar propagates it.
	Verbose bool

	raw []string

	mu        sync.Mutex
	split     argv.Split
	claimed   bool
	override  []string
	forwarded []string
}

// New creates a Context for raw (the process arguments without the program
// name). seed is the inherited carrier value, typically the ParamsEnvVar
// environment variable; it is used when no command claims forwarded tokens.
func New(raw []string, seed string) (*Context, error) {
	c := &Context{raw: slices.Clone(raw), forwarded: []string{}}
	if strings.TrimSpace(seed) == "" {
		return c, nil
	}

	params, err := shell.Fields(seed, nil)
	if err != nil {
		return c, fmt.Errorf("parse %s: %w", ParamsEnvVar, err)
	}
	c.forwarded = params
	return c, nil
}

// Raw returns a copy of the raw argument vector.
func (c *Context) Raw() []string {
	return slices.Clone(c.raw)
}

// Claim records split in the carrier when it has forwarded tokens. When several
// commands claim, the split nearest the start of the vector wins, so the result
// does not depend on construction order. A split with no forwarded tokens leaves
// the carrier untouched.
func (c *Context) Claim(split argv.Split) {
	if !split.Found() || len(split.Forwarded) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.claimed && c.split.At <= split.At {
		return
	}
	c.split = split
	c.claimed = true
	c.forwarded = slices.Clone(split.Forwarded)
}

// Reslice replaces the framework arguments outright and stores forwarded in
// the carrier. It is used when the routing tokens differ from a plain prefix of
// the raw vector, as with the exec terminator.
func (c *Context) Reslice(framework, forwarded []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.override = slices.Clone(framework)
	c.forwarded = slices.Clone(forwarded)
	if c.forwarded == nil {
		c.forwarded = []string{}
	}
}

// FrameworkArgs returns the tokens the command-line framework should parse.
func (c *Context) FrameworkArgs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.override != nil:
		return slices.Clone(c.override)
	case c.claimed:
		return slices.Clone(c.split.Framework)
	default:
		return slices.Clone(c.raw)
	}
}

// Forwarded returns the forwarded parameters held by the carrier.
func (c *Context) Forwarded() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Clone(c.forwarded)
}

// QuoteParams joins params into a single shell-quoted string.
func QuoteParams(params []string) string {
	quoted := make([]string, 0, len(params))
	for _, p := range params {
		q, err := syntax.Quote(p, syntax.LangBash)
		if err != nil {
			// Only strings with NUL bytes fail to quote; they cannot reach argv.
			q = p
		}
		quoted = append(quoted, q)
	}
	return strings.Join(quoted, " ")
}
