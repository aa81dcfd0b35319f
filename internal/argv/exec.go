// SPDX-License-Identifier: MPL-2.0

package argv

import (
	"slices"
	"strings"
)

// ExecCommand is the token that introduces subcommand execution analysis.
const ExecCommand = "exec"

// ExecShape is a recognized "exec" invocation:
//
//	exec -- <method> [params...]
//	exec <project> -- <method> [params...]
type ExecShape struct {
	// Project is empty for the project-less shape.
	Project string
	// Method is the token after the terminator.
	Method string
	// Params are the tokens after Method.
	Params []string
	// Framework is the re-sliced vector the framework should route on: every
	// token up to and including "exec", then the project (if any) and method.
	// The terminator is dropped so the framework can find the nested command.
	Framework []string
	// At is the index of Method in the raw vector.
	At int
}

type execState int

const (
	execStart execState = iota
	execAfterProject
	execExpectMethod
)

// ParseExec recognizes the two exec shapes relative to the "exec" token, which
// must be the first positional. Any other shape (flags between exec and the
// terminator, more than one token before it, a missing or flag-like method)
// is rejected.
func ParseExec(raw []string, valueFlags ...FlagSpec) (ExecShape, bool) {
	idx := positionalIndices(raw, valueFlags)
	if len(idx) == 0 || raw[idx[0]] != ExecCommand {
		return ExecShape{}, false
	}
	execIdx := idx[0]

	var (
		shape ExecShape
		state = execStart
	)
	for i := execIdx + 1; i < len(raw); i++ {
		tok := raw[i]
		switch state {
		case execStart:
			switch {
			case tok == Terminator:
				state = execExpectMethod
			case strings.HasPrefix(tok, "-"):
				return ExecShape{}, false
			default:
				shape.Project = tok
				state = execAfterProject
			}
		case execAfterProject:
			if tok != Terminator {
				return ExecShape{}, false
			}
			state = execExpectMethod
		case execExpectMethod:
			// A flag-like method would be parsed as a flag by the framework.
			if tok == "" || strings.HasPrefix(tok, "-") {
				return ExecShape{}, false
			}
			shape.Method = tok
			shape.At = i
			shape.Params = slices.Clone(raw[i+1:])
			shape.Framework = slices.Clone(raw[:execIdx+1])
			if shape.Project != "" {
				shape.Framework = append(shape.Framework, shape.Project)
			}
			shape.Framework = append(shape.Framework, shape.Method)
			return shape, true
		}
	}

	return ExecShape{}, false
}
