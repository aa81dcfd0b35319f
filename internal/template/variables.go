// SPDX-License-Identifier: MPL-2.0

package template

import (
	"fmt"
	"regexp"
	"strings"
)

// varsKey is the top-level block that ${vars.*} references resolve against.
const varsKey = "vars"

var referencePattern = regexp.MustCompile(`\$\{\s*([A-Za-z_][A-Za-z0-9_.\-]*)\s*\}`)

// resolveVariables returns a copy of root with ${vars.path} and ${env.NAME}
// references substituted in every string value. A string that consists of a
// single reference takes the referenced value with its original type.
// Unresolvable references are kept verbatim.
func resolveVariables(root map[string]any, lookupEnv func(string) (string, bool)) map[string]any {
	vars, _ := root[varsKey].(map[string]any)
	r := resolver{vars: vars, lookupEnv: lookupEnv}

	out, _ := r.walk(root).(map[string]any)
	return out
}

type resolver struct {
	vars      map[string]any
	lookupEnv func(string) (string, bool)
}

func (r resolver) walk(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(tv))
		for k, child := range tv {
			out[k] = r.walk(child)
		}
		return out
	case []any:
		out := make([]any, len(tv))
		for i, child := range tv {
			out[i] = r.walk(child)
		}
		return out
	case string:
		return r.expand(tv)
	default:
		return v
	}
}

func (r resolver) expand(s string) any {
	if m := referencePattern.FindStringSubmatch(s); m != nil && m[0] == s {
		if val, ok := r.lookup(m[1]); ok {
			return val
		}
		return s
	}

	return referencePattern.ReplaceAllStringFunc(s, func(ref string) string {
		m := referencePattern.FindStringSubmatch(ref)
		val, ok := r.lookup(m[1])
		if !ok {
			return ref
		}
		return fmt.Sprint(val)
	})
}

func (r resolver) lookup(ref string) (any, bool) {
	scope, path, ok := strings.Cut(ref, ".")
	if !ok || path == "" {
		return nil, false
	}

	switch scope {
	case "env":
		val, ok := r.lookupEnv(path)
		return val, ok
	case varsKey:
		var cur any = r.vars
		for _, part := range strings.Split(path, ".") {
			m, ok := cur.(map[string]any)
			if !ok {
				return nil, false
			}
			if cur, ok = m[part]; !ok {
				return nil, false
			}
		}
		return cur, true
	default:
		return nil, false
	}
}
