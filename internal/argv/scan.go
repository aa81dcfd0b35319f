// SPDX-License-Identifier: MPL-2.0

package argv

import "strings"

// Terminator is the token that ends flag parsing.
const Terminator = "--"

// FlagSpec describes a flag that consumes a value, in both spellings.
// Either name may be empty.
type FlagSpec struct {
	Long  string
	Short string
}

// FlagValue pre-scans raw for the value of a flag before the command-line
// framework parses it. It understands "--long value", "--long=value",
// "-s value", "-s=value" and "-svalue". Scanning stops at the terminator.
// The last occurrence wins, matching pflag.
func FlagValue(raw []string, spec FlagSpec) (string, bool) {
	var (
		value string
		found bool
	)
	for i := 0; i < len(raw); i++ {
		tok := raw[i]
		if tok == Terminator {
			break
		}
		v, consumed, ok := matchFlag(raw, i, spec)
		if !ok {
			continue
		}
		value, found = v, true
		i += consumed
	}
	return value, found
}

// Positionals returns the non-flag tokens of raw that come before the
// terminator. Values of the given value-taking flags are skipped.
func Positionals(raw []string, valueFlags ...FlagSpec) []string {
	idx := positionalIndices(raw, valueFlags)
	positionals := make([]string, 0, len(idx))
	for _, i := range idx {
		positionals = append(positionals, raw[i])
	}
	return positionals
}

func positionalIndices(raw []string, valueFlags []FlagSpec) []int {
	var idx []int
	for i := 0; i < len(raw); i++ {
		tok := raw[i]
		if tok == Terminator {
			break
		}
		if !strings.HasPrefix(tok, "-") || tok == "-" {
			idx = append(idx, i)
			continue
		}
		for _, spec := range valueFlags {
			if _, consumed, ok := matchFlag(raw, i, spec); ok {
				i += consumed
				break
			}
		}
	}
	return idx
}

// matchFlag checks raw[i] against spec. It returns the flag value, how many
// extra tokens were consumed (0 or 1), and whether the token matched.
func matchFlag(raw []string, i int, spec FlagSpec) (string, int, bool) {
	tok := raw[i]

	if spec.Long != "" {
		long := "--" + spec.Long
		if tok == long {
			if i+1 < len(raw) {
				return raw[i+1], 1, true
			}
			return "", 0, true
		}
		if v, ok := strings.CutPrefix(tok, long+"="); ok {
			return v, 0, true
		}
	}

	if spec.Short != "" {
		short := "-" + spec.Short
		if tok == short {
			if i+1 < len(raw) {
				return raw[i+1], 1, true
			}
			return "", 0, true
		}
		if strings.HasPrefix(tok, short) && !strings.HasPrefix(tok, "--") {
			return strings.TrimPrefix(strings.TrimPrefix(tok, short), "="), 0, true
		}
	}

	return "", 0, false
}
