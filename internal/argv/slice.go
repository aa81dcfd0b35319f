// SPDX-License-Identifier: MPL-2.0

package argv

import "slices"

// Split is the result of slicing an argument vector at a sentinel token.
type Split struct {
	// Framework holds the tokens up to and including the sentinel.
	Framework []string
	// Forwarded holds the tokens after the sentinel.
	Forwarded []string
	// At is the index of the sentinel in the raw vector, or -1 when absent.
	At int
}

// Found reports whether the sentinel occurred in the raw vector.
func (s Split) Found() bool { return s.At >= 0 }

// Slice splits raw at the first occurrence of sentinel. Tokens up to and
// including the sentinel are framework tokens; everything after is forwarded.
// When the sentinel is absent every token is a framework token.
func Slice(raw []string, sentinel string) (framework, forwarded []string) {
	s := SliceAfter(raw, "", sentinel)
	return s.Framework, s.Forwarded
}

// SliceAfter is like Slice but only considers sentinel occurrences that come
// after the first occurrence of owner. An empty owner matches from the start.
// If owner is non-empty and absent, the sentinel is treated as absent.
func SliceAfter(raw []string, owner, sentinel string) Split {
	start := 0
	if owner != "" {
		idx := slices.Index(raw, owner)
		if idx < 0 {
			return Split{Framework: slices.Clone(raw), Forwarded: []string{}, At: -1}
		}
		start = idx + 1
	}

	at := -1
	for i := start; i < len(raw); i++ {
		if raw[i] == sentinel {
			at = i
			break
		}
	}
	if at < 0 {
		return Split{Framework: slices.Clone(raw), Forwarded: []string{}, At: -1}
	}

	return Split{
		Framework: slices.Clone(raw[:at+1]),
		Forwarded: slices.Clone(raw[at+1:]),
		At:        at,
	}
}
