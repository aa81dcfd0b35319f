// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue/errors"
)

// FormatError rewrites a CUE error so each line reads
// "<file>: <field path>: <message>", e.g.
// "s.cue: services.api.component: conflicting values "fc" and 3".
// Errors that carry no CUE positions are prefixed with the file only.
func FormatError(err error, filePath string) error {
	if err == nil {
		return nil
	}

	list := errors.Errors(err)
	if len(list) == 0 {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	lines := make([]string, 0, len(list))
	for _, e := range list {
		lines = append(lines, describe(e))
	}
	if len(lines) == 1 {
		return fmt.Errorf("%s: %s", filePath, lines[0])
	}
	return fmt.Errorf("%s: validation failed:\n  %s", filePath, strings.Join(lines, "\n  "))
}

// describe prefixes the message of e with its field path, unless CUE already
// put the path in the message.
func describe(e errors.Error) string {
	field := fieldPath(errors.Path(e))
	msg := e.Error()
	if field == "" {
		return msg
	}
	if rest, ok := strings.CutPrefix(msg, field); ok {
		msg = strings.TrimSpace(strings.TrimPrefix(rest, ":"))
	}
	return field + ": " + msg
}

// fieldPath joins path selectors with dots, writing list indexes in brackets:
// ["services", "api", "hooks", "0"] becomes "services.api.hooks[0]".
func fieldPath(path []string) string {
	var b strings.Builder
	for i, sel := range path {
		switch {
		case i > 0 && isIndex(sel):
			b.WriteString("[" + sel + "]")
		case i > 0:
			b.WriteString("." + sel)
		default:
			b.WriteString(sel)
		}
	}
	return b.String()
}

func isIndex(sel string) bool {
	return sel != "" && strings.Trim(sel, "0123456789") == ""
}

// CheckFileSize rejects data larger than maxSize bytes.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if size := int64(len(data)); size > maxSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes", filename, size, maxSize)
	}
	return nil
}
