// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultMaxFileSize bounds the size of user files handed to the CUE compiler.
const DefaultMaxFileSize int64 = 5 << 20

// ErrInvalidCUEPath is returned for blank schema paths.
var ErrInvalidCUEPath = errors.New("invalid CUE path")

type (
	// CUEPath addresses a definition inside a schema, e.g. "#Config".
	CUEPath string

	// Option configures ParseAndDecode.
	Option func(*options)

	options struct {
		filename string
		concrete bool
	}
)

// WithFilename names the decoded file in positions and error messages.
func WithFilename(name string) Option {
	return func(o *options) { o.filename = name }
}

// WithConcrete controls whether every field must hold a concrete value.
// Partial files such as the user config turn it off.
func WithConcrete(concrete bool) Option {
	return func(o *options) { o.concrete = concrete }
}

func (p CUEPath) validate() error {
	if strings.TrimSpace(string(p)) == "" {
		return fmt.Errorf("%w: %q", ErrInvalidCUEPath, string(p))
	}
	return nil
}
