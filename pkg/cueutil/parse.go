// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// ParseAndDecode unifies data with the schema definition at schemaPath,
// validates the result and decodes it into a T. Files over
// DefaultMaxFileSize are rejected before compiling. Errors are shaped by
// FormatError.
func ParseAndDecode[T any](schema, data []byte, schemaPath CUEPath, opts ...Option) (*T, error) {
	if err := schemaPath.validate(); err != nil {
		return nil, err
	}

	o := options{filename: "<input>", concrete: true}
	for _, opt := range opts {
		opt(&o)
	}

	if err := CheckFileSize(data, DefaultMaxFileSize, o.filename); err != nil {
		return nil, err
	}

	ctx := cuecontext.New()
	def := ctx.CompileBytes(schema).LookupPath(cue.ParsePath(string(schemaPath)))
	if err := def.Err(); err != nil {
		return nil, fmt.Errorf("internal error: schema %s: %w", schemaPath, err)
	}

	user := ctx.CompileBytes(data, cue.Filename(o.filename))
	if err := user.Err(); err != nil {
		return nil, FormatError(err, o.filename)
	}

	unified := def.Unify(user)
	if err := unified.Validate(cue.Concrete(o.concrete)); err != nil {
		return nil, FormatError(err, o.filename)
	}

	out := new(T)
	if err := unified.Decode(out); err != nil {
		return nil, FormatError(err, o.filename)
	}
	return out, nil
}
