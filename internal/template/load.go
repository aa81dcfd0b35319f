// SPDX-License-Identifier: MPL-2.0

package template

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"devs-cli/internal/issue"
	"devs-cli/pkg/cueutil"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/pelletier/go-toml/v2/unstable"
	"gopkg.in/yaml.v3"
)

// DefaultNames are the template file names looked up in the working directory,
// in order of precedence.
var DefaultNames = []string{"s.yaml", "s.yml", "s.cue", "s.toml"}

var (
	// ErrInvalidTemplate wraps every syntax or shape error of a template file.
	ErrInvalidTemplate = errors.New("invalid template")
	// ErrUnsupportedFormat is returned for template files with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported template format")
	// ErrNotAMapping is returned when the template root is not a mapping.
	ErrNotAMapping = errors.New("template root must be a mapping")
)

type (
	// Loader parses templates. The zero value reads environment variables from
	// the process environment.
	Loader struct {
		// LookupEnv resolves ${env.NAME} references. Nil means os.LookupEnv.
		LookupEnv func(string) (string, bool)
	}

	decoded struct {
		root          map[string]any
		topOrder      []string
		servicesOrder []string
	}
)

// Load parses and variable-resolves the template at path with a zero Loader.
func Load(path string) (*Document, error) {
	return Loader{}.Load(path)
}

// Load parses the template at path according to its extension and resolves
// ${vars.*} and ${env.*} references.
func (l Loader) Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("read template").
			WithResource(path).
			WithSuggestion("Check the --template path or run from the project directory").
			WithSuggestion("Default names: " + strings.Join(DefaultNames, ", ")).
			Wrap(err).
			BuildError()
	}
	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return nil, err
	}

	var d decoded
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		d, err = decodeYAML(data)
	case ".cue":
		d, err = decodeCUE(data, path)
	case ".toml":
		d, err = decodeTOML(data)
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("parse template").
			WithResource(path).
			WithSuggestion("Check the template syntax").
			WithSuggestion("Declare projects under a 'services' mapping, each with a component").
			Wrap(fmt.Errorf("%w: %w", ErrInvalidTemplate, err)).
			BuildError()
	}

	lookup := l.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	root := resolveVariables(d.root, lookup)

	return newDocument(path, root, d.topOrder, d.servicesOrder), nil
}

// Discover returns the first default template name that exists in dir.
func Discover(dir string) (string, bool) {
	for _, name := range DefaultNames {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

func decodeYAML(data []byte) (decoded, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return decoded{}, err
	}
	if len(doc.Content) == 0 {
		return decoded{root: map[string]any{}}, nil
	}

	top := doc.Content[0]
	if top.Kind != yaml.MappingNode {
		return decoded{}, ErrNotAMapping
	}

	var root map[string]any
	if err := top.Decode(&root); err != nil {
		return decoded{}, err
	}

	d := decoded{root: root, topOrder: yamlKeys(top)}
	for i := 0; i+1 < len(top.Content); i += 2 {
		if isServicesKey(top.Content[i].Value) && top.Content[i+1].Kind == yaml.MappingNode {
			d.servicesOrder = yamlKeys(top.Content[i+1])
			break
		}
	}
	return d, nil
}

func yamlKeys(mapping *yaml.Node) []string {
	keys := make([]string, 0, len(mapping.Content)/2)
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		keys = append(keys, mapping.Content[i].Value)
	}
	return keys
}

func decodeCUE(data []byte, path string) (decoded, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if value.Err() != nil {
		return decoded{}, cueutil.FormatError(value.Err(), path)
	}
	if value.IncompleteKind() != cue.StructKind {
		return decoded{}, ErrNotAMapping
	}

	var root map[string]any
	if err := value.Decode(&root); err != nil {
		return decoded{}, cueutil.FormatError(err, path)
	}

	topOrder, err := cueKeys(value)
	if err != nil {
		return decoded{}, cueutil.FormatError(err, path)
	}
	d := decoded{root: root, topOrder: topOrder}
	for _, key := range servicesKeys {
		services := value.LookupPath(cue.MakePath(cue.Str(key)))
		if services.Exists() && services.IncompleteKind() == cue.StructKind {
			if d.servicesOrder, err = cueKeys(services); err != nil {
				return decoded{}, cueutil.FormatError(err, path)
			}
			break
		}
	}
	return d, nil
}

func cueKeys(v cue.Value) ([]string, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, err
	}
	var keys []string
	for iter.Next() {
		sel := iter.Selector()
		if sel.IsString() {
			keys = append(keys, sel.Unquoted())
		} else {
			keys = append(keys, sel.String())
		}
	}
	return keys, nil
}

func decodeTOML(data []byte) (decoded, error) {
	var root map[string]any
	if err := toml.Unmarshal(data, &root); err != nil {
		return decoded{}, err
	}
	if root == nil {
		root = map[string]any{}
	}

	topOrder, servicesOrder, err := tomlKeyOrder(data)
	if err != nil {
		return decoded{}, err
	}
	return decoded{root: root, topOrder: topOrder, servicesOrder: servicesOrder}, nil
}

// tomlKeyOrder walks the TOML expressions to recover the order in which
// top-level keys and services entries are first declared. Decoding into a map
// loses that order.
func tomlKeyOrder(data []byte) (top, services []string, err error) {
	var (
		p       unstable.Parser
		seenTop = map[string]bool{}
		seenSvc = map[string]bool{}
		// table is the key path of the current [table] header.
		table []string
	)

	record := func(path []string) {
		if len(path) == 0 {
			return
		}
		if !seenTop[path[0]] {
			seenTop[path[0]] = true
			top = append(top, path[0])
		}
		if len(path) > 1 && isServicesKey(path[0]) && !seenSvc[path[1]] {
			seenSvc[path[1]] = true
			services = append(services, path[1])
		}
	}

	p.Reset(data)
	for p.NextExpression() {
		expr := p.Expression()
		switch expr.Kind {
		case unstable.Table, unstable.ArrayTable:
			table = tomlKeyPath(expr.Key())
			record(table)
		case unstable.KeyValue:
			record(append(append([]string{}, table...), tomlKeyPath(expr.Key())...))
		}
	}
	if err := p.Error(); err != nil {
		return nil, nil, err
	}
	return top, services, nil
}

func tomlKeyPath(it unstable.Iterator) []string {
	var parts []string
	for it.Next() {
		parts = append(parts, string(it.Node().Data))
	}
	return parts
}

func isServicesKey(key string) bool {
	return slices.Contains(servicesKeys, key)
}
