package tidy

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cybergodev/tidy/internal/config"
	"github.com/cybergodev/tidy/internal/diag"
	"gopkg.in/yaml.v3"
)

// ParseConfig reads a tidy configuration file, one "option: value" pair
// per line, into Options. Every name and value is checked against the
// option table; unknown or repeated names are configuration errors.
// Sequence values are joined into comma separated tag lists.
func ParseConfig(r io.Reader) (Options, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return Options{}, nil
		}
		return nil, diag.Configf("", diag.ErrConfiguration, "cannot read configuration: %v", err)
	}
	if len(root.Content) == 0 {
		return Options{}, nil
	}
	m := root.Content[0]
	if m.Kind != yaml.MappingNode {
		return nil, diag.Configf("", diag.ErrConfiguration, "line %d: configuration must be a mapping of option names", m.Line)
	}

	check := config.New()
	opts := make(Options, len(m.Content)/2)
	seen := make(map[string]int, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		key, val := m.Content[i], m.Content[i+1]
		opt, ok := config.Lookup(key.Value)
		if !ok {
			return nil, diag.Configf(key.Value, diag.ErrUnknownOption, "line %d: unknown tidy option '%s'", key.Line, key.Value)
		}
		if prev, dup := seen[opt.Name]; dup {
			return nil, diag.Configf(opt.Name, diag.ErrInvalidValue, "line %d: option '%s' already set on line %d", key.Line, opt.Name, prev)
		}
		seen[opt.Name] = key.Line

		v, err := configValue(val)
		if err != nil {
			return nil, diag.Configf(opt.Name, diag.ErrInvalidValue, "line %d: %v", val.Line, err)
		}
		if err := check.Set(opt.Name, v); err != nil {
			var te *diag.TidyError
			if errors.As(err, &te) {
				te.Message = fmt.Sprintf("line %d: %s", val.Line, te.Message)
			}
			return nil, err
		}
		opts[opt.Name] = v
	}
	return opts, nil
}

func configValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return "", nil
		}
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	case yaml.SequenceNode:
		items := make([]string, 0, len(n.Content))
		for _, c := range n.Content {
			if c.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("tag lists may only hold names")
			}
			items = append(items, c.Value)
		}
		return strings.Join(items, ", "), nil
	default:
		return nil, fmt.Errorf("unsupported value")
	}
}

// LoadConfigFile reads a tidy configuration file from disk.
func LoadConfigFile(path string) (Options, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config %q: %w", path, err)
	}
	defer f.Close()
	return ParseConfig(f)
}

// Merge returns a copy of o with the entries of other added, replacing
// entries of the same name.
func (o Options) Merge(other Options) Options {
	out := make(Options, len(o)+len(other))
	for k, v := range o {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}
