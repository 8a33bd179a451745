package config

import (
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ApplyOverrides sets dotted keys ("build.command=[pnpm, build]") on cfg.
// Values are parsed as YAML, so lists and durations work as in the file.
func ApplyOverrides(cfg *File, overrides []string) (*File, error) {
	if cfg == nil {
		cfg = Defaults()
	}
	if len(overrides) == 0 {
		return cfg, nil
	}

	b, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "marshal config")
	}
	tree := map[string]any{}
	if err := yaml.Unmarshal(b, &tree); err != nil {
		return nil, errors.Wrap(err, "unmarshal config tree")
	}

	for _, o := range overrides {
		key, raw, ok := strings.Cut(o, "=")
		if !ok {
			return nil, errors.Errorf("override %q: expected key=value", o)
		}
		var value any
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
			return nil, errors.Wrapf(err, "override %q: parse value", o)
		}
		if err := setDotted(tree, strings.TrimSpace(key), value); err != nil {
			return nil, err
		}
	}

	b, err = yaml.Marshal(tree)
	if err != nil {
		return nil, errors.Wrap(err, "marshal overridden config")
	}
	out := &File{}
	if err := yaml.Unmarshal(b, out); err != nil {
		return nil, errors.Wrap(err, "decode overridden config")
	}
	return out, nil
}

func setDotted(tree map[string]any, dotted string, value any) error {
	parts := splitDotted(dotted)
	if len(parts) == 0 {
		return errors.New("empty dotted key")
	}

	current := tree
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part]
		if !ok || next == nil {
			child := map[string]any{}
			current[part] = child
			current = child
			continue
		}
		asMap, ok := next.(map[string]any)
		if !ok {
			return errors.Errorf("cannot set %q: path segment %q is not an object", dotted, part)
		}
		current = asMap
	}
	current[parts[len(parts)-1]] = value
	return nil
}

func splitDotted(dotted string) []string {
	raw := strings.Split(dotted, ".")
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
