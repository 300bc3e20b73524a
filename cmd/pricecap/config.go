package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// YAMLConfig is a kong.ConfigurationLoader reading flag defaults from a
// YAML mapping. Keys are flag names, with dashes or underscores:
//
//	page-type: checkout
//	currency: EUR
//	snapshot_dir: ~/pricecap/snapshots
//
// Lists are joined with commas. Flags given on the command line win.
func YAMLConfig(r io.Reader) (kong.Resolver, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	values := map[string]any{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	var f kong.ResolverFunc = func(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
		for _, key := range []string{flag.Name, strings.ReplaceAll(flag.Name, "-", "_")} {
			if raw, ok := values[key]; ok {
				return configValue(raw), nil
			}
		}
		return nil, nil
	}
	return f, nil
}

// configValue renders a decoded YAML value the way it would be typed on
// the command line.
func configValue(raw any) any {
	switch v := raw.(type) {
	case nil:
		return nil
	case []any:
		parts := make([]string, 0, len(v))
		for _, p := range v {
			parts = append(parts, fmt.Sprint(p))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(v)
	}
}
