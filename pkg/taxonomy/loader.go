package taxonomy

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

const logPrefix = "taxonomy:loader"

// DefaultPaths are tried after any explicit path.
var DefaultPaths = []string{"taxonomy.yaml", "config/taxonomy.yaml"}

// LoadTable loads the taxonomy table. Explicit paths are tried first, then DefaultPaths.
// The first readable file is merged over DefaultTable; with no readable file the defaults are returned.
// YAML and JSON files are both accepted. An explicit file that cannot be parsed is an error;
// a broken file on DefaultPaths is skipped with a warning.
func LoadTable(paths ...string) (*Table, error) {
	type candidate struct {
		path     string
		explicit bool
	}
	all := make([]candidate, 0, len(paths)+len(DefaultPaths))
	for _, p := range paths {
		if p != "" {
			all = append(all, candidate{path: p, explicit: true})
		}
	}
	for _, p := range DefaultPaths {
		all = append(all, candidate{path: p})
	}

	for _, c := range all {
		data, err := os.ReadFile(c.path)
		if err != nil {
			continue
		}

		var table Table
		if err := yaml.Unmarshal(data, &table); err != nil {
			if c.explicit {
				return nil, fmt.Errorf("%s - failed to parse taxonomy file %s: %w", logPrefix, c.path, err)
			}
			slog.Warn(fmt.Sprintf("%s - Failed to parse taxonomy file %s: %v", logPrefix, c.path, err))
			continue
		}

		slog.Info(fmt.Sprintf("%s - Loaded taxonomy table from %s", logPrefix, c.path))
		return MergeTables(DefaultTable(), &table), nil
	}

	slog.Debug(fmt.Sprintf("%s - Using default taxonomy table", logPrefix))
	return DefaultTable(), nil
}

// MergeTables merges override into base. Config IDs and aliases in override replace those in base.
func MergeTables(base, override *Table) *Table {
	merged := *base

	merged.Configs = make(map[string]ConfigSpec, len(base.Configs)+len(override.Configs))
	for id, spec := range base.Configs {
		merged.Configs[id] = spec
	}
	for id, spec := range override.Configs {
		merged.Configs[id] = spec
	}

	merged.Aliases = make(map[string]string, len(base.Aliases)+len(override.Aliases))
	for alias, target := range base.Aliases {
		merged.Aliases[alias] = target
	}
	for alias, target := range override.Aliases {
		merged.Aliases[alias] = target
	}

	if override.Name != "" {
		merged.Name = override.Name
	}
	if override.Version != "" {
		merged.Version = override.Version
	}
	return &merged
}
