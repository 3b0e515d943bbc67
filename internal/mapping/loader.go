package mapping

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads, schema-checks, parses and compiles a mapping file.
func LoadFile(path string) ([]*TableMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file %s: %w", path, err)
	}

	tables, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("mapping file %s: %w", path, err)
	}

	return tables, nil
}

// LoadFiles loads several mapping files. Table names must be unique across files.
func LoadFiles(paths ...string) ([]*TableMapping, error) {
	var out []*TableMapping

	seen := map[string]string{}

	for _, p := range paths {
		tables, err := LoadFile(p)
		if err != nil {
			return nil, err
		}

		for _, tm := range tables {
			if prev, ok := seen[tm.Table]; ok {
				return nil, fmt.Errorf("table %s declared in both %s and %s", tm.Table, prev, p)
			}

			seen[tm.Table] = p
		}

		out = append(out, tables...)
	}

	return out, nil
}

// Load schema-checks, parses and compiles mapping YAML.
func Load(data []byte) ([]*TableMapping, error) {
	if err := CheckSchema(data); err != nil {
		return nil, err
	}

	mf, err := Parse(data)
	if err != nil {
		return nil, err
	}

	return CompileFile(mf)
}

// Parse parses YAML data into a MappingFile without validating it.
func Parse(data []byte) (*MappingFile, error) {
	var mf MappingFile

	err := yaml.Unmarshal(data, &mf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mapping YAML: %w", err)
	}

	applyDefaults(&mf)

	return &mf, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(mf *MappingFile) {
	if mf.Version == "" {
		mf.Version = "1"
	}
}
