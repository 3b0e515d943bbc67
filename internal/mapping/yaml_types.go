package mapping

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// --- MappingFile YAML methods ---

// UnmarshalYAML implements custom YAML unmarshaling for MappingFile.
// Accepts:
//   - A single table at the root: {table_name: ..., fields: ...}
//   - A table list: {version: "1", tables: [{table_name: ..., fields: ...}]}
func (mf *MappingFile) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: mapping file must be a mapping, got %s", node.Line, kindName(node.Kind))
	}

	if mappingValue(node, "tables") != nil {
		// plain drops the method set so Decode does not recurse.
		type plain MappingFile

		var p plain
		if err := node.Decode(&p); err != nil {
			return err
		}

		*mf = MappingFile(p)

		return nil
	}

	var single struct {
		Version  string `yaml:"version,omitempty"`
		TableDef `yaml:",inline"`
	}

	if err := node.Decode(&single); err != nil {
		return err
	}

	*mf = MappingFile{
		Version: single.Version,
		Tables:  []TableDef{single.TableDef},
	}

	return nil
}

// --- FieldDefs YAML methods ---

// UnmarshalYAML implements custom YAML unmarshaling for FieldDefs.
// The "fields" mapping is read pair by pair so that column order follows the file.
func (f *FieldDefs) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: fields must map column names to field definitions, got %s",
			node.Line, kindName(node.Kind))
	}

	out := make(FieldDefs, 0, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]

		var column string
		if err := keyNode.Decode(&column); err != nil {
			return fmt.Errorf("line %d: invalid column name: %w", keyNode.Line, err)
		}

		fd, err := parseFieldDef(column, valNode)
		if err != nil {
			return err
		}

		fd.Line = keyNode.Line
		out = append(out, fd)
	}

	*f = out

	return nil
}

// parseFieldDef reads one column definition, recording which keys are present.
func parseFieldDef(column string, node *yaml.Node) (FieldDef, error) {
	fd := FieldDef{Column: column}

	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}

	switch node.Kind {
	case yaml.ScalarNode:
		// "COLUMN:" with no body; compile reports the missing source.
		if node.Tag == "!!null" {
			return fd, nil
		}

		return fd, fmt.Errorf("line %d: field %q must be a mapping with json_path or value", node.Line, column)

	case yaml.MappingNode:
		// handled below

	default:
		return fd, fmt.Errorf("line %d: field %q must be a mapping, got %s", node.Line, column, kindName(node.Kind))
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		var key string
		if err := node.Content[i].Decode(&key); err != nil {
			return fd, fmt.Errorf("line %d: field %q: invalid key: %w", node.Content[i].Line, column, err)
		}

		val := node.Content[i+1]

		var err error

		switch key {
		case "json_path":
			fd.HasPath = true
			err = val.Decode(&fd.JSONPath)
		case "value":
			fd.HasValue = true
			err = val.Decode(&fd.Value)
		case "datatype":
			err = val.Decode(&fd.Datatype)
		case "format":
			err = val.Decode(&fd.Format)
		default:
			fd.Unknown = append(fd.Unknown, key)
		}

		if err != nil {
			return fd, fmt.Errorf("line %d: field %q: invalid %s: %w", val.Line, column, key, err)
		}
	}

	return fd, nil
}

// mappingValue returns the value node for key in a mapping node, or nil.
func mappingValue(node *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}

	return nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown node"
	}
}
