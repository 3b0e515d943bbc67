// Package yamljson converts YAML documents to JSON with YAML 1.2 rules, so
// keys such as on, yes and no stay strings.
package yamljson

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ToJSON converts one YAML document to JSON. Non-string mapping keys are
// written in their YAML text form. An empty document converts to null.
func ToJSON(data []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	out, err := json.Marshal(normalize(v))
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}

	return out, nil
}

// Decode converts one YAML document to the values encoding/json would
// produce for the equivalent JSON.
func Decode(data []byte) (any, error) {
	raw, err := ToJSON(data)
	if err != nil {
		return nil, err
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	return v, nil
}

func normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, item := range val {
			val[k] = normalize(item)
		}

		return val
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = normalize(item)
		}

		return out
	case []any:
		for i, item := range val {
			val[i] = normalize(item)
		}

		return val
	default:
		return val
	}
}
