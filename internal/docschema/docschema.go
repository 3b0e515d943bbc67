// Package docschema validates source documents against a JSON Schema before
// they are mapped. Every violation is reported, not only the first one.
//
// Schemas may be written in JSON or YAML. Rules that depend on the document,
// such as a reason that becomes required for one transaction type, are
// expressed with the schema's own if/then keywords.
package docschema

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"stage-mapper/internal/yamljson"
)

// Validator checks documents against one compiled schema. It is safe for
// concurrent use.
type Validator struct {
	name   string
	schema *jsonschema.Schema
}

// Problem is one schema violation.
type Problem struct {
	// Location is the JSON pointer of the offending value, "/" for the root.
	Location string
	Message  string
}

// ValidationError lists every violation found in one document.
type ValidationError struct {
	Schema   string
	Problems []Problem
}

// Error implements error.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = p.Location + ": " + p.Message
	}

	return fmt.Sprintf("document does not match schema %s (%d problems): %s",
		e.Schema, len(e.Problems), strings.Join(parts, "; "))
}

// LoadFile compiles the schema at path. Files ending in .yaml or .yml are
// converted to JSON first.
func LoadFile(path string) (*Validator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document schema %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yamljson.ToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("convert document schema %s to json: %w", path, err)
		}
	}

	return Compile(filepath.Base(path), string(data))
}

// Compile compiles a JSON schema held in memory.
func Compile(name, schemaJSON string) (*Validator, error) {
	sch, err := jsonschema.CompileString(name, schemaJSON)
	if err != nil {
		return nil, fmt.Errorf("compile document schema %s: %w", name, err)
	}

	return &Validator{name: name, schema: sch}, nil
}

// Validate checks a decoded document. It returns a *ValidationError listing
// every violation, or nil.
func (v *Validator) Validate(doc any) error {
	err := v.schema.Validate(doc)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("validate document: %w", err)
	}

	out := &ValidationError{Schema: v.name}

	for _, e := range ve.BasicOutput().Errors {
		if e.Error == "" || strings.HasPrefix(e.Error, "doesn't validate with") {
			continue
		}

		loc := e.InstanceLocation
		if loc == "" {
			loc = "/"
		}

		out.Problems = append(out.Problems, Problem{Location: loc, Message: e.Error})
	}

	if len(out.Problems) == 0 {
		out.Problems = append(out.Problems, Problem{Location: "/", Message: ve.Message})
	}

	return out
}
