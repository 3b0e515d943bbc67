package mapping

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"stage-mapper/internal/diagnostic"
	"stage-mapper/internal/yamljson"
)

//go:embed schema/mapping.schema.json
var mappingSchemaJSON string

var (
	schemaOnce     sync.Once
	schemaErr      error
	compiledSchema *jsonschema.Schema
)

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = jsonschema.CompileString("mapping.schema.json", mappingSchemaJSON)
	})

	return compiledSchema, schemaErr
}

// CheckSchema validates raw mapping YAML against the embedded JSON Schema.
// Structural problems are returned as a *ConfigurationError with one
// "schema_violation" diagnostic per failing location.
func CheckSchema(data []byte) error {
	sch, err := loadSchema()
	if err != nil {
		return fmt.Errorf("compile mapping schema: %w", err)
	}

	document, err := yamljson.Decode(data)
	if err != nil {
		return fmt.Errorf("convert mapping yaml to json: %w", err)
	}

	err = sch.Validate(document)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}

	diag := &diagnostic.Diagnostics{}

	for _, e := range ve.BasicOutput().Errors {
		if e.Error == "" || strings.HasPrefix(e.Error, "doesn't validate with") {
			continue
		}

		loc := e.InstanceLocation
		if loc == "" {
			loc = "/"
		}

		diag.AddError("schema_violation", fmt.Sprintf("%s: %s", loc, e.Error), "", "")
	}

	if !diag.HasErrors() {
		diag.AddError("schema_violation", ve.Error(), "", "")
	}

	return &ConfigurationError{Diagnostics: *diag}
}
