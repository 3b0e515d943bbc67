package command

import (
	"errors"
	"os"
	"path/filepath"
	"sort"

	"stage-mapper/internal/docschema"
	"stage-mapper/internal/engine"
	"stage-mapper/internal/resolve"
)

// documentPaths expands directories to the *.json files they contain, sorted by name.
func documentPaths(args []string) ([]string, error) {
	var paths []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		matches, err := filepath.Glob(filepath.Join(arg, "*.json"))
		if err != nil {
			return nil, err
		}

		sort.Strings(matches)
		paths = append(paths, matches...)
	}

	if len(paths) == 0 {
		return nil, errors.New("no documents found")
	}

	return paths, nil
}

// rejected is a document that never reached the engine.
type rejected struct {
	ID  string
	Err error
}

// readDocuments decodes every document and, when v is set, validates it.
// Documents that fail either step are returned as rejected, not as an error.
func readDocuments(paths []string, v *docschema.Validator) ([]engine.Document, []rejected) {
	var (
		docs []engine.Document
		bad  []rejected
	)

	for _, path := range paths {
		data, err := readDocument(path, v)
		if err != nil {
			bad = append(bad, rejected{ID: path, Err: err})
			continue
		}

		docs = append(docs, engine.Document{ID: path, Data: data})
	}

	return docs, bad
}

func readDocument(path string, v *docschema.Validator) (any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc, err := resolve.DecodeBytes(raw)
	if err != nil {
		return nil, err
	}

	if v != nil {
		if err := v.Validate(doc); err != nil {
			return nil, err
		}
	}

	return doc, nil
}
