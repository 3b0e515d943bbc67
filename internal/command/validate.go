package command

import (
	"fmt"

	"stage-mapper/internal/docschema"
)

func runValidate(cli CLI, deps Dependencies) int {
	v, err := docschema.LoadFile(cli.Validate.Schema)
	if err != nil {
		return exitWithError(deps.ErrOut, err)
	}

	paths, err := documentPaths(cli.Validate.Documents)
	if err != nil {
		return exitWithError(deps.ErrOut, err)
	}

	exit := ExitOK

	for _, path := range paths {
		if _, err := readDocument(path, v); err != nil {
			fmt.Fprintf(deps.Out, "✗ %s: %v\n", path, err)
			exit = ExitError

			continue
		}

		fmt.Fprintf(deps.Out, "✓ %s\n", path)
	}

	return exit
}
