package command

import (
	"encoding/json"
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"sigs.k8s.io/yaml"

	"stage-mapper/internal/engine"
	"stage-mapper/internal/logging"
	"stage-mapper/internal/mapping"
	"stage-mapper/internal/plan"
)

var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
	MaxDepth:                6,
}

// runCheck loads every mapping file, discovers each table's plan and prints
// its report. Every file is checked even after a failure.
func runCheck(cli CLI, deps Dependencies) int {
	c := cli.Check
	logger := logging.Setup(deps.ErrOut, cli.LogLevel, cli.LogFormat)
	eng := engine.New(engine.Options{Logger: logger})

	exit := ExitOK
	reports := []*plan.Report{}

	for _, path := range c.Mappings {
		tables, err := mapping.LoadFile(path)
		if err != nil {
			fmt.Fprintf(deps.ErrOut, "✗ %s\n%v\n", path, err)
			exit = ExitError

			continue
		}

		if c.Format == "text" {
			fmt.Fprintf(deps.Out, "✓ %s: %d table(s)\n", path, len(tables))
		}

		for _, tm := range tables {
			p, err := eng.Plan(tm)
			if err != nil {
				fmt.Fprintf(deps.ErrOut, "✗ %s\n%v\n", tm.Table, err)
				exit = ExitError

				continue
			}

			r := plan.GenerateReport(p)
			reports = append(reports, r)

			if c.Format == "text" {
				fmt.Fprint(deps.Out, plan.FormatReport(r))
			}

			if c.Dump {
				dumper.Fdump(deps.Out, p.Axes, p.Components)
			}
		}
	}

	if err := writeReports(deps, c.Format, reports); err != nil {
		return exitWithError(deps.ErrOut, err)
	}

	return exit
}

// writeReports prints the reports as one JSON array or YAML sequence. Text
// reports are printed as they are produced.
func writeReports(deps Dependencies, format string, reports []*plan.Report) error {
	var (
		out []byte
		err error
	)

	switch format {
	case "json":
		out, err = json.MarshalIndent(reports, "", "  ")
		out = append(out, '\n')
	case "yaml":
		out, err = yaml.Marshal(reports)
	default:
		return nil
	}

	if err != nil {
		return fmt.Errorf("encode %s report: %w", format, err)
	}

	_, err = deps.Out.Write(out)

	return err
}
