package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"stage-mapper/internal/docschema"
	"stage-mapper/internal/engine"
	"stage-mapper/internal/expand"
	"stage-mapper/internal/logging"
	"stage-mapper/internal/mapping"
	"stage-mapper/internal/match"
	"stage-mapper/internal/plan"
	"stage-mapper/internal/sink"
)

// runFlatten maps every document with every selected table and writes the
// rows of each table to its own sink. A document that fails for one table is
// reported and left out of that table only.
func runFlatten(ctx context.Context, cli CLI, deps Dependencies) int {
	c := cli.Flatten
	logger := logging.Setup(deps.ErrOut, cli.LogLevel, cli.LogFormat)

	tables, err := mapping.LoadFiles(c.Mapping...)
	if err != nil {
		return exitWithError(deps.ErrOut, err)
	}

	tables, err = selectTables(tables, c.Table)
	if err != nil {
		return exitWithError(deps.ErrOut, err)
	}

	var validator *docschema.Validator
	if c.Schema != "" {
		if validator, err = docschema.LoadFile(c.Schema); err != nil {
			return exitWithError(deps.ErrOut, err)
		}
	}

	paths, err := documentPaths(c.Documents)
	if err != nil {
		return exitWithError(deps.ErrOut, err)
	}

	docs, bad := readDocuments(paths, validator)
	for _, r := range bad {
		logger.Error("document rejected", "document", r.ID, "error", r.Err)
		fmt.Fprintf(deps.ErrOut, "✗ %s: %v\n", r.ID, r.Err)
	}

	eng := engine.New(engine.Options{Logger: logger})

	plans := make([]*plan.Plan, 0, len(tables))
	for _, tm := range tables {
		p, err := eng.Plan(tm)
		if err != nil {
			return exitWithError(deps.ErrOut, err)
		}

		plans = append(plans, p)
	}

	if c.Dump {
		dumpRows(deps, logger, eng, plans, docs)
		return ExitOK
	}

	out, err := openOutput(ctx, c, deps)
	if err != nil {
		return exitWithError(deps.ErrOut, err)
	}
	defer out.release()

	runner := &engine.Runner{Engine: eng, Concurrency: c.Workers, Logger: logger}

	exit := ExitOK
	if len(bad) > 0 {
		exit = ExitDiscarded
	}

	for _, p := range plans {
		failed, err := flattenTable(ctx, runner, out, p, docs, deps)
		if err != nil {
			return exitWithError(deps.ErrOut, err)
		}

		if failed > 0 {
			exit = ExitDiscarded
		}
	}

	return exit
}

func flattenTable(ctx context.Context, runner *engine.Runner, out *output, p *plan.Plan,
	docs []engine.Document, deps Dependencies,
) (int, error) {
	batch, err := runner.Run(ctx, p, docs)
	if err != nil {
		return 0, err
	}

	columns := p.Columns()

	s, dest, err := out.open(p.Table, columns)
	if err != nil {
		return 0, err
	}
	rows := 0

	for _, res := range batch.Results {
		if res.Err != nil {
			fmt.Fprintf(deps.ErrOut, "✗ %s [%s]: %v\n", res.ID, p.Table, res.Err)
			continue
		}

		if err := s.Write(ctx, columns, res.Rows); err != nil {
			_ = s.Close()
			return batch.Failed, fmt.Errorf("%s: %w", dest, err)
		}

		rows += len(res.Rows)
	}

	if err := s.Close(); err != nil {
		return batch.Failed, fmt.Errorf("%s: %w", dest, err)
	}

	fmt.Fprintf(deps.Out, "%s: %d document(s), %d failed, %d row(s) -> %s\n",
		p.Table, len(docs), batch.Failed, rows, dest)

	return batch.Failed, nil
}

// selectTables keeps the named tables in the order given. No names keeps all.
func selectTables(tables []*mapping.TableMapping, names []string) ([]*mapping.TableMapping, error) {
	if len(names) == 0 {
		return tables, nil
	}

	byName := make(map[string]*mapping.TableMapping, len(tables))
	known := make([]string, 0, len(tables))

	for _, tm := range tables {
		byName[tm.Table] = tm
		known = append(known, tm.Table)
	}

	var (
		out  []*mapping.TableMapping
		errs []error
	)

	for _, name := range names {
		tm, ok := byName[name]
		if !ok {
			msg := fmt.Sprintf("table %q is not declared in any mapping file", name)
			if s := match.Suggest(name, known, 3); len(s) > 0 {
				msg += fmt.Sprintf(" (did you mean %s?)", s[0])
			}

			errs = append(errs, errors.New(msg))

			continue
		}

		out = append(out, tm)
	}

	return out, errors.Join(errs...)
}

// output opens one sink per table.
type output struct {
	format  string
	dir     string
	db      sink.Copier
	release func()
}

func openOutput(ctx context.Context, c FlattenCmd, deps Dependencies) (*output, error) {
	out := &output{format: c.Format, dir: c.OutDir, release: func() {}}

	if c.Format != "postgres" {
		return out, os.MkdirAll(c.OutDir, 0o755)
	}

	url := c.DatabaseURL
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}

	if url == "" {
		return nil, errors.New("--format postgres needs --database-url or DATABASE_URL")
	}

	maxConns := int32(max(c.Workers, 4))

	db, release, err := deps.Connect(ctx, url, maxConns)
	if err != nil {
		return nil, err
	}

	out.db, out.release = db, release

	return out, nil
}

// open returns the sink for table and a description of where it writes.
func (o *output) open(table string, columns []string) (sink.Sink, string, error) {
	switch o.format {
	case "postgres":
		return sink.NewPostgres(o.db, table), "postgres " + table, nil
	case "jsonl":
		path := filepath.Join(o.dir, table+".jsonl")
		f, err := os.Create(path)
		if err != nil {
			return nil, "", err
		}

		return sink.NewJSONLines(f), path, nil
	default:
		path := filepath.Join(o.dir, table+".csv")
		f, err := os.Create(path)
		if err != nil {
			return nil, "", err
		}

		return sink.NewCSV(f, columns), path, nil
	}
}

// dumpRows prints the row contexts and bound rows of every document without
// writing any output.
func dumpRows(deps Dependencies, logger *slog.Logger, eng *engine.Engine, plans []*plan.Plan, docs []engine.Document) {
	expander := &expand.Expander{Logger: logger}

	for _, p := range plans {
		for _, doc := range docs {
			fmt.Fprintf(deps.Out, "--- %s [%s]\n", doc.ID, p.Table)

			contexts, err := expander.Expand(doc.Data, p)
			if err != nil {
				fmt.Fprintf(deps.Out, "✗ %v\n", err)
				continue
			}

			for i, rc := range contexts {
				fmt.Fprintf(deps.Out, "  %d: %s\n", i, rc)
			}

			rows, err := eng.ApplyPlan(doc.Data, p)
			if err != nil {
				fmt.Fprintf(deps.Out, "✗ %v\n", err)
				continue
			}

			dumper.Fdump(deps.Out, rows)
		}
	}
}
