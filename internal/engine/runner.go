package engine

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"stage-mapper/internal/plan"
)

// Document is one decoded source document of a batch.
type Document struct {
	// ID names the document in results and logs, e.g. its file name.
	ID   string
	Data any
}

// DocumentResult is the outcome of one document. Exactly one of Rows and Err
// is meaningful.
type DocumentResult struct {
	ID   string
	Rows []Row
	Err  error
}

// Batch is the outcome of one Runner.Run call.
type Batch struct {
	// ID identifies the run in logs.
	ID string
	// Results follow the order of the input documents.
	Results []DocumentResult
	// Failed counts documents whose output was discarded.
	Failed int
}

// Runner maps many documents with one shared plan.
type Runner struct {
	Engine *Engine
	// Concurrency limits parallel documents. Zero means GOMAXPROCS.
	Concurrency int
	Logger      *slog.Logger
}

// Run maps every document. A failed document is recorded in its result and
// never stops the others; Run itself only fails when ctx is done.
func (r *Runner) Run(ctx context.Context, p *plan.Plan, docs []Document) (*Batch, error) {
	batch := &Batch{
		ID:      uuid.NewString(),
		Results: make([]DocumentResult, len(docs)),
	}

	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	logger = logger.With("batch_id", batch.ID, "table", p.Table)
	logger.Info("batch started", "documents", len(docs))

	limit := r.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			rows, err := r.Engine.ApplyPlan(doc.Data, p)
			batch.Results[i] = DocumentResult{ID: doc.ID, Rows: rows, Err: err}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Warn("batch interrupted", "error", err)
		return nil, err
	}

	rows := 0

	for _, res := range batch.Results {
		if res.Err != nil {
			batch.Failed++

			logger.Warn("document discarded", "document", res.ID, "error", res.Err)

			continue
		}

		rows += len(res.Rows)
	}

	logger.Info("batch finished", "documents", len(docs), "failed", batch.Failed, "rows", rows)

	return batch, nil
}
