// Package engine applies a table mapping to one document at a time.
//
// An invocation discovers axes (or reuses a cached plan), expands row
// contexts, binds every field of every row and returns the rows in order.
// Any failure discards the whole document's output.
package engine

import (
	"log/slog"
	"time"

	"stage-mapper/internal/bind"
	"stage-mapper/internal/expand"
	"stage-mapper/internal/mapping"
	"stage-mapper/internal/plan"
)

// Options configure an Engine.
type Options struct {
	// Logger receives debug events per state transition and plan warnings.
	// Defaults to a logger that discards everything.
	Logger *slog.Logger
	// Clock supplies current_timestamp(). Defaults to time.Now.
	Clock func() time.Time
}

// Engine is safe for concurrent use; it holds no per-invocation state.
type Engine struct {
	logger   *slog.Logger
	clock    func() time.Time
	expander *expand.Expander
}

// New creates an engine.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Engine{
		logger:   logger,
		clock:    clock,
		expander: &expand.Expander{Logger: logger},
	}
}

// Plan discovers the plan of tm and logs its warnings. The plan can be reused
// for any number of documents.
func (e *Engine) Plan(tm *mapping.TableMapping) (*plan.Plan, error) {
	p, err := plan.Discover(tm)
	if err != nil {
		return nil, err
	}

	for _, w := range p.Diagnostics.Warnings {
		e.logger.Warn(w.Message, "table", p.Table, "code", w.Code)
	}

	return p, nil
}

// Apply maps one document with tm.
func (e *Engine) Apply(doc any, tm *mapping.TableMapping) ([]Row, error) {
	p, err := e.Plan(tm)
	if err != nil {
		return nil, err
	}

	return e.ApplyPlan(doc, p)
}

// ApplyPlan maps one document with a previously discovered plan.
func (e *Engine) ApplyPlan(doc any, p *plan.Plan) ([]Row, error) {
	inv := &invocation{
		table:  p.Table,
		state:  StateIdle,
		logger: e.logger.With("table", p.Table),
	}

	if err := inv.advance(StateAxesDiscovered); err != nil {
		return nil, err
	}

	contexts, err := e.expander.Expand(doc, p)
	if err != nil {
		return nil, inv.fail(-1, "", err)
	}

	if err := inv.advance(StateRowsExpanded); err != nil {
		return nil, err
	}

	binder := &bind.Binder{
		Table: p.Table,
		Now:   e.clock().UTC().Truncate(p.Mapping.Options.TimestampPrecision),
	}

	if err := inv.advance(StateBinding); err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(contexts))

	for i, ctx := range contexts {
		row := make(Row, len(p.Bindings))

		for j, fb := range p.Bindings {
			v, err := binder.Bind(fb, ctx, doc)
			if err != nil {
				return nil, inv.fail(i, ctx.String(), err)
			}

			row[j] = Cell{Column: fb.Field.Column, Value: v}
		}

		rows = append(rows, row)
	}

	if err := inv.advance(StateDone); err != nil {
		return nil, err
	}

	inv.logger.Debug("document mapped", "rows", len(rows))

	return rows, nil
}

// invocation tracks the state of one ApplyPlan call.
type invocation struct {
	table  string
	state  State
	logger *slog.Logger
}

func (inv *invocation) advance(to State) error {
	if err := checkTransition(inv.state, to); err != nil {
		return err
	}

	inv.logger.Debug("engine state", "from", inv.state.String(), "to", to.String())
	inv.state = to

	return nil
}

func (inv *invocation) fail(row int, rowCtx string, err error) error {
	docErr := &DocumentError{
		Table:    inv.table,
		State:    inv.state,
		RowIndex: row,
		Context:  rowCtx,
		Err:      err,
	}

	inv.logger.Debug("engine state", "from", inv.state.String(), "to", StateFailed.String(), "error", err)
	inv.state = StateFailed

	return docErr
}
