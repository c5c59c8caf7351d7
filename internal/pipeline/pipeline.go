// Package pipeline drives the four-stage question-answering sequence:
// introspect the schema, generate SQL, execute it, and format the result
// rows into a natural-language answer.
//
// Stages run strictly in order with no retries; the first failure aborts
// the remaining stages and is surfaced to the caller as a single pipeline
// error wrapping the original cause. One Orchestrator owns one database
// connection handle and supports at most one in-flight Run at a time —
// callers needing concurrency must create separate orchestrators.
package pipeline

import (
	"context"
	"time"

	"github.com/askdb/askdb/internal/archive"
	"github.com/askdb/askdb/internal/database"
	"github.com/askdb/askdb/internal/errs"
	"github.com/askdb/askdb/internal/logger"
)

// DocumentBuilder produces the textual schema document.
type DocumentBuilder interface {
	Build(ctx context.Context) (string, error)
}

// SQLGenerator turns a question plus a schema document into SQL.
type SQLGenerator interface {
	Generate(ctx context.Context, question, schemaDoc string) (string, error)
}

// AnswerFormatter turns an executed statement and its rows into prose.
type AnswerFormatter interface {
	Format(ctx context.Context, query string, rows []database.Record) (string, error)
}

// Orchestrator owns the connection handle and sequences the four stages.
type Orchestrator struct {
	src       database.Source
	builder   DocumentBuilder
	generator SQLGenerator
	formatter AnswerFormatter
	store     archive.Store // optional, nil disables archiving
	log       *logger.Logger
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithArchive makes the orchestrator hand every successful run to store.
// Archiving is best-effort; a failed Put is logged and never fails a run.
func WithArchive(store archive.Store) Option {
	return func(o *Orchestrator) { o.store = store }
}

// New assembles an Orchestrator over the given collaborators.
func New(src database.Source, builder DocumentBuilder, gen SQLGenerator,
	fmtr AnswerFormatter, log *logger.Logger, opts ...Option) *Orchestrator {
	if log == nil {
		log = logger.Nop()
	}
	o := &Orchestrator{
		src:       src,
		builder:   builder,
		generator: gen,
		formatter: fmtr,
		log:       log,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run answers question by executing the full stage sequence. Any stage
// failure aborts the run and is returned as a single pipeline error whose
// message carries the original cause. The connection handle opened by the
// first stage stays open for later runs; call Disconnect to release it.
func (o *Orchestrator) Run(ctx context.Context, question string) (string, error) {
	started := time.Now()

	answer, query, err := o.run(ctx, question)
	if err != nil {
		return "", errs.Wrap(errs.ErrKindPipeline, "question pipeline failed", err)
	}

	o.archiveRun(ctx, &archive.Record{
		Question:    question,
		Query:       query,
		Answer:      answer,
		StartedAt:   started,
		CompletedAt: time.Now(),
	})
	return answer, nil
}

// run executes the stages and reports the answer plus the generated query.
func (o *Orchestrator) run(ctx context.Context, question string) (answer, query string, err error) {
	// INTROSPECT — ensure a live handle, then build the schema document.
	if err := o.src.Connect(ctx); err != nil {
		return "", "", err
	}
	doc, err := o.builder.Build(ctx)
	if err != nil {
		return "", "", err
	}
	o.log.Debug("stage introspect done")

	// GENERATE
	query, err = o.generator.Generate(ctx, question, doc)
	if err != nil {
		return "", "", err
	}
	o.log.With().Str("query", query).Logger().Debug("stage generate done")

	// EXECUTE — the generated statement runs verbatim on the same handle,
	// with no row limit and no timeout at this layer.
	rows, err := o.src.Query(ctx, query)
	if err != nil {
		return "", "", errs.Wrap(errs.ErrKindExecution, "generated statement failed", err)
	}
	o.log.With().Int("rows", len(rows)).Logger().Debug("stage execute done")

	// FORMAT
	answer, err = o.formatter.Format(ctx, query, rows)
	if err != nil {
		return "", "", err
	}
	return answer, query, nil
}

// Document ensures a live handle and returns the current schema document.
func (o *Orchestrator) Document(ctx context.Context) (string, error) {
	if err := o.src.Connect(ctx); err != nil {
		return "", errs.Wrap(errs.ErrKindPipeline, "question pipeline failed", err)
	}
	doc, err := o.builder.Build(ctx)
	if err != nil {
		return "", errs.Wrap(errs.ErrKindPipeline, "question pipeline failed", err)
	}
	return doc, nil
}

// Disconnect releases the connection handle if one exists. It is a no-op
// when no handle is live and may be called repeatedly; the next Run opens
// a fresh handle.
func (o *Orchestrator) Disconnect(ctx context.Context) error {
	return o.src.Close(ctx)
}

func (o *Orchestrator) archiveRun(ctx context.Context, rec *archive.Record) {
	if o.store == nil {
		return
	}
	if err := o.store.Put(ctx, rec); err != nil {
		o.log.ErrorWith("failed to archive run record", err)
	}
}
