package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askdb/askdb/internal/archive"
	"github.com/askdb/askdb/internal/database"
	"github.com/askdb/askdb/internal/errs"
)

// stubSource tracks connection lifecycle and serves the execute stage.
type stubSource struct {
	connected    bool
	connectCalls int
	closeCalls   int
	connectErr   error
	queryErr     error
	rows         []database.Record
	lastSQL      string
}

func (s *stubSource) Connect(context.Context) error {
	s.connectCalls++
	if s.connectErr != nil {
		return s.connectErr
	}
	s.connected = true
	return nil
}

func (s *stubSource) Close(context.Context) error {
	if s.connected {
		s.closeCalls++
		s.connected = false
	}
	return nil
}

func (s *stubSource) Ping(context.Context) error { return nil }

func (s *stubSource) Query(_ context.Context, sql string, _ ...any) ([]database.Record, error) {
	s.lastSQL = sql
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return s.rows, nil
}

type stubBuilder struct {
	doc string
	err error
}

func (b *stubBuilder) Build(context.Context) (string, error) { return b.doc, b.err }

type stubGenerator struct {
	sql          string
	err          error
	gotQuestion  string
	gotSchemaDoc string
}

func (g *stubGenerator) Generate(_ context.Context, question, schemaDoc string) (string, error) {
	g.gotQuestion = question
	g.gotSchemaDoc = schemaDoc
	return g.sql, g.err
}

type stubFormatter struct {
	answer  string
	err     error
	called  bool
	gotSQL  string
	gotRows []database.Record
}

func (f *stubFormatter) Format(_ context.Context, query string, rows []database.Record) (string, error) {
	f.called = true
	f.gotSQL = query
	f.gotRows = rows
	return f.answer, f.err
}

type stubStore struct {
	recs []*archive.Record
	err  error
}

func (s *stubStore) Put(_ context.Context, rec *archive.Record) error {
	s.recs = append(s.recs, rec)
	return s.err
}

func TestRun_HappyPath(t *testing.T) {
	src := &stubSource{rows: []database.Record{{"count": int64(3)}}}
	builder := &stubBuilder{doc: "Database schema:\n\nTable: users\n"}
	gen := &stubGenerator{sql: "SELECT count(*) FROM users"}
	fmtr := &stubFormatter{answer: "There are three users."}

	o := New(src, builder, gen, fmtr, nil)

	answer, err := o.Run(context.Background(), "how many users?")
	require.NoError(t, err)
	assert.Equal(t, "There are three users.", answer)

	// Stage plumbing: the generator saw the question and the document, the
	// execute stage ran the generated statement verbatim, and the formatter
	// received that statement together with the rows.
	assert.Equal(t, "how many users?", gen.gotQuestion)
	assert.Equal(t, builder.doc, gen.gotSchemaDoc)
	assert.Equal(t, "SELECT count(*) FROM users", src.lastSQL)
	assert.Equal(t, "SELECT count(*) FROM users", fmtr.gotSQL)
	assert.Equal(t, src.rows, fmtr.gotRows)
}

func TestRun_ConnectFailure(t *testing.T) {
	src := &stubSource{connectErr: errs.New(errs.ErrKindConnection, "refused")}
	o := New(src, &stubBuilder{}, &stubGenerator{}, &stubFormatter{}, nil)

	_, err := o.Run(context.Background(), "q")
	require.Error(t, err)
	assert.True(t, errs.IsPipeline(err))
	assert.Contains(t, err.Error(), "refused")
}

func TestRun_BuilderFailureSkipsLaterStages(t *testing.T) {
	fmtr := &stubFormatter{}
	o := New(&stubSource{}, &stubBuilder{err: errs.New(errs.ErrKindMetadata, "catalog gone")},
		&stubGenerator{}, fmtr, nil)

	_, err := o.Run(context.Background(), "q")
	require.Error(t, err)
	assert.True(t, errs.IsPipeline(err))
	assert.Contains(t, err.Error(), "catalog gone")
	assert.False(t, fmtr.called)
}

func TestRun_ExecuteFailureSkipsFormat(t *testing.T) {
	src := &stubSource{queryErr: errors.New(`relation "userz" does not exist`)}
	fmtr := &stubFormatter{}
	o := New(src, &stubBuilder{doc: "doc"}, &stubGenerator{sql: "SELECT * FROM userz"}, fmtr, nil)

	_, err := o.Run(context.Background(), "q")
	require.Error(t, err)
	assert.True(t, errs.IsPipeline(err))
	assert.Contains(t, err.Error(), `relation "userz" does not exist`)
	assert.False(t, fmtr.called)
}

func TestRun_GenerationFailureSkipsExecute(t *testing.T) {
	src := &stubSource{}
	o := New(src, &stubBuilder{doc: "doc"},
		&stubGenerator{err: errs.New(errs.ErrKindGeneration, "model down")},
		&stubFormatter{}, nil)

	_, err := o.Run(context.Background(), "q")
	require.Error(t, err)
	assert.True(t, errs.IsPipeline(err))
	assert.Empty(t, src.lastSQL)
}

func TestRun_ConnectIsIdempotentAcrossRuns(t *testing.T) {
	src := &stubSource{}
	o := New(src, &stubBuilder{doc: "doc"}, &stubGenerator{sql: "SELECT 1"},
		&stubFormatter{answer: "one"}, nil)

	_, err := o.Run(context.Background(), "q")
	require.NoError(t, err)
	_, err = o.Run(context.Background(), "q again")
	require.NoError(t, err)

	// Connect is invoked each run but only ever opens one handle.
	assert.Equal(t, 2, src.connectCalls)
	assert.True(t, src.connected)
	assert.Zero(t, src.closeCalls)
}

func TestDisconnect_Idempotent(t *testing.T) {
	src := &stubSource{}
	o := New(src, &stubBuilder{doc: "doc"}, &stubGenerator{sql: "SELECT 1"},
		&stubFormatter{}, nil)

	// No handle yet — both calls are no-ops.
	require.NoError(t, o.Disconnect(context.Background()))
	require.NoError(t, o.Disconnect(context.Background()))
	assert.Zero(t, src.closeCalls)

	_, err := o.Run(context.Background(), "q")
	require.NoError(t, err)

	require.NoError(t, o.Disconnect(context.Background()))
	require.NoError(t, o.Disconnect(context.Background()))
	assert.Equal(t, 1, src.closeCalls)
	assert.False(t, src.connected)
}

func TestRun_ArchivesSuccessfulRuns(t *testing.T) {
	store := &stubStore{}
	o := New(&stubSource{}, &stubBuilder{doc: "doc"},
		&stubGenerator{sql: "SELECT 1"}, &stubFormatter{answer: "one"},
		nil, WithArchive(store))

	_, err := o.Run(context.Background(), "what is one?")
	require.NoError(t, err)

	require.Len(t, store.recs, 1)
	rec := store.recs[0]
	assert.Equal(t, "what is one?", rec.Question)
	assert.Equal(t, "SELECT 1", rec.Query)
	assert.Equal(t, "one", rec.Answer)
	assert.False(t, rec.CompletedAt.Before(rec.StartedAt))
}

func TestRun_ArchiveFailureDoesNotFailRun(t *testing.T) {
	store := &stubStore{err: errors.New("bucket unreachable")}
	o := New(&stubSource{}, &stubBuilder{doc: "doc"},
		&stubGenerator{sql: "SELECT 1"}, &stubFormatter{answer: "one"},
		nil, WithArchive(store))

	answer, err := o.Run(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "one", answer)
}

func TestRun_FailedRunsAreNotArchived(t *testing.T) {
	store := &stubStore{}
	o := New(&stubSource{queryErr: errors.New("boom")}, &stubBuilder{doc: "doc"},
		&stubGenerator{sql: "SELECT 1"}, &stubFormatter{}, nil, WithArchive(store))

	_, err := o.Run(context.Background(), "q")
	require.Error(t, err)
	assert.Empty(t, store.recs)
}

func TestDocument(t *testing.T) {
	src := &stubSource{}
	o := New(src, &stubBuilder{doc: "Database schema:\n"}, &stubGenerator{}, &stubFormatter{}, nil)

	doc, err := o.Document(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Database schema:\n", doc)
	assert.True(t, src.connected)
}
