package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askdb/askdb/internal/database"
	"github.com/askdb/askdb/internal/errs"
)

func TestQuery_NotConnected(t *testing.T) {
	d := New(database.DefaultConfig("postgres://localhost:5432/app"))

	_, err := d.Query(context.Background(), "SELECT 1")
	require.Error(t, err)
	assert.True(t, errs.IsConnection(err))
}

func TestPing_NotConnected(t *testing.T) {
	d := New(database.DefaultConfig("postgres://localhost:5432/app"))

	err := d.Ping(context.Background())
	require.Error(t, err)
	assert.True(t, errs.IsConnection(err))
}

func TestClose_NoLiveHandleIsNoOp(t *testing.T) {
	d := New(database.DefaultConfig("postgres://localhost:5432/app"))

	require.NoError(t, d.Close(context.Background()))
	require.NoError(t, d.Close(context.Background()))
}

func TestConnect_InvalidDSN(t *testing.T) {
	d := New(database.DefaultConfig("://not-a-dsn"))

	err := d.Connect(context.Background())
	require.Error(t, err)
	assert.True(t, errs.IsConnection(err))
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{
			name:  "statement error is execution",
			err:   &pgconn.PgError{Code: "42601", Message: "syntax error"},
			check: errs.IsExecution,
		},
		{
			name:  "undefined table is execution",
			err:   &pgconn.PgError{Code: "42P01", Message: `relation "x" does not exist`},
			check: errs.IsExecution,
		},
		{
			name:  "class 08 is connection",
			err:   &pgconn.PgError{Code: "08006", Message: "connection failure"},
			check: errs.IsConnection,
		},
		{
			name:  "deadline is execution",
			err:   context.DeadlineExceeded,
			check: errs.IsExecution,
		},
		{
			name:  "no rows is execution",
			err:   pgx.ErrNoRows,
			check: errs.IsExecution,
		},
		{
			name:  "network error is connection",
			err:   errors.New("dial tcp: refused"),
			check: errs.IsConnection,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := mapError(tt.err, "query failed")
			require.Error(t, mapped)
			assert.True(t, tt.check(mapped))
			// The original cause is never lost.
			assert.ErrorIs(t, mapped, tt.err)
		})
	}
}

func TestMapError_Nil(t *testing.T) {
	assert.Nil(t, mapError(nil, "x"))
}

func TestMapError_KeepsServerMessage(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "42703", Message: `column "namez" does not exist`}
	mapped := mapError(pgErr, "query failed")
	assert.Contains(t, mapped.Error(), `column "namez" does not exist`)
}
