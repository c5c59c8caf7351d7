package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askdb/askdb/internal/database"
)

func TestFieldHelpers(t *testing.T) {
	rec := database.Record{
		"name":    "users",
		"raw":     []byte("bytes"),
		"count":   int64(3),
		"flag":    true,
		"comment": nil,
	}

	assert.Equal(t, "users", stringField(rec, "name"))
	assert.Equal(t, "bytes", stringField(rec, "raw"))
	assert.Equal(t, "3", stringField(rec, "count"))
	assert.Equal(t, "", stringField(rec, "missing"))

	assert.True(t, boolField(rec, "flag"))
	assert.False(t, boolField(rec, "name"))
	assert.False(t, boolField(rec, "missing"))

	assert.Nil(t, optStringField(rec, "comment"))
	assert.Nil(t, optStringField(rec, "missing"))
	got := optStringField(rec, "name")
	require.NotNil(t, got)
	assert.Equal(t, "users", *got)
}
