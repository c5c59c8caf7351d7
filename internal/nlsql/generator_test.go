package nlsql

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askdb/askdb/internal/errs"
	"github.com/askdb/askdb/internal/llm"
)

// fakeClient records the last request and replies with canned text.
type fakeClient struct {
	reply string
	err   error
	last  llm.Request
}

func (f *fakeClient) Complete(_ context.Context, req llm.Request) (string, error) {
	f.last = req
	return f.reply, f.err
}

func TestGenerate_FencedResponse(t *testing.T) {
	client := &fakeClient{reply: "```sql\nSELECT 1\n```"}
	g := NewGenerator(client, "claude-3-5-haiku-20241022", 0)

	got, err := g.Generate(context.Background(), "how many?", "Database schema:\n")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", got)
}

func TestGenerate_RequestShape(t *testing.T) {
	client := &fakeClient{reply: "SELECT count(*) FROM users"}
	g := NewGenerator(client, "test-model", 512)

	_, err := g.Generate(context.Background(), "how many users?", "Database schema:\n\nTable: users\n")
	require.NoError(t, err)

	req := client.last
	assert.Equal(t, "test-model", req.Model)
	assert.Zero(t, req.Temperature)
	assert.Equal(t, int64(512), req.MaxTokens)

	require.Len(t, req.Messages, 2)
	assert.Equal(t, llm.RoleSystem, req.Messages[0].Role)
	assert.Contains(t, req.Messages[0].Content, "Table: users")
	assert.Equal(t, llm.RoleUser, req.Messages[1].Role)
	assert.Equal(t, "how many users?", req.Messages[1].Content)
}

func TestGenerate_ModelFailure(t *testing.T) {
	client := &fakeClient{err: errors.New("transport down")}
	g := NewGenerator(client, "test-model", 0)

	_, err := g.Generate(context.Background(), "q", "schema")
	require.Error(t, err)
	assert.True(t, errs.IsGeneration(err))
	assert.Contains(t, err.Error(), "transport down")
}

func TestCleanQuery(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "SELECT 1", "SELECT 1"},
		{"surrounding whitespace", "  SELECT 1\n", "SELECT 1"},
		{"sql fence", "```sql\nSELECT 1\n```", "SELECT 1"},
		{"untagged fence", "```\nSELECT 1\n```", "SELECT 1"},
		{"unterminated fence", "```sql\nSELECT 1", "SELECT 1"},
		{"multiline statement", "```sql\nSELECT a,\n       b\nFROM t\n```", "SELECT a,\n       b\nFROM t"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanQuery(tt.in))
		})
	}
}

func TestCleanQuery_FenceRoundTrip(t *testing.T) {
	// Fenced and unfenced renditions of the same statement clean to the
	// same text.
	statements := []string{
		"SELECT 1",
		"SELECT name FROM users WHERE country = 'UA'",
		"SELECT a,\n       b\nFROM t\nORDER BY a",
	}

	for _, stmt := range statements {
		fenced := "```sql\n" + stmt + "\n```"
		assert.Equal(t, CleanQuery(stmt), CleanQuery(fenced))
	}
}
