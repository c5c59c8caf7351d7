// Package nlsql wraps the language model for the two translation steps of
// the pipeline: natural language to SQL, and result rows back to natural
// language.
package nlsql

import (
	"context"
	"fmt"
	"strings"

	"github.com/askdb/askdb/internal/errs"
	"github.com/askdb/askdb/internal/llm"
)

const generatorSystemPrompt = `You are an expert SQL developer.
Translate the user's question into a single PostgreSQL query.
Use only the tables and columns listed in the schema below.
Return only the SQL query — no explanation, no commentary.

Database schema:

%s`

// Generator turns a (question, schema document) pair into a cleaned SQL
// statement via one language-model call with deterministic sampling.
type Generator struct {
	llm       llm.Client
	model     string
	maxTokens int64
}

// NewGenerator returns a Generator using the given model identifier.
func NewGenerator(client llm.Client, model string, maxTokens int64) *Generator {
	return &Generator{llm: client, model: model, maxTokens: maxTokens}
}

// Generate asks the model for a SQL statement answering question against
// the supplied schema document. The raw model text is cleaned of code
// fences and surrounding whitespace; no semantic validation is performed.
func (g *Generator) Generate(ctx context.Context, question, schemaDoc string) (string, error) {
	raw, err := g.llm.Complete(ctx, llm.Request{
		Model:       g.model,
		Temperature: 0,
		MaxTokens:   g.maxTokens,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: fmt.Sprintf(generatorSystemPrompt, schemaDoc)},
			{Role: llm.RoleUser, Content: question},
		},
	})
	if err != nil {
		return "", errs.Wrap(errs.ErrKindGeneration, "SQL generation failed", err)
	}
	return CleanQuery(raw), nil
}

// CleanQuery strips fenced-code markers from a model response: an opening
// fence optionally tagged as sql, any closing fence, and surrounding
// whitespace. The statement text itself is returned verbatim.
func CleanQuery(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimPrefix(s, "sql")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
	}
	return strings.TrimSpace(s)
}
