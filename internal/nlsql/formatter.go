package nlsql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/askdb/askdb/internal/database"
	"github.com/askdb/askdb/internal/errs"
	"github.com/askdb/askdb/internal/llm"
)

// DefaultLanguage is the answer language used when none is configured.
const DefaultLanguage = "english"

const formatterSystemPrompt = `You are a data analyst explaining query results.
Answer in %s, in plain prose, concise and factual.
Do not mention SQL, JSON, or the mechanics of the query.`

const formatterUserPrompt = `The following SQL query was executed:

%s

It returned these rows (JSON):

%s

Describe what the result says, answering the original question behind the query.`

// Formatter turns an executed statement and its result rows into a
// natural-language answer in the configured language.
type Formatter struct {
	llm       llm.Client
	model     string
	language  string
	maxTokens int64
}

// NewFormatter returns a Formatter answering in language
// (DefaultLanguage when empty).
func NewFormatter(client llm.Client, model, language string, maxTokens int64) *Formatter {
	if language == "" {
		language = DefaultLanguage
	}
	return &Formatter{llm: client, model: model, language: language, maxTokens: maxTokens}
}

// Format asks the model to describe rows produced by query. The model's
// text is returned verbatim; an empty completion yields "" without error.
func (f *Formatter) Format(ctx context.Context, query string, rows []database.Record) (string, error) {
	payload, err := json.Marshal(rows)
	if err != nil {
		return "", errs.Wrap(errs.ErrKindGeneration, "failed to serialize result rows", err)
	}

	text, err := f.llm.Complete(ctx, llm.Request{
		Model:       f.model,
		Temperature: 0,
		MaxTokens:   f.maxTokens,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: fmt.Sprintf(formatterSystemPrompt, f.language)},
			{Role: llm.RoleUser, Content: fmt.Sprintf(formatterUserPrompt, query, payload)},
		},
	})
	if err != nil {
		return "", errs.Wrap(errs.ErrKindGeneration, "answer formatting failed", err)
	}
	return text, nil
}
