package nlq

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/datalens-ai/conversational-analytics-be/internal/core/llm"
	"github.com/datalens-ai/conversational-analytics-be/internal/core/query"
)

// SchemaDescription is the fixed description of the wide transactions table
// handed to the text service. Column names must be double-quoted in
// generated SQL; the table name itself is never quoted.
const SchemaDescription = `The database has a single table called main with these columns (use EXACTLY these names, always double-quoted):
"Transaction_Date", "Revenue", "Lost Revenue", "CAC", "AOV", "LTV", "ROAS",
"Category", "Region", "Customer Tenure", "Customer Recency",
"Total Customer Transactions", "Customer Days Since First Purchase",
"Discount_Applied", "CAC Percent", "Customer Lifetime"`

// Runner answers one natural-language question against the connected
// engine. Implementations return a textual answer or an error description;
// failures never propagate past this boundary as anything but an error value.
type Runner interface {
	Answer(ctx context.Context, question string) (string, error)
}

// Executor runs one read-only query and returns named columns in order.
type Executor interface {
	Select(sqlText string) (columns []string, rows []map[string]interface{}, err error)
}

// Chain is the concrete Runner: the text service writes a single SELECT for
// the question, the guard checks it, the engine runs it, and the rows are
// flattened into a short textual answer.
type Chain struct {
	llm  *llm.Service
	exec Executor
}

func NewChain(llmService *llm.Service, exec Executor) *Chain {
	return &Chain{llm: llmService, exec: exec}
}

const chainSystemPrompt = SchemaDescription + `

You are a PostgreSQL expert. Given a question, respond with ONLY one valid
PostgreSQL SELECT query against the table called main that answers it.
No markdown fences, no explanation, no trailing semicolon.`

const answerRowCap = 20

func (c *Chain) Answer(ctx context.Context, question string) (string, error) {
	raw, err := c.llm.GenerateChat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: chainSystemPrompt},
		{Role: llm.RoleUser, Content: question},
	}, llm.Options{Temperature: 0, MaxTokens: 500})
	if err != nil {
		return "", fmt.Errorf("query generation failed: %w", err)
	}

	sqlText := query.StripLineComments(query.StripFences(raw))
	if err := query.EnsureReadOnly(sqlText); err != nil {
		return "", err
	}

	log.Debug().Str("question", question).Str("sql", sqlText).Msg("🔍 executing chain query")

	columns, rows, err := c.exec.Select(sqlText)
	if err != nil {
		return "", fmt.Errorf("query execution failed: %w", err)
	}

	return formatAnswer(columns, rows), nil
}

func formatAnswer(columns []string, rows []map[string]interface{}) string {
	if len(rows) == 0 {
		return "No matching rows."
	}

	capped := rows
	if len(capped) > answerRowCap {
		capped = capped[:answerRowCap]
	}

	var b strings.Builder
	for _, row := range capped {
		parts := make([]string, 0, len(columns))
		for _, col := range columns {
			parts = append(parts, fmt.Sprintf("%s: %v", col, row[col]))
		}
		b.WriteString(strings.Join(parts, ", "))
		b.WriteString("\n")
	}
	if len(rows) > answerRowCap {
		b.WriteString(fmt.Sprintf("... and %d more rows", len(rows)-answerRowCap))
	}
	return strings.TrimSpace(b.String())
}
