package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/datalens-ai/conversational-analytics-be/internal/core/analytics"
	"github.com/datalens-ai/conversational-analytics-be/internal/core/llm"
	"github.com/datalens-ai/conversational-analytics-be/internal/core/nlq"
	"github.com/datalens-ai/conversational-analytics-be/internal/core/query"
	"github.com/datalens-ai/conversational-analytics-be/internal/core/record"
	"github.com/datalens-ai/conversational-analytics-be/internal/modules/insights/repositories"
	"github.com/datalens-ai/conversational-analytics-be/internal/shared/sanitize"
)

// GraphService asks the text service for a small batch of declarative chart
// specs, sandboxes and executes each one independently, and shapes the rows
// into chart-ready records.
type GraphService struct {
	llm      *llm.Service
	queries  repositories.QueryRepo
	history  repositories.HistoryRepo
	recorder *record.Recorder
}

func NewGraphService(llmService *llm.Service, queries repositories.QueryRepo, history repositories.HistoryRepo, recorder *record.Recorder) *GraphService {
	return &GraphService{
		llm:      llmService,
		queries:  queries,
		history:  history,
		recorder: recorder,
	}
}

// GraphResult is the request-level outcome: all per-chart outcomes in spec
// order plus the flattened trace that was persisted.
type GraphResult struct {
	Charts        []analytics.ChartResult
	QuestionsText string
	Timestamp     string
}

const graphSystemPrompt = `You are a data analyst and PostgreSQL expert.

` + nlq.SchemaDescription + `

Given a business question, respond with ONLY a JSON array (no markdown, no explanation) of up to 4 chart objects.
Each object must have exactly these keys:
- "title": short chart title string
- "chart_type": one of: line, bar, pie
- "sql": a valid PostgreSQL SELECT query against the table called main

SQL rules:
- Always double-quote column names: "Revenue", "Category", etc.
- Select exactly 2 columns: first is x-axis (label/group), second is y-axis (numeric value)
- Always use GROUP BY and aggregation (SUM, AVG, COUNT)
- For dates use: TO_CHAR("Transaction_Date", 'YYYY-MM') AS month
- LIMIT results to 15 rows max
- Do NOT use aliases that shadow column names
- The table name is: main (no quotes needed around table name)

Example output:
[
  {
    "title": "Monthly Revenue",
    "chart_type": "line",
    "sql": "SELECT TO_CHAR(\"Transaction_Date\", 'YYYY-MM') AS month, SUM(\"Revenue\") AS total_revenue FROM main GROUP BY month ORDER BY month ASC LIMIT 15"
  },
  {
    "title": "Revenue by Category",
    "chart_type": "bar",
    "sql": "SELECT \"Category\", SUM(\"Revenue\") AS total_revenue FROM main GROUP BY \"Category\" ORDER BY total_revenue DESC LIMIT 10"
  }
]

Respond with ONLY the JSON array. No markdown fences, no explanation.`

const (
	rawExcerptCap = 500
	sqlErrorCap   = 300
	digestWindow  = 5
)

func (s *GraphService) Generate(ctx context.Context, userMessage string) (*GraphResult, error) {
	userMessage = strings.TrimSpace(userMessage)
	if userMessage == "" {
		return nil, ErrEmptyMessage
	}

	raw, err := s.llm.GenerateChat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: graphSystemPrompt},
		{Role: llm.RoleUser, Content: userMessage},
	}, llm.Options{Temperature: 0.2, MaxTokens: 1500})
	if err != nil {
		return nil, fmt.Errorf("chart spec generation failed: %w", err)
	}

	raw = query.StripFences(strings.TrimSpace(raw))

	var specs []analytics.ChartSpec
	if err := json.Unmarshal([]byte(raw), &specs); err != nil {
		return nil, &GenerationError{
			Reason: err.Error(),
			Raw:    truncateText(raw, rawExcerptCap),
		}
	}

	log.Info().Int("specs", len(specs)).Msg("✅ chart specs parsed")

	// Charts are executed one by one; a bad spec marks its own entry and
	// never aborts the siblings.
	charts := make([]analytics.ChartResult, 0, len(specs))
	for _, spec := range specs {
		charts = append(charts, s.executeSpec(spec))
	}

	trace := flattenSpecs(specs)
	s.recorder.Enqueue("graph trace", func() error {
		return s.history.AppendGraphTrace(userMessage, trace)
	})
	digest := buildDigest(trace)
	s.recorder.Enqueue("graph digest", func() error {
		return s.history.AppendGraphDigest(userMessage, digest)
	})

	return &GraphResult{
		Charts:        charts,
		QuestionsText: trace,
		Timestamp:     time.Now().Format(time.RFC3339),
	}, nil
}

func (s *GraphService) executeSpec(spec analytics.ChartSpec) analytics.ChartResult {
	title := spec.Title
	if title == "" {
		title = "Chart"
	}

	sqlText := strings.TrimSpace(spec.SQL)
	if sqlText == "" {
		return analytics.ErrorChart(title, "no SQL provided")
	}

	sqlText = query.StripLineComments(sqlText)
	if err := query.EnsureReadOnly(sqlText); err != nil {
		return analytics.ErrorChart(title, err.Error())
	}

	log.Info().Str("title", title).Str("sql", truncateText(sqlText, 150)).Msg("🔍 executing chart query")

	columns, rows, err := s.queries.Select(sqlText)
	if err != nil {
		return analytics.ErrorChart(title, truncateText(err.Error(), sqlErrorCap))
	}
	if len(rows) == 0 {
		return analytics.ErrorChart(title, "query returned no data")
	}
	if len(columns) < 2 {
		return analytics.ErrorChart(title, fmt.Sprintf("query returned only %d column(s), need 2", len(columns)))
	}

	xKey, yKey := columns[0], columns[1]
	rows = analytics.CoerceNumeric(rows, yKey)
	rows = sanitize.Records(rows)

	return analytics.ChartResult{
		Title:     title,
		ChartType: analytics.NormalizeChartType(spec.ChartType),
		Data:      rows,
		XKey:      xKey,
		YKey:      yKey,
	}
}

// flattenSpecs is the only persisted form of the generated specs: one
// "Title (type)" line per spec.
func flattenSpecs(specs []analytics.ChartSpec) string {
	lines := make([]string, len(specs))
	for i, spec := range specs {
		chartType := spec.ChartType
		if chartType == "" {
			chartType = "bar"
		}
		lines[i] = fmt.Sprintf("%s (%s)", spec.Title, chartType)
	}
	return strings.Join(lines, "\n")
}

const digestDisclaimer = "⚠️ DISCLAIMER: Generated visualization sub-questions. Use with caution.\n\n"

// buildDigest caps the trace to its last entries and numbers them behind a
// disclaimer line.
func buildDigest(trace string) string {
	var entries []string
	for _, line := range strings.Split(trace, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && strings.Contains(line, "(") {
			entries = append(entries, line)
		}
	}
	if len(entries) > digestWindow {
		entries = entries[len(entries)-digestWindow:]
	}

	var b strings.Builder
	b.WriteString(digestDisclaimer)
	for i, entry := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d. %s", i+1, entry)
	}
	return b.String()
}
