package analytics

// ChartSpec is one declarative chart description produced by the text
// service: a title, a requested chart type and the query that feeds it.
// Specs are generated per request and never persisted as structured data.
type ChartSpec struct {
	Title     string `json:"title"`
	ChartType string `json:"chart_type"`
	SQL       string `json:"sql"`
}

// ChartResult is the executed form of a spec: either chart-ready records
// with an ordered label/value column pair, or a per-chart error. One bad
// spec never aborts its siblings.
type ChartResult struct {
	Title     string                   `json:"title"`
	ChartType string                   `json:"chart_type"`
	Data      []map[string]interface{} `json:"data,omitempty"`
	XKey      string                   `json:"xKey,omitempty"`
	YKey      string                   `json:"yKey,omitempty"`
	Error     string                   `json:"error,omitempty"`
}

// ErrorChart marks a failed spec in the result list.
func ErrorChart(title, msg string) ChartResult {
	return ChartResult{
		Title:     title,
		ChartType: "error",
		Error:     msg,
	}
}
