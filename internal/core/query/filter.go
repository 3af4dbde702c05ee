package query

import (
	"fmt"
	"strconv"
	"strings"
)

// Filters carries the dashboard filter state. Empty slices and zero bounds
// impose no restriction. A min greater than its max is accepted as-is; the
// engine simply returns no rows.
type Filters struct {
	Regions         []string
	Categories      []string
	CustomerTenure  []string
	CustomerRecency []string
	TransactionsMin float64
	TransactionsMax float64
	DiscountMin     float64
	DiscountMax     float64
	TimeFilter      string // all, 1m, 3m, 6m, 1y
}

var timeIntervals = map[string]string{
	"1m": "1 month",
	"3m": "3 months",
	"6m": "6 months",
	"1y": "1 year",
}

// WhereClause compiles the filter state into a WHERE fragment for the wide
// transactions table. Membership values are escaped by doubling embedded
// single quotes before interpolation; numeric and enum filters never carry
// raw user strings. Zero conditions compile to the empty string.
func (f Filters) WhereClause(referenceDate string) string {
	var conditions []string

	if clause := inClause("Region", f.Regions); clause != "" {
		conditions = append(conditions, clause)
	}
	if clause := inClause("Category", f.Categories); clause != "" {
		conditions = append(conditions, clause)
	}
	if clause := inClause("Customer Tenure", f.CustomerTenure); clause != "" {
		conditions = append(conditions, clause)
	}
	if clause := inClause("Customer Recency", f.CustomerRecency); clause != "" {
		conditions = append(conditions, clause)
	}

	// A zero minimum is not a meaningful constraint for transaction counts.
	if f.TransactionsMin > 0 {
		conditions = append(conditions, fmt.Sprintf(`"Total Customer Transactions" >= %d`, int(f.TransactionsMin)))
	}
	if f.TransactionsMax > 0 {
		conditions = append(conditions, fmt.Sprintf(`"Total Customer Transactions" <= %d`, int(f.TransactionsMax)))
	}
	if f.DiscountMin > 0 {
		conditions = append(conditions, fmt.Sprintf(`"Discount_Applied" >= %s`, formatFloat(f.DiscountMin)))
	}
	if f.DiscountMax > 0 {
		conditions = append(conditions, fmt.Sprintf(`"Discount_Applied" <= %s`, formatFloat(f.DiscountMax)))
	}

	if interval, ok := timeIntervals[f.TimeFilter]; ok {
		conditions = append(conditions, fmt.Sprintf(
			`CAST("Transaction_Date" AS TIMESTAMP) >= '%s'::timestamp - INTERVAL '%s'`,
			referenceDate, interval))
	}

	if len(conditions) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(conditions, " AND ")
}

func inClause(column string, values []string) string {
	if len(values) == 0 {
		return ""
	}
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = strings.ReplaceAll(v, "'", "''")
	}
	return fmt.Sprintf(`"%s" IN ('%s')`, column, strings.Join(escaped, "', '"))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
