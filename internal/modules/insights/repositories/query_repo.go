package repositories

import (
	"database/sql"
	"fmt"
)

// QueryRepo runs raw read-only queries and preserves column order, which
// GORM map scanning does not. Generated chart queries are positional: the
// first column is the label, the second the numeric value.
type QueryRepo interface {
	Select(sqlText string) (columns []string, rows []map[string]interface{}, err error)
}

type queryRepo struct {
	db *sql.DB
}

func NewQueryRepo(db *sql.DB) QueryRepo {
	return &queryRepo{db: db}
}

func (r *queryRepo) Select(sqlText string) ([]string, []map[string]interface{}, error) {
	result, err := r.db.Query(sqlText)
	if err != nil {
		return nil, nil, fmt.Errorf("query failed: %w", err)
	}
	defer result.Close()

	columns, err := result.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var rows []map[string]interface{}
	for result.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := result.Scan(pointers...); err != nil {
			return nil, nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		rows = append(rows, row)
	}

	if err := result.Err(); err != nil {
		return nil, nil, fmt.Errorf("row iteration failed: %w", err)
	}

	return columns, rows, nil
}
