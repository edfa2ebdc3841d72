package upload

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/aahaas/go-contract-backend/internal/schema"
)

// maxRowErrors caps how many per-row failures a batch result retains. The
// count of failures is always accurate; only the messages are truncated.
const maxRowErrors = 5

// RowError describes one failed or skipped row, 0-based within the batch.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// BatchResult summarizes one table's insert batch.
type BatchResult struct {
	Table    string     `json:"table"`
	Total    int        `json:"total"`
	Inserted int        `json:"inserted"`
	Skipped  int        `json:"skipped"`
	IDs      []int64    `json:"ids"`
	Errors   []RowError `json:"errors,omitempty"`
}

func (b *BatchResult) recordError(row int, err error) {
	b.Skipped++
	if len(b.Errors) < maxRowErrors {
		b.Errors = append(b.Errors, RowError{Row: row, Message: err.Error()})
	}
}

// InsertRows sanitizes and inserts every row into the spec's table,
// capturing the generated id of each successful insert. A failing row is
// recorded and skipped; the batch keeps going. The returned error covers
// batch-level failures only (no usable connection, context cancelled).
func InsertRows(ctx context.Context, db *gorm.DB, spec schema.TableSpec, rows []map[string]any) (*BatchResult, error) {
	result := &BatchResult{Table: spec.Name, Total: len(rows)}
	now := nowUTC()
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		id, err := insertRow(ctx, db, spec, row, now)
		if err != nil {
			result.recordError(i, err)
			continue
		}
		result.Inserted++
		result.IDs = append(result.IDs, id)
	}
	return result, nil
}

// insertRow sanitizes one row and executes a dynamic INSERT, returning the
// generated auto-increment id.
//
// The statement goes through GORM's ConnPool rather than a typed model
// because staged rows are map-shaped and column-flexible; the pool hands
// back the driver's sql.Result, which carries LastInsertId on both MySQL
// and SQLite.
func insertRow(ctx context.Context, db *gorm.DB, spec schema.TableSpec, row map[string]any, now time.Time) (int64, error) {
	clean := SanitizeRow(spec, row, now)
	if len(clean) == 0 {
		return 0, fmt.Errorf("row has no insertable columns")
	}

	cols := orderedColumns(spec, clean)
	placeholders := make([]byte, 0, 2*len(cols))
	args := make([]any, 0, len(cols))
	var colList []byte
	for i, col := range cols {
		if i > 0 {
			colList = append(colList, ',')
			placeholders = append(placeholders, ',')
		}
		colList = append(colList, '`')
		colList = append(colList, col...)
		colList = append(colList, '`')
		placeholders = append(placeholders, '?')
		args = append(args, clean[col])
	}

	query := fmt.Sprintf("INSERT INTO `%s` (%s) VALUES (%s)", spec.Name, colList, placeholders)
	res, err := connPool(db).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read generated id: %w", err)
	}
	return id, nil
}

// orderedColumns returns the row's columns in the spec's canonical order for
// fixed-schema tables, or sorted for column-flexible ones. Either way the
// order is deterministic for a given row.
func orderedColumns(spec schema.TableSpec, row map[string]any) []string {
	if len(spec.Columns) > 0 {
		cols := make([]string, 0, len(row))
		for _, c := range spec.Columns {
			if _, ok := row[c]; ok {
				cols = append(cols, c)
			}
		}
		return cols
	}
	cols := make([]string, 0, len(row))
	for c := range row {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

func nowUTC() time.Time { return time.Now().UTC() }

// connPool returns the executor for db: the transaction's connection when db
// is a transaction handle, the base pool otherwise.
func connPool(db *gorm.DB) gorm.ConnPool {
	if db.Statement != nil && db.Statement.ConnPool != nil {
		return db.Statement.ConnPool
	}
	return db.Config.ConnPool
}
