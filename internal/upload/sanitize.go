// Package upload moves reviewed spreadsheet rows into the database. It owns
// the column sanitation rules, the dynamic insert path that captures
// generated auto-increment ids, and the two orchestrators: the sequential
// hotel pipeline with watermark-based inventory generation, and the
// lifestyle pipeline in atomic and resumable flavors.
package upload

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aahaas/go-contract-backend/internal/expand"
	"github.com/aahaas/go-contract-backend/internal/schema"
)

// timestampLayout is the MySQL DATETIME text form used when filling empty
// created_at/updated_at cells.
const timestampLayout = "2006-01-02 15:04:05"

// SanitizeRow applies the table's coercion rules to one staged row and
// returns the insert-ready version:
//
//   - dropped columns (auto-increment ids, soft-delete markers, staging
//     helpers) are removed
//   - unknown columns are removed for tables with a fixed column set
//   - integer columns parse or become nil (SQL NULL)
//   - decimal columns parse after junk-stripping or become nil
//   - empty NOT NULL columns take their declared default
//   - empty created_at/updated_at cells take now
//
// Sanitizing an already-sanitized row is a no-op, which keeps the resumable
// upload path safe to retry.
func SanitizeRow(spec schema.TableSpec, row map[string]any, now time.Time) map[string]any {
	out := make(map[string]any, len(row))
	for col, v := range row {
		if spec.Dropped(col) {
			continue
		}
		if len(spec.Columns) > 0 && !columnAllowed(spec, col) {
			continue
		}

		switch {
		case spec.IsInteger(col):
			out[col] = intOrNull(v)
		case spec.IsDecimal(col):
			out[col] = decimalOrNull(v)
		default:
			s := asString(v)
			if s == "" {
				if def, ok := spec.NotNullDefaults[col]; ok {
					out[col] = def
					continue
				}
				if col == "created_at" || col == "updated_at" {
					out[col] = now.Format(timestampLayout)
					continue
				}
			}
			out[col] = s
		}
	}
	return out
}

func columnAllowed(spec schema.TableSpec, col string) bool {
	for _, c := range spec.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// intOrNull coerces v to an int64 or nil.
func intOrNull(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case int:
		return int64(t)
	case int64:
		return t
	case float64:
		return int64(t)
	}
	s := strings.TrimSpace(asString(v))
	if s == "" {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return nil
}

// decimalOrNull coerces v to a float64 or nil, stripping currency symbols
// and other junk the way the expansion engine does.
func decimalOrNull(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	}
	s := asString(v)
	if strings.TrimSpace(s) == "" {
		return nil
	}
	// Sentinel default far from any plausible rate, to detect parse failure.
	const miss = -1.0e308
	if f := expand.Money(s, miss); f != miss {
		return f
	}
	return nil
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprint(t)
	}
}
