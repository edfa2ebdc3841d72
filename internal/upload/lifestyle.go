package upload

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"github.com/aahaas/go-contract-backend/internal/schema"
)

// ErrMissingParent is returned when an atomic lifestyle upload arrives
// without the main table rows every child row depends on.
var ErrMissingParent = errors.New("tbl_lifestyle rows are required before any child table")

// ErrNothingInserted aborts (and rolls back) an atomic upload when a table
// had rows but not a single one could be inserted. Partial per-row failures
// are tolerated; total failure of a stage means the payload is wrong.
var ErrNothingInserted = errors.New("no rows inserted for table")

// LifestyleResult is the outcome of a lifestyle upload, per table.
type LifestyleResult struct {
	Tables       map[string]*BatchResult `json:"tables"`
	LifestyleIDs []int64                 `json:"lifestyle_ids"`
	RateIDs      []int64                 `json:"rate_ids"`
}

// childKeys describes which generated foreign keys a child table consumes.
// The packages table hangs off a rate, not off the lifestyle row directly.
type childKeys struct {
	needsLifestyle bool
	needsRate      bool
}

var lifestyleChildren = map[string]childKeys{
	schema.TableLifestyleDetail:    {needsLifestyle: true},
	schema.TableLifestyleRates:     {needsLifestyle: true},
	schema.TableLifestylePackages:  {needsRate: true},
	schema.TableLifestyleInventory: {needsLifestyle: true, needsRate: true},
	schema.TableLifestyleTerms:     {needsLifestyle: true},
}

// UploadLifestyleAtomic inserts all six lifestyle tables in dependency order
// inside a single transaction. Generated ids flow forward: tbl_lifestyle
// rows feed a product_index -> lifestyle_id map, tbl_lifestyle_rates rows
// feed a rate_index -> rate_id map, and every child row resolves its foreign
// keys through them (explicit index first, then row position, then the
// "default" key, then the first generated id).
//
// Rows that cannot resolve a required foreign key are skipped and recorded.
// Any table that had rows but inserted none aborts the transaction, rolling
// back everything.
func (o *Orchestrator) UploadLifestyleAtomic(ctx context.Context, tables map[string][]map[string]any) (*LifestyleResult, error) {
	if len(tables[schema.TableLifestyle]) == 0 {
		for table := range lifestyleChildren {
			if len(tables[table]) > 0 {
				return nil, ErrMissingParent
			}
		}
		return nil, fmt.Errorf("no lifestyle rows to upload")
	}

	result := &LifestyleResult{Tables: map[string]*BatchResult{}}

	err := o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lifeIDs := NewIDMap()
		rateIDs := NewIDMap()

		for _, table := range schema.LifestyleUploadOrder {
			rows := tables[table]
			if len(rows) == 0 {
				continue
			}
			spec, _ := schema.Lifestyle(table)
			batch, err := o.uploadLifestyleStage(ctx, tx, spec, rows, lifeIDs, rateIDs)
			if err != nil {
				return err
			}
			result.Tables[table] = batch
			if batch.Inserted == 0 {
				return fmt.Errorf("%w: %s", ErrNothingInserted, table)
			}
			switch table {
			case schema.TableLifestyle:
				result.LifestyleIDs = batch.IDs
			case schema.TableLifestyleRates:
				result.RateIDs = batch.IDs
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.log.Info().
		Int("lifestyles", len(result.LifestyleIDs)).
		Int("rates", len(result.RateIDs)).
		Msg("lifestyle upload committed")
	return result, nil
}

// uploadLifestyleStage inserts one table's rows within the transaction,
// resolving and recording foreign keys as it goes.
func (o *Orchestrator) uploadLifestyleStage(ctx context.Context, tx *gorm.DB, spec schema.TableSpec, rows []map[string]any, lifeIDs, rateIDs *IDMap) (*BatchResult, error) {
	batch := &BatchResult{Table: spec.Name, Total: len(rows)}
	now := nowUTC()

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return batch, err
		}

		productIndex := asString(row["product_index"])
		rateIndex := asString(row["rate_index"])
		position := strconv.Itoa(i)

		if keys, isChild := lifestyleChildren[spec.Name]; isChild {
			if keys.needsLifestyle && !hasValue(row, "lifestyle_id") {
				id, ok := lifeIDs.Resolve(productIndex, position)
				if !ok {
					batch.recordError(i, fmt.Errorf("no lifestyle_id resolvable for row %d", i))
					continue
				}
				row["lifestyle_id"] = id
			}
			if keys.needsRate && !hasValue(row, "rate_id") {
				id, ok := rateIDs.Resolve(rateIndex, position)
				if !ok {
					batch.recordError(i, fmt.Errorf("no rate_id resolvable for row %d", i))
					continue
				}
				row["rate_id"] = id
			}
		}

		id, err := insertRow(ctx, tx, spec, row, now)
		if err != nil {
			batch.recordError(i, err)
			continue
		}
		batch.Inserted++
		batch.IDs = append(batch.IDs, id)

		switch spec.Name {
		case schema.TableLifestyle:
			lifeIDs.Put(productIndex, id)
			lifeIDs.Put(position, id)
		case schema.TableLifestyleRates:
			rateIDs.Put(rateIndex, id)
			rateIDs.Put(position, id)
		}
	}
	return batch, nil
}

// UploadLifestyleTable inserts one lifestyle table outside any transaction,
// for the resumable step-by-step flow. Foreign keys embedded in rows win;
// the out-of-band lifestyleID/rateID fill the gaps. Child rows that end up
// with neither are skipped and recorded.
func (o *Orchestrator) UploadLifestyleTable(ctx context.Context, table string, rows []map[string]any, lifestyleID, rateID int64) (*BatchResult, error) {
	spec, ok := schema.Lifestyle(table)
	if !ok {
		return nil, fmt.Errorf("unknown lifestyle table %q", table)
	}

	batch := &BatchResult{Table: table, Total: len(rows)}
	now := nowUTC()
	keys, isChild := lifestyleChildren[table]

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return batch, err
		}

		if isChild {
			if keys.needsLifestyle && !hasValue(row, "lifestyle_id") {
				if lifestyleID <= 0 {
					batch.recordError(i, fmt.Errorf("row %d has no lifestyle_id and none was provided", i))
					continue
				}
				row["lifestyle_id"] = lifestyleID
			}
			if keys.needsRate && !hasValue(row, "rate_id") {
				if rateID <= 0 {
					batch.recordError(i, fmt.Errorf("row %d has no rate_id and none was provided", i))
					continue
				}
				row["rate_id"] = rateID
			}
		}

		id, err := insertRow(ctx, o.db, spec, row, now)
		if err != nil {
			batch.recordError(i, err)
			continue
		}
		batch.Inserted++
		batch.IDs = append(batch.IDs, id)
	}

	o.log.Info().
		Str("table", table).
		Int("total", batch.Total).
		Int("inserted", batch.Inserted).
		Int("skipped", batch.Skipped).
		Msg("lifestyle table uploaded")
	return batch, nil
}

// hasValue reports whether the row carries a non-empty value for col.
func hasValue(row map[string]any, col string) bool {
	v, ok := row[col]
	if !ok {
		return false
	}
	return asString(v) != ""
}
