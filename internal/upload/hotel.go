package upload

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/aahaas/go-contract-backend/internal/domain"
	"github.com/aahaas/go-contract-backend/internal/expand"
	"github.com/aahaas/go-contract-backend/internal/repo"
	"github.com/aahaas/go-contract-backend/internal/schema"
)

// Orchestrator runs the multi-table upload pipelines against one database.
type Orchestrator struct {
	db  *gorm.DB
	log zerolog.Logger
}

// NewOrchestrator constructs an Orchestrator.
func NewOrchestrator(db *gorm.DB, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{db: db, log: log}
}

// UploadHotelTable inserts reviewed rows into one hotel table. When hotelID
// is positive, every row's hotel_id is overwritten with it; zero leaves the
// staged values alone (the hotels table itself has no hotel_id column).
func (o *Orchestrator) UploadHotelTable(ctx context.Context, table string, rows []map[string]any, hotelID int64) (*BatchResult, error) {
	spec, ok := schema.Hotel(table)
	if !ok {
		return nil, fmt.Errorf("unknown hotel table %q", table)
	}

	if hotelID > 0 && table != schema.TableHotels {
		for _, row := range rows {
			row["hotel_id"] = hotelID
		}
	}

	result, err := InsertRows(ctx, o.db, spec, rows)
	if err != nil {
		return result, err
	}
	o.log.Info().
		Str("table", table).
		Int("total", result.Total).
		Int("inserted", result.Inserted).
		Int("skipped", result.Skipped).
		Msg("hotel table uploaded")
	return result, nil
}

// RatesResult is the outcome of the combined rates + inventories upload.
type RatesResult struct {
	Rates       *BatchResult `json:"rates"`
	Inventories *BatchResult `json:"inventories"`
	Daily       *BatchResult `json:"daily_inventories"`
	Watermark   int64        `json:"-"`
	FreshRates  int          `json:"fresh_rates"`
	// Warning is set when the insert count and the fresh-rate scan
	// disagree; inventories cover only the rows read back.
	Warning string `json:"warning,omitempty"`
}

// UploadRatesAndInventories inserts the reviewed rate rows for a hotel and
// generates their dependent inventories. The sequence is the pipeline's
// core invariant:
//
//  1. capture the rates table's max id (the watermark)
//  2. rewrite staged category/room-type names to the hotel's db ids and
//     insert the rate rows
//  3. read back ONLY rows above the watermark belonging to this hotel
//  4. generate one rate-level inventory row per fresh rate, carrying its
//     generated id
//  5. generate per-day availability rows per distinct (category, period)
//
// Step 3 is what keeps concurrent uploads for other hotels out of this
// hotel's inventory generation.
func (o *Orchestrator) UploadRatesAndInventories(ctx context.Context, hotelID int64, rateRows []map[string]any) (*RatesResult, error) {
	if hotelID <= 0 {
		return nil, fmt.Errorf("hotel id is required for rates upload")
	}

	catIDs, err := repo.CategoryIDsByName(ctx, o.db, hotelID)
	if err != nil {
		return nil, fmt.Errorf("load category ids: %w", err)
	}
	typeIDs, err := repo.RoomTypeIDsByName(ctx, o.db, hotelID)
	if err != nil {
		return nil, fmt.Errorf("load room type ids: %w", err)
	}

	ratesSpec, _ := schema.Hotel(schema.TableRoomRates)
	watermark, err := repo.MaxID(ctx, o.db, ratesSpec.Name)
	if err != nil {
		return nil, fmt.Errorf("read rates watermark: %w", err)
	}

	for _, row := range rateRows {
		row["hotel_id"] = hotelID
		rewriteName(row, "room_category_id", catIDs)
		rewriteName(row, "room_type_id", typeIDs)
	}

	result := &RatesResult{Watermark: watermark}
	result.Rates, err = InsertRows(ctx, o.db, ratesSpec, rateRows)
	if err != nil {
		return result, err
	}

	fresh, err := repo.NewRatesSince(ctx, o.db, hotelID, watermark)
	if err != nil {
		return result, fmt.Errorf("read fresh rates: %w", err)
	}
	result.FreshRates = len(fresh)

	// Inventories key on fresh rate ids; without any there is nothing to
	// generate and the upload must say so rather than report success.
	if len(fresh) == 0 {
		return result, fmt.Errorf("%w: no rates above watermark %d for hotel %d", ErrNothingInserted, watermark, hotelID)
	}
	if result.Warning = freshCountWarning(result.Rates.Inserted, len(fresh), watermark); result.Warning != "" {
		o.log.Warn().
			Int64("hotel_id", hotelID).
			Int64("watermark", watermark).
			Int("inserted", result.Rates.Inserted).
			Int("fresh", len(fresh)).
			Msg("rate insert count does not match fresh-rate scan")
	}

	invSpec, _ := schema.Hotel(schema.TableRoomInventories)
	invRows := make([]map[string]any, 0, len(fresh))
	for _, r := range fresh {
		invRows = append(invRows, map[string]any{
			"rate_id":            r.ID,
			"booking_start_date": r.BookingStartDate,
			"booking_end_date":   r.BookingEndDate,
			"allotment":          expand.DefaultAllotment,
		})
	}
	result.Inventories, err = InsertRows(ctx, o.db, invSpec, invRows)
	if err != nil {
		return result, err
	}

	dailySpec, _ := schema.Hotel(schema.TableDailyInventories)
	result.Daily, err = InsertRows(ctx, o.db, dailySpec, dailyRows(fresh, hotelID, catIDs))
	if err != nil {
		return result, err
	}

	o.log.Info().
		Int64("hotel_id", hotelID).
		Int64("watermark", watermark).
		Int("fresh_rates", result.FreshRates).
		Int("inventories", result.Inventories.Inserted).
		Int("daily", result.Daily.Inserted).
		Msg("rates and inventories uploaded")
	return result, nil
}

// freshCountWarning describes a disagreement between the insert count and
// the watermark scan, or returns "" when they match. A mismatch means some
// inserted rows fell outside the scan (or rows from elsewhere fell in) and
// inventories cover only what the scan returned.
func freshCountWarning(inserted, fresh int, watermark int64) string {
	if inserted == fresh {
		return ""
	}
	return fmt.Sprintf("inserted %d rate rows but found %d above watermark %d; inventories cover the rows read back",
		inserted, fresh, watermark)
}

// rewriteName replaces a name-valued cell with the matching database id.
// Unmatched names stay as they are; the database column is loose enough to
// hold them and the operator can fix the sheet and retry.
func rewriteName(row map[string]any, col string, ids map[string]int64) {
	name, ok := row[col].(string)
	if !ok || name == "" {
		return
	}
	if id, ok := ids[name]; ok {
		row[col] = strconv.FormatInt(id, 10)
	}
}

// dailyRows derives the per-day availability rows from the fresh rates,
// per distinct (category, period) pair. Rate rows store the category id
// after rewriting, so the id is translated back to the display name the
// daily table keeps.
func dailyRows(fresh []domain.RoomRate, hotelID int64, catIDs map[string]int64) []map[string]any {
	names := make(map[string]string, len(catIDs))
	for name, id := range catIDs {
		names[strconv.FormatInt(id, 10)] = name
	}

	samples := make([]expand.ExpandedRate, 0, len(fresh))
	for _, r := range fresh {
		category := r.RoomCategoryID
		if name, ok := names[category]; ok {
			category = name
		}
		samples = append(samples, expand.ExpandedRate{
			RoomCategory:     category,
			BookingStartDate: r.BookingStartDate,
			BookingEndDate:   r.BookingEndDate,
		})
	}

	daily := expand.DailyInventories(samples)
	rows := make([]map[string]any, 0, len(daily))
	for _, d := range daily {
		rows = append(rows, d.Row(hotelID))
	}
	return rows
}
