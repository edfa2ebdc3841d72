package expand

// Row conversion to the map shape the staging writer and the dynamic insert
// path consume. Keys are the destination column names from the schema
// package; relational ids that only exist after upload (rate_id,
// room_category_id as a database key) are left for the upload stage to fill.

// Row renders the expanded rate as a staged row. The room_category_id and
// room_type_id columns carry the names at this stage; the upload stage
// rewrites them to database ids once the parent tables exist.
func (r ExpandedRate) Row() map[string]any {
	return map[string]any{
		"market_nationality":            r.MarketNationality,
		"currency":                      r.Currency,
		"adult_rate":                    r.AdultRate,
		"child_with_bed_rate":           r.ChildWithBedRate,
		"child_without_bed_rate":        r.ChildWithoutBedRate,
		"actual_adult_rate":             r.ActualAdultRate,
		"actual_child_with_bed_rate":    r.ActualChildWithBedRate,
		"actual_child_without_bed_rate": r.ActualChildWithoutBedRate,
		"child_foc_age":                 r.ChildFOCAge,
		"child_with_no_bed_age":         r.ChildWithNoBedAge,
		"child_with_bed_age":            r.ChildWithBedAge,
		"adult_age":                     r.AdultAge,
		"book_by_days":                  r.BookByDays,
		"meal_plan":                     r.MealPlan,
		"room_category_id":              r.RoomCategory,
		"room_type_id":                  r.RoomType,
		"booking_start_date":            r.BookingStartDate,
		"booking_end_date":              r.BookingEndDate,
		"payment_type":                  r.PaymentType,
		"blackout_dates":                r.BlackoutDates,
		"blackout_days":                 r.BlackoutDays,
		"card_id":                       r.CardID,
		"min_adult_occupancy":           r.MinAdultOccupancy,
		"max_adult_occupancy":           r.MaxAdultOccupancy,
		"min_child_occupancy":           r.MinChildOccupancy,
		"max_child_occupancy":           r.MaxChildOccupancy,
		"total_occupancy":               r.TotalOccupancy,
	}
}

// Row renders the inventory skeleton as a staged row. rate_id is omitted;
// the upload stage pairs skeletons with freshly inserted rates.
func (i InventorySkeleton) Row() map[string]any {
	row := map[string]any{
		"booking_start_date": i.BookingStartDate,
		"booking_end_date":   i.BookingEndDate,
		"allotment":          i.Allotment,
	}
	if i.StopSaleDate != "" {
		row["stop_sale_date"] = i.StopSaleDate
	}
	return row
}

// Row renders the daily availability row as a staged row for the given
// hotel. The room_category_id column carries the category name; the daily
// table is keyed by name rather than by category id.
func (d DailyRow) Row(hotelID int64) map[string]any {
	return map[string]any{
		"hotel_id":         hotelID,
		"inventory_id":     0,
		"room_category_id": d.RoomCategory,
		"date":             d.Date,
		"daily_allotment":  d.DailyAllotment,
		"used":             d.Used,
		"balance":          d.Balance,
	}
}
