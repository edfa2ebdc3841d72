package expand

import (
	"reflect"
	"testing"
)

func sampleContract() []RateSample {
	return []RateSample{
		{
			RoomCategory:     "Deluxe",
			BookingStartDate: "2026-01-01",
			BookingEndDate:   "2026-04-30",
			MealPlan:         "HB",
			AdultRate:        "250 USD",
			Currency:         "USD",
		},
		{
			RoomCategory:     "Deluxe",
			BookingStartDate: "2026-05-01",
			BookingEndDate:   "2026-10-31",
			MealPlan:         "HB",
			AdultRate:        "310",
		},
	}
}

func TestExpandCrossProductAndCardIDs(t *testing.T) {
	categories := []string{"Standard", "Deluxe", "Suite"}
	rates, inventories, report := Expand(sampleContract(), categories)

	// 2 periods x 1 meal plan x 3 categories x 2 default room types.
	if len(rates) != 12 {
		t.Fatalf("got %d rates, want 12", len(rates))
	}
	if len(inventories) != len(rates) {
		t.Fatalf("got %d inventories for %d rates", len(inventories), len(rates))
	}
	if report.Rates != 12 || report.Periods != 2 || report.Categories != 3 {
		t.Fatalf("unexpected report: %+v", report)
	}

	// Card ids start at 100 and are shared by the room-type variants of the
	// same (period, category) pair.
	counts := map[int]int{}
	for _, r := range rates {
		counts[r.CardID]++
	}
	for id := 100; id <= 105; id++ {
		if counts[id] != 2 {
			t.Errorf("card id %d used %d times, want 2", id, counts[id])
		}
	}
	if len(counts) != 6 {
		t.Errorf("got %d distinct card ids, want 6", len(counts))
	}

	// Periods come out sorted by start date.
	if rates[0].BookingStartDate != "2026-01-01" {
		t.Errorf("first period start = %s, want 2026-01-01", rates[0].BookingStartDate)
	}
	last := rates[len(rates)-1]
	if last.BookingStartDate != "2026-05-01" {
		t.Errorf("last period start = %s, want 2026-05-01", last.BookingStartDate)
	}
}

func TestExpandIsDeterministic(t *testing.T) {
	categories := []string{"Standard", "Deluxe"}
	a, ainv, _ := Expand(sampleContract(), categories)
	b, binv, _ := Expand(sampleContract(), categories)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("two expansions of identical input differ")
	}
	if !reflect.DeepEqual(ainv, binv) {
		t.Fatal("two inventory derivations of identical input differ")
	}
}

func TestExpandEmptyInput(t *testing.T) {
	rates, inventories, report := Expand(nil, nil)
	if rates != nil || inventories != nil {
		t.Fatalf("empty input produced %d rates, %d inventories", len(rates), len(inventories))
	}
	if report.Rates != 0 {
		t.Fatalf("report claims %d rates for empty input", report.Rates)
	}
}

func TestExpandCoercesRates(t *testing.T) {
	rates, _, _ := Expand(sampleContract(), []string{"Deluxe"})
	if len(rates) == 0 {
		t.Fatal("no rates produced")
	}
	first := rates[0]
	if first.AdultRate != 250 {
		t.Errorf("adult rate = %v, want 250 (parsed from \"250 USD\")", first.AdultRate)
	}
	// Actual rates fall back to the base rate when absent.
	if first.ActualAdultRate != 250 {
		t.Errorf("actual adult rate = %v, want fallback 250", first.ActualAdultRate)
	}
	// Unstated child rates take the business defaults.
	if first.ChildWithBedRate != 80 || first.ChildWithoutBedRate != 40 {
		t.Errorf("child rates = %v/%v, want defaults 80/40", first.ChildWithBedRate, first.ChildWithoutBedRate)
	}
}

func TestExpandDefaultsForUnmatchedCells(t *testing.T) {
	rates, _, _ := Expand(sampleContract(), []string{"Suite"})
	if len(rates) != 4 {
		t.Fatalf("got %d rates, want 4", len(rates))
	}
	for _, r := range rates {
		// No sample mentions Suite, so the lookup exhausts at the zero
		// sample and every field takes its business default.
		if r.Currency != "USD" {
			t.Errorf("currency = %q, want USD", r.Currency)
		}
		if r.MarketNationality != "All" {
			t.Errorf("market = %q, want All", r.MarketNationality)
		}
		if r.PaymentType != "Advance" {
			t.Errorf("payment type = %q, want Advance", r.PaymentType)
		}
		if r.MinAdultOccupancy != 1 || r.MaxAdultOccupancy != 2 || r.TotalOccupancy != 3 {
			t.Errorf("occupancies = %d/%d/%d, want 1/2/3",
				r.MinAdultOccupancy, r.MaxAdultOccupancy, r.TotalOccupancy)
		}
	}
}

func TestExpandMealPlanSplitting(t *testing.T) {
	samples := []RateSample{{
		RoomCategory:     "Standard",
		BookingStartDate: "01.01.26",
		BookingEndDate:   "30.04.26",
		MealPlan:         "bb, HB ,bb",
	}}
	rates, _, report := Expand(samples, nil)
	if report.MealPlans != 2 {
		t.Fatalf("got %d meal plans, want 2 (BB, HB)", report.MealPlans)
	}
	plans := map[string]bool{}
	for _, r := range rates {
		plans[r.MealPlan] = true
	}
	if !plans["BB"] || !plans["HB"] {
		t.Fatalf("plans seen: %v, want BB and HB", plans)
	}
	// Dotted two-digit-year dates normalize canonically.
	if rates[0].BookingStartDate != "2026-01-01" {
		t.Errorf("start date = %s, want 2026-01-01", rates[0].BookingStartDate)
	}
}

func TestExpandDropsUnparseablePeriods(t *testing.T) {
	samples := []RateSample{
		{RoomCategory: "Standard", BookingStartDate: "2026-01-01", BookingEndDate: "2026-06-30"},
		{RoomCategory: "Standard", BookingStartDate: "summer", BookingEndDate: "autumn"},
	}
	_, _, report := Expand(samples, nil)
	if report.Periods != 1 {
		t.Fatalf("got %d periods, want 1", report.Periods)
	}
	if len(report.DroppedPeriods) != 1 {
		t.Fatalf("got %d dropped periods, want 1", len(report.DroppedPeriods))
	}
}

func TestExpandDedupesPeriodsAcrossDateFormats(t *testing.T) {
	// The same period written in two accepted formats is one period, not
	// two identical ones with split card ids.
	samples := []RateSample{
		{RoomCategory: "Standard", BookingStartDate: "2026-01-01", BookingEndDate: "2026-01-10", MealPlan: "BB"},
		{RoomCategory: "Standard", BookingStartDate: "01.01.26", BookingEndDate: "10.01.2026", MealPlan: "BB"},
	}
	rates, _, report := Expand(samples, nil)
	if report.Periods != 1 {
		t.Fatalf("got %d periods, want 1", report.Periods)
	}
	// 1 period x 1 plan x 1 category x 2 default room types.
	if len(rates) != 2 {
		t.Fatalf("got %d rates, want 2", len(rates))
	}
	for _, r := range rates {
		if r.CardID != CardIDBase {
			t.Errorf("card id = %d, want %d", r.CardID, CardIDBase)
		}
		if r.BookingStartDate != "2026-01-01" || r.BookingEndDate != "2026-01-10" {
			t.Errorf("period = %s_%s, not canonical", r.BookingStartDate, r.BookingEndDate)
		}
	}
}

func TestExpandObservedRoomTypes(t *testing.T) {
	samples := []RateSample{
		{RoomCategory: "Standard", RoomType: "Triple", BookingStartDate: "2026-01-01", BookingEndDate: "2026-06-30"},
	}
	rates, _, _ := Expand(samples, nil)
	if len(rates) != 1 {
		t.Fatalf("got %d rates, want 1", len(rates))
	}
	if rates[0].RoomType != "Triple" {
		t.Errorf("room type = %q, want observed Triple", rates[0].RoomType)
	}
}

func TestDailyInventories(t *testing.T) {
	samples := []RateSample{{
		RoomCategory:     "Standard",
		BookingStartDate: "2026-01-01",
		BookingEndDate:   "2026-01-10",
	}}
	rates, _, _ := Expand(samples, []string{"Standard", "Deluxe"})
	daily := DailyInventories(rates)

	// 2 categories x 10 days.
	if len(daily) != 20 {
		t.Fatalf("got %d daily rows, want 20", len(daily))
	}
	for _, d := range daily {
		if d.DailyAllotment != DefaultAllotment || d.Balance != DefaultAllotment || d.Used != 0 {
			t.Fatalf("daily row %+v: allotment/balance/used off", d)
		}
	}
	if daily[0].RoomCategory != "Standard" || daily[0].Date != "2026-01-01" {
		t.Errorf("first row = %+v", daily[0])
	}
}

func TestExpandedRateRowColumns(t *testing.T) {
	rates, inventories, _ := Expand(sampleContract(), []string{"Deluxe"})
	row := rates[0].Row()
	for _, col := range []string{"adult_rate", "card_id", "room_category_id", "booking_start_date", "total_occupancy"} {
		if _, ok := row[col]; !ok {
			t.Errorf("rate row missing column %q", col)
		}
	}
	inv := inventories[0].Row()
	if inv["allotment"] != DefaultAllotment {
		t.Errorf("inventory allotment = %v, want %d", inv["allotment"], DefaultAllotment)
	}
	if _, ok := inv["rate_id"]; ok {
		t.Error("inventory row must not carry rate_id before upload")
	}
}
