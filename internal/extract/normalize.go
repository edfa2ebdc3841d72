package extract

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/aahaas/go-contract-backend/internal/expand"
)

// Contract is the fully-defaulted extraction result. Every field is safe to
// use directly: maps are non-nil, slices may be empty but never nil maps,
// and sample fields are plain strings regardless of the JSON types the model
// emitted.
type Contract struct {
	// Hotel holds hotels-table column values keyed by column name.
	Hotel map[string]string
	// Details holds hotel_details-table column values keyed by column name.
	Details map[string]string
	// Categories are the distinct room category names, contract order.
	Categories []string
	// RoomTypes are the distinct room type names, contract order.
	RoomTypes []string
	// Samples are the sparse rate observations feeding expansion.
	Samples []expand.RateSample
	// Terms holds terms-and-conditions column values keyed by column name.
	Terms map[string]string
	// Warnings records everything that had to be dropped or defaulted while
	// normalizing; the pipeline logs them and carries on.
	Warnings []string
}

// Normalize converts a raw model payload into a Contract. It never fails:
// malformed JSON yields an empty Contract with a warning, and every field it
// cannot interpret is skipped with a warning rather than aborting the
// pipeline. Structural trust in the model output ends here.
func Normalize(raw []byte) *Contract {
	c := &Contract{
		Hotel:   map[string]string{},
		Details: map[string]string{},
		Terms:   map[string]string{},
	}

	var root map[string]any
	if err := json.Unmarshal([]byte(StripFences(string(raw))), &root); err != nil {
		c.Warnings = append(c.Warnings, "extraction payload is not valid JSON; continuing with empty contract")
		return c
	}

	c.Hotel = stringMap(pick(root, "hotel", "hotel_info", "hotels"))
	c.Details = stringMap(pick(root, "hotel_details", "details"))
	c.Terms = stringMap(pick(root, "terms_and_conditions", "terms"))
	c.Categories = stringList(root["room_categories"])
	c.RoomTypes = stringList(root["room_types"])

	rates, ok := root["room_rates"].([]any)
	if !ok && root["room_rates"] != nil {
		c.Warnings = append(c.Warnings, "room_rates is not a list; ignoring")
	}
	for i, r := range rates {
		m, ok := r.(map[string]any)
		if !ok {
			c.Warnings = append(c.Warnings, "room_rates["+strconv.Itoa(i)+"] is not an object; skipped")
			continue
		}
		c.Samples = append(c.Samples, sampleFromMap(m))
	}

	if len(c.Samples) == 0 {
		c.Warnings = append(c.Warnings, "no rate samples extracted")
	}
	return c
}

// sampleFromMap maps the loose extraction object onto a RateSample,
// stringifying whatever JSON type each value arrived as.
func sampleFromMap(m map[string]any) expand.RateSample {
	return expand.RateSample{
		RoomCategory:      str(m["room_category_id"]),
		RoomType:          str(m["room_type_id"]),
		BookingStartDate:  str(m["booking_start_date"]),
		BookingEndDate:    str(m["booking_end_date"]),
		MealPlan:          str(m["meal_plan"]),
		MarketNationality: str(m["market_nationality"]),
		Currency:          str(m["currency"]),

		AdultRate:           str(m["adult_rate"]),
		ChildWithBedRate:    str(m["child_with_bed_rate"]),
		ChildWithoutBedRate: str(m["child_without_bed_rate"]),

		ActualAdultRate:           str(m["actual_adult_rate"]),
		ActualChildWithBedRate:    str(m["actual_child_with_bed_rate"]),
		ActualChildWithoutBedRate: str(m["actual_child_without_bed_rate"]),

		ChildFOCAge:       str(m["child_foc_age"]),
		ChildWithNoBedAge: str(m["child_with_no_bed_age"]),
		ChildWithBedAge:   str(m["child_with_bed_age"]),
		AdultAge:          str(m["adult_age"]),

		MinAdultOccupancy: str(m["min_adult_occupancy"]),
		MaxAdultOccupancy: str(m["max_adult_occupancy"]),
		MinChildOccupancy: str(m["min_child_occupancy"]),
		MaxChildOccupancy: str(m["max_child_occupancy"]),
		TotalOccupancy:    str(m["total_occupancy"]),

		BookByDays:    str(m["book_by_days"]),
		PaymentType:   str(m["payment_type"]),
		BlackoutDates: str(m["blackout_dates"]),
		BlackoutDays:  str(m["blackout_days"]),
	}
}

// pick returns the first present key as a map, or nil.
func pick(root map[string]any, keys ...string) map[string]any {
	for _, k := range keys {
		if m, ok := root[k].(map[string]any); ok {
			return m
		}
	}
	return nil
}

// stringMap stringifies every value of m, skipping nested structures.
func stringMap(m map[string]any) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		switch v.(type) {
		case map[string]any, []any:
			continue
		}
		out[k] = str(v)
	}
	return out
}

// stringList stringifies a JSON list, dropping blanks and duplicates while
// keeping order.
func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	seen := map[string]bool{}
	var out []string
	for _, item := range items {
		s := strings.TrimSpace(str(item))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// str renders a JSON scalar as the string the pipeline's coercion layer
// expects. Floats that are whole numbers drop the trailing ".0" so "2" and
// 2 normalize identically.
func str(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
