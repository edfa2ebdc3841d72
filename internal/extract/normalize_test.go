package extract

import "testing"

func TestNormalizeFullPayload(t *testing.T) {
	raw := []byte(`{
		"hotel": {"hotel_name": "Seaside Resort", "city": "Valletta", "star_classification": 4},
		"hotel_details": {"lift_status": "yes"},
		"room_categories": ["Standard", "Deluxe", "Standard", ""],
		"room_types": ["Single", "Double"],
		"room_rates": [
			{"room_category_id": "Deluxe", "adult_rate": 250, "meal_plan": "HB",
			 "booking_start_date": "2026-01-01", "booking_end_date": "2026-04-30",
			 "min_adult_occupancy": 1}
		],
		"terms_and_conditions": {"cancellation_policy": "7 days"}
	}`)

	c := Normalize(raw)
	if c.Hotel["hotel_name"] != "Seaside Resort" {
		t.Errorf("hotel_name = %q", c.Hotel["hotel_name"])
	}
	// Numeric JSON values stringify without a trailing decimal.
	if c.Hotel["star_classification"] != "4" {
		t.Errorf("star_classification = %q, want 4", c.Hotel["star_classification"])
	}
	if len(c.Categories) != 2 {
		t.Fatalf("categories = %v, want deduped Standard/Deluxe", c.Categories)
	}
	if len(c.Samples) != 1 {
		t.Fatalf("got %d samples, want 1", len(c.Samples))
	}
	s := c.Samples[0]
	if s.AdultRate != "250" || s.RoomCategory != "Deluxe" || s.MinAdultOccupancy != "1" {
		t.Errorf("unexpected sample: %+v", s)
	}
	if c.Terms["cancellation_policy"] != "7 days" {
		t.Errorf("terms = %v", c.Terms)
	}
	if len(c.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", c.Warnings)
	}
}

func TestNormalizeMalformedJSON(t *testing.T) {
	c := Normalize([]byte("the contract was illegible, sorry"))
	if c == nil {
		t.Fatal("Normalize returned nil")
	}
	if len(c.Warnings) == 0 {
		t.Fatal("expected a warning for malformed payload")
	}
	if c.Hotel == nil || c.Details == nil || c.Terms == nil {
		t.Fatal("maps must be non-nil even for malformed input")
	}
	if len(c.Samples) != 0 {
		t.Fatalf("got %d samples from garbage", len(c.Samples))
	}
}

func TestNormalizeFencedPayload(t *testing.T) {
	raw := []byte("```json\n{\"hotel\": {\"hotel_name\": \"Alpine Lodge\"}, \"room_rates\": []}\n```")
	c := Normalize(raw)
	if c.Hotel["hotel_name"] != "Alpine Lodge" {
		t.Fatalf("hotel_name = %q, fencing not stripped", c.Hotel["hotel_name"])
	}
}

func TestNormalizeSkipsNonObjectRates(t *testing.T) {
	raw := []byte(`{"room_rates": [{"adult_rate": "100"}, "not an object", 7]}`)
	c := Normalize(raw)
	if len(c.Samples) != 1 {
		t.Fatalf("got %d samples, want 1", len(c.Samples))
	}
	if len(c.Warnings) != 2 {
		t.Fatalf("got warnings %v, want 2 skip warnings", c.Warnings)
	}
}

func TestStripFences(t *testing.T) {
	cases := []struct{ in, want string }{
		{"{\"a\":1}", "{\"a\":1}"},
		{"```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"Here is the data:\n{\"a\":1}\nHope this helps!", "{\"a\":1}"},
	}
	for _, c := range cases {
		if got := StripFences(c.in); got != c.want {
			t.Errorf("StripFences(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
