package expand

import (
	"sort"
	"strings"
	"time"
)

// CardIDBase is the first card id assigned during expansion. Card ids group
// the expanded rate rows that belong to the same (period, category) pair so
// the pricing UI can render them as a single card; they are spreadsheet-local
// and restart at the base for every contract.
const CardIDBase = 100

// DefaultAllotment is the allotment written into every generated inventory
// row when the contract does not state one.
const DefaultAllotment = 10

// defaultRoomTypes is used when no sample named a room type at all.
var defaultRoomTypes = []string{"Single", "Double"}

// defaultMealPlan is assumed when no sample carried a meal plan.
const defaultMealPlan = "BB"

// RateSample is one sparse rate observation extracted from a contract, after
// normalization: every field is a string and absent fields are empty. A
// sample rarely fills every axis; Expand fills the gaps.
type RateSample struct {
	RoomCategory      string
	RoomType          string
	BookingStartDate  string
	BookingEndDate    string
	MealPlan          string
	MarketNationality string
	Currency          string

	AdultRate           string
	ChildWithBedRate    string
	ChildWithoutBedRate string

	ActualAdultRate           string
	ActualChildWithBedRate    string
	ActualChildWithoutBedRate string

	ChildFOCAge       string
	ChildWithNoBedAge string
	ChildWithBedAge   string
	AdultAge          string

	MinAdultOccupancy string
	MaxAdultOccupancy string
	MinChildOccupancy string
	MaxChildOccupancy string
	TotalOccupancy    string

	BookByDays    string
	PaymentType   string
	BlackoutDates string
	BlackoutDays  string
}

// ExpandedRate is one fully-populated row of the expanded rate grid. Field
// values are already coerced: numbers are numeric, dates canonical, and every
// column the rates table requires is present.
type ExpandedRate struct {
	MarketNationality string
	Currency          string

	AdultRate           float64
	ChildWithBedRate    float64
	ChildWithoutBedRate float64

	ActualAdultRate           float64
	ActualChildWithBedRate    float64
	ActualChildWithoutBedRate float64

	ChildFOCAge       string
	ChildWithNoBedAge string
	ChildWithBedAge   string
	AdultAge          string

	BookByDays   int
	MealPlan     string
	RoomCategory string
	RoomType     string

	BookingStartDate string
	BookingEndDate   string

	PaymentType   string
	BlackoutDates string
	BlackoutDays  string

	CardID int

	MinAdultOccupancy int
	MaxAdultOccupancy int
	MinChildOccupancy int
	MaxChildOccupancy int
	TotalOccupancy    int
}

// InventorySkeleton is the inventory row generated alongside one expanded
// rate. The rate_id foreign key is unknown until upload time, so the
// skeleton carries everything except it. Skeletons are emitted in the same
// order as the rates they belong to; index i pairs with rate i.
type InventorySkeleton struct {
	BookingStartDate string
	BookingEndDate   string
	Allotment        int
	StopSaleDate     string
}

// DailyRow is one per-category, per-day availability row derived from the
// expanded grid.
type DailyRow struct {
	RoomCategory   string
	Date           string
	DailyAllotment int
	Used           int
	Balance        int
}

// Report summarizes what one Expand call saw and produced, for logging and
// for the processing response payload.
type Report struct {
	Samples        int
	Periods        int
	MealPlans      int
	Categories     int
	RoomTypes      int
	Rates          int
	DroppedPeriods []string
}

type period struct {
	start, end string
	startTime  time.Time
}

// Expand produces the full rate grid from the sparse samples. categories,
// when non-empty, overrides the category axis (the caller usually passes the
// categories extracted from the contract's category table, which is more
// complete than the rate samples); otherwise the distinct categories observed
// in the samples are used.
//
// Expansion is deterministic: the same samples and categories always yield
// the same rows in the same order with the same card ids. Empty input yields
// empty output.
func Expand(samples []RateSample, categories []string) ([]ExpandedRate, []InventorySkeleton, Report) {
	report := Report{Samples: len(samples)}

	mealPlans := distinctMealPlans(samples)
	periods, dropped := distinctPeriods(samples)
	roomTypes := distinctRoomTypes(samples)
	cats := distinctCategories(samples, categories)
	report.DroppedPeriods = dropped
	report.Periods = len(periods)
	report.MealPlans = len(mealPlans)
	report.Categories = len(cats)
	report.RoomTypes = len(roomTypes)

	if len(periods) == 0 || len(cats) == 0 {
		return nil, nil, report
	}

	lookup := buildLookup(samples)

	var rates []ExpandedRate
	var inventories []InventorySkeleton
	cardID := CardIDBase
	for _, p := range periods {
		for _, plan := range mealPlans {
			for _, cat := range cats {
				sample := lookup.find(p, cat, plan, samples)
				for _, rt := range roomTypes {
					row := buildRate(sample, p, plan, cat, rt, cardID)
					rates = append(rates, row)
					inventories = append(inventories, InventorySkeleton{
						BookingStartDate: row.BookingStartDate,
						BookingEndDate:   row.BookingEndDate,
						Allotment:        DefaultAllotment,
					})
				}
				cardID++
			}
		}
	}
	report.Rates = len(rates)
	return rates, inventories, report
}

// buildRate fills one grid row from the best-matching sample, applying the
// business defaults for everything the sample does not state.
func buildRate(s RateSample, p period, plan, category, roomType string, cardID int) ExpandedRate {
	adult := Money(s.AdultRate, 0)
	childBed := Money(s.ChildWithBedRate, 80)
	childNoBed := Money(s.ChildWithoutBedRate, 40)
	return ExpandedRate{
		MarketNationality: firstNonEmpty("All", s.MarketNationality),
		Currency:          firstNonEmpty("USD", s.Currency),

		AdultRate:           adult,
		ChildWithBedRate:    childBed,
		ChildWithoutBedRate: childNoBed,

		ActualAdultRate:           Money(s.ActualAdultRate, adult),
		ActualChildWithBedRate:    Money(s.ActualChildWithBedRate, childBed),
		ActualChildWithoutBedRate: Money(s.ActualChildWithoutBedRate, childNoBed),

		ChildFOCAge:       firstNonEmpty("0-6", s.ChildFOCAge),
		ChildWithNoBedAge: firstNonEmpty("6-11.99", s.ChildWithNoBedAge),
		ChildWithBedAge:   firstNonEmpty("6-11.99", s.ChildWithBedAge),
		AdultAge:          firstNonEmpty("12+", s.AdultAge),

		BookByDays:   Int(s.BookByDays, 0),
		MealPlan:     plan,
		RoomCategory: category,
		RoomType:     roomType,

		BookingStartDate: p.start,
		BookingEndDate:   p.end,

		PaymentType:   firstNonEmpty("Advance", s.PaymentType),
		BlackoutDates: s.BlackoutDates,
		BlackoutDays:  s.BlackoutDays,

		CardID: cardID,

		MinAdultOccupancy: BoundedInt(s.MinAdultOccupancy, 1),
		MaxAdultOccupancy: BoundedInt(s.MaxAdultOccupancy, 2),
		MinChildOccupancy: BoundedInt(s.MinChildOccupancy, 0),
		MaxChildOccupancy: BoundedInt(s.MaxChildOccupancy, 2),
		TotalOccupancy:    BoundedInt(s.TotalOccupancy, 3),
	}
}

// distinctMealPlans collects the distinct uppercased meal-plan tokens across
// all samples, splitting comma-separated lists, in first-seen order. No plan
// anywhere falls back to bed-and-breakfast.
func distinctMealPlans(samples []RateSample) []string {
	seen := map[string]bool{}
	var plans []string
	for _, s := range samples {
		for _, tok := range strings.Split(s.MealPlan, ",") {
			tok = strings.ToUpper(strings.TrimSpace(tok))
			if tok == "" || seen[tok] {
				continue
			}
			seen[tok] = true
			plans = append(plans, tok)
		}
	}
	if len(plans) == 0 {
		plans = []string{defaultMealPlan}
	}
	return plans
}

// distinctPeriods collects the distinct (start, end) pairs with parseable
// start and end dates, sorted by start date. Deduplication runs on the
// canonical form, so the same period written in two accepted date formats
// still counts once. Pairs whose dates cannot be parsed are dropped and
// reported.
func distinctPeriods(samples []RateSample) ([]period, []string) {
	seen := map[string]bool{}
	var periods []period
	var dropped []string
	for _, s := range samples {
		if s.BookingStartDate == "" || s.BookingEndDate == "" {
			continue
		}
		start, serr := ParseContractDate(s.BookingStartDate)
		end, eerr := ParseContractDate(s.BookingEndDate)
		if serr != nil || eerr != nil {
			raw := s.BookingStartDate + "_" + s.BookingEndDate
			if !seen[raw] {
				seen[raw] = true
				dropped = append(dropped, raw)
			}
			continue
		}
		key := FormatDate(start) + "_" + FormatDate(end)
		if seen[key] {
			continue
		}
		seen[key] = true
		periods = append(periods, period{
			start:     FormatDate(start),
			end:       FormatDate(end),
			startTime: start,
		})
	}
	sort.SliceStable(periods, func(i, j int) bool {
		return periods[i].startTime.Before(periods[j].startTime)
	})
	return periods, dropped
}

// distinctRoomTypes collects the distinct room types in first-seen order,
// falling back to the conventional Single/Double pair when no sample named
// one.
func distinctRoomTypes(samples []RateSample) []string {
	seen := map[string]bool{}
	var types []string
	for _, s := range samples {
		rt := strings.TrimSpace(s.RoomType)
		if rt == "" || seen[rt] {
			continue
		}
		seen[rt] = true
		types = append(types, rt)
	}
	if len(types) == 0 {
		return append([]string(nil), defaultRoomTypes...)
	}
	return types
}

// distinctCategories prefers the explicit override list (blank entries
// removed) and otherwise collects the distinct categories observed in the
// samples, in first-seen order.
func distinctCategories(samples []RateSample, override []string) []string {
	var cats []string
	seen := map[string]bool{}
	for _, c := range override {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		cats = append(cats, c)
	}
	if len(cats) > 0 {
		return cats
	}
	for _, s := range samples {
		c := strings.TrimSpace(s.RoomCategory)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		cats = append(cats, c)
	}
	return cats
}

// sampleLookup resolves the best sample for a grid cell. Period keys are
// built from the parsed dates so a sample written as "01.01.26" still
// matches the canonical cell derived from it.
type sampleLookup struct {
	exact    map[string]RateSample // start_end_category_plan
	byPeriod map[string]RateSample // start_end_category
}

func buildLookup(samples []RateSample) sampleLookup {
	l := sampleLookup{
		exact:    map[string]RateSample{},
		byPeriod: map[string]RateSample{},
	}
	for _, s := range samples {
		start, serr := ParseContractDate(s.BookingStartDate)
		end, eerr := ParseContractDate(s.BookingEndDate)
		if serr != nil || eerr != nil {
			continue
		}
		pk := FormatDate(start) + "_" + FormatDate(end) + "_" + strings.TrimSpace(s.RoomCategory)
		ek := pk + "_" + strings.ToUpper(strings.TrimSpace(s.MealPlan))
		if _, ok := l.exact[ek]; !ok {
			l.exact[ek] = s
		}
		if _, ok := l.byPeriod[pk]; !ok {
			l.byPeriod[pk] = s
		}
	}
	return l
}

// find resolves a sample for (period, category, plan) with progressively
// looser matching: exact, then period+category ignoring the plan, then any
// sample for the category, then the zero sample so defaults apply.
func (l sampleLookup) find(p period, category, plan string, samples []RateSample) RateSample {
	pk := p.start + "_" + p.end + "_" + category
	if s, ok := l.exact[pk+"_"+plan]; ok {
		return s
	}
	if s, ok := l.byPeriod[pk]; ok {
		return s
	}
	for _, s := range samples {
		if strings.TrimSpace(s.RoomCategory) == category {
			return s
		}
	}
	return RateSample{}
}

// DailyInventories derives the per-day availability rows from the expanded
// grid: for every distinct (category, period) pair, one row per calendar day
// in the period. Rows are emitted grouped by category in grid order, days
// ascending.
func DailyInventories(rates []ExpandedRate) []DailyRow {
	type catPeriod struct{ cat, start, end string }
	seen := map[catPeriod]bool{}
	var ordered []catPeriod
	for _, r := range rates {
		cp := catPeriod{r.RoomCategory, r.BookingStartDate, r.BookingEndDate}
		if seen[cp] {
			continue
		}
		seen[cp] = true
		ordered = append(ordered, cp)
	}

	var rows []DailyRow
	for _, cp := range ordered {
		start, serr := ParseContractDate(cp.start)
		end, eerr := ParseContractDate(cp.end)
		if serr != nil || eerr != nil {
			continue
		}
		for _, day := range DatesBetween(start, end) {
			rows = append(rows, DailyRow{
				RoomCategory:   cp.cat,
				Date:           day,
				DailyAllotment: DefaultAllotment,
				Used:           0,
				Balance:        DefaultAllotment,
			})
		}
	}
	return rows
}
