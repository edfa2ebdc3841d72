// Package schema describes the relational tables the upload pipeline writes
// to. Every staged spreadsheet maps onto one TableSpec, which carries the
// canonical column order, the columns that must never be written on insert
// (auto-increment keys, soft-delete markers, staging helper columns), and the
// per-column coercion rules applied before a row reaches the database.
//
// Two table families exist: the eight hotel tables produced from a hotel
// contract, and the six lifestyle tables produced from an activity/lifestyle
// product sheet. The upload orders encode the foreign-key dependencies:
// parents always precede the tables that consume their generated ids.
package schema

// TableSpec describes one destination table for the dynamic insert path.
type TableSpec struct {
	// Name is the database table name.
	Name string
	// Columns is the canonical staged column order, including columns that
	// are dropped on insert (the spreadsheet shows them; the INSERT does not).
	Columns []string
	// DropOnInsert lists columns stripped from every row before insert:
	// auto-increment primary keys, soft-delete markers, audit placeholders,
	// and the product_index/rate_index staging helpers.
	DropOnInsert []string
	// IntegerColumns parse as integers; unparseable values become NULL.
	IntegerColumns []string
	// DecimalColumns parse as decimals after stripping everything but
	// digits, '.', and '-'; unparseable values become NULL.
	DecimalColumns []string
	// NotNullDefaults substitutes a value when the incoming cell is empty
	// and the column is NOT NULL in the target schema.
	NotNullDefaults map[string]string
}

// IsInteger reports whether col is declared integer-typed.
func (t TableSpec) IsInteger(col string) bool { return contains(t.IntegerColumns, col) }

// IsDecimal reports whether col is declared decimal-typed.
func (t TableSpec) IsDecimal(col string) bool { return contains(t.DecimalColumns, col) }

// Dropped reports whether col must be stripped before insert.
func (t TableSpec) Dropped(col string) bool { return contains(t.DropOnInsert, col) }

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Hotel table names.
const (
	TableHotels           = "hotels"
	TableHotelDetails     = "hotel_details"
	TableRoomCategories   = "hotel_room_categories"
	TableRoomTypes        = "hotel_room_types"
	TableRoomRates        = "hotel_room_rates"
	TableTermsConditions  = "hotel_terms_conditions"
	TableRoomInventories  = "hotel_room_inventories"
	TableDailyInventories = "hotel_room_daily_inventories"
)

// Lifestyle table names.
const (
	TableLifestyle          = "tbl_lifestyle"
	TableLifestyleDetail    = "tbl_lifestyle_detail"
	TableLifestyleRates     = "tbl_lifestyle_rates"
	TableLifestylePackages  = "life_style_rates_packages"
	TableLifestyleInventory = "tbl_lifestyle_inventory"
	TableLifestyleTerms     = "tbl_lifestyle_terms_and_conditions"
)

// HotelUploadOrder is the strict dependency order for the hotel tables:
// hotels first (root of every foreign key), rates before inventories,
// categories before daily inventories.
var HotelUploadOrder = []string{
	TableHotels,
	TableHotelDetails,
	TableRoomCategories,
	TableRoomTypes,
	TableRoomRates,
	TableTermsConditions,
	TableRoomInventories,
	TableDailyInventories,
}

// LifestyleUploadOrder is the strict dependency order for the lifestyle
// tables: the main table yields lifestyle_id, the rates table yields the
// rate_id consumed by both packages and inventory.
var LifestyleUploadOrder = []string{
	TableLifestyle,
	TableLifestyleDetail,
	TableLifestyleRates,
	TableLifestylePackages,
	TableLifestyleInventory,
	TableLifestyleTerms,
}

// commonDrops are stripped from every hotel-table row before insert.
var commonDrops = []string{"id", "deleted_at", "temp_column", "updated_by"}

// lifestyleDrops covers the staging helper columns shared by the lifestyle
// sheets; each spec adds its own auto-increment key on top.
var lifestyleDrops = []string{"product_index", "rate_index", "deleted_at"}

// hotelSpecs indexes the hotel TableSpecs by table name.
var hotelSpecs = map[string]TableSpec{
	TableHotels: {
		Name: TableHotels,
		Columns: []string{
			"id", "hotel_name", "hotel_description", "star_classification", "auto_confirmation",
			"triggers", "hotel_classification", "longitude", "latitude", "provider",
			"hotel_address", "trip_advisor_link", "hotel_image", "country", "city",
			"micro_location", "hotel_status", "start_date", "end_date", "vendor_id",
			"updated_by", "created_at", "updated_at", "additional_data_1", "markup",
			"sub_description", "deleted_at", "temp_column",
		},
		DropOnInsert:   commonDrops,
		IntegerColumns: []string{"vendor_id", "hotel_status", "auto_confirmation", "triggers", "star_classification"},
		DecimalColumns: []string{"markup", "longitude", "latitude"},
		NotNullDefaults: map[string]string{
			"hotel_address": "Address not specified",
			"hotel_image":   "https://via.placeholder.com/400x300?text=Hotel+Image",
		},
	},
	TableHotelDetails: {
		Name: TableHotelDetails,
		Columns: []string{
			"id", "hotel_id", "driver_accomadation", "lift_status", "vehicle_approchable",
			"ac_status", "covid_safe", "feature1", "feature2", "feature3", "feature4",
			"preferred", "updated_by", "created_at", "updated_at", "hotel_detailscol", "deleted_at",
		},
		DropOnInsert:   commonDrops,
		IntegerColumns: []string{"hotel_id"},
	},
	TableRoomCategories: {
		Name: TableRoomCategories,
		Columns: []string{
			"id", "hotel_id", "room_category_name", "created_at", "updated_at", "deleted_at",
		},
		DropOnInsert:    commonDrops,
		IntegerColumns:  []string{"hotel_id"},
		NotNullDefaults: map[string]string{"room_category_name": "Standard"},
	},
	TableRoomTypes: {
		Name: TableRoomTypes,
		Columns: []string{
			"id", "hotel_id", "room_category_type", "created_at", "updated_at", "deleted_at",
		},
		DropOnInsert:    commonDrops,
		IntegerColumns:  []string{"hotel_id"},
		NotNullDefaults: map[string]string{"room_category_type": "Standard Room"},
	},
	TableRoomRates: {
		Name: TableRoomRates,
		Columns: []string{
			"id", "hotel_id", "market_nationality", "currency", "adult_rate", "child_with_bed_rate",
			"child_without_bed_rate", "child_foc_age", "child_with_no_bed_age", "child_with_bed_age",
			"adult_age", "book_by_days", "meal_plan", "room_category_id", "room_type_id",
			"booking_start_date", "booking_end_date", "payment_type", "blackout_dates", "blackout_days",
			"created_at", "updated_at", "card_id", "deleted_at", "actual_adult_rate",
			"actual_child_with_bed_rate", "actual_child_without_bed_rate", "min_adult_occupancy",
			"max_adult_occupancy", "min_child_occupancy", "max_child_occupancy", "total_occupancy",
		},
		DropOnInsert:   commonDrops,
		IntegerColumns: []string{"hotel_id", "book_by_days", "card_id", "min_adult_occupancy", "max_adult_occupancy", "min_child_occupancy", "max_child_occupancy", "total_occupancy"},
		DecimalColumns: []string{
			"adult_rate", "child_with_bed_rate", "child_without_bed_rate",
			"actual_adult_rate", "actual_child_with_bed_rate", "actual_child_without_bed_rate",
		},
	},
	TableTermsConditions: {
		Name: TableTermsConditions,
		Columns: []string{
			"id", "hotel_id", "general_tc", "cancellation_policy", "cancellation_deadline",
			"updated_by", "created_at", "updated_at", "deleted_at",
		},
		DropOnInsert:   commonDrops,
		IntegerColumns: []string{"hotel_id"},
	},
	TableRoomInventories: {
		Name: TableRoomInventories,
		Columns: []string{
			"id", "rate_id", "booking_start_date", "booking_end_date", "allotment",
			"stop_sale_date", "created_at", "updated_at", "deleted_at",
		},
		DropOnInsert:   commonDrops,
		IntegerColumns: []string{"rate_id", "allotment"},
	},
	TableDailyInventories: {
		Name: TableDailyInventories,
		Columns: []string{
			"id", "hotel_id", "inventory_id", "room_category_id", "date", "daily_allotment",
			"used", "balance", "created_at", "updated_at", "deleted_at",
		},
		DropOnInsert:   commonDrops,
		IntegerColumns: []string{"hotel_id", "inventory_id", "daily_allotment", "used", "balance"},
	},
}

// lifestyleSpecs indexes the lifestyle TableSpecs by table name. The staged
// lifestyle sheets are column-flexible (rows carry only populated columns),
// so Columns lists the keys the generators emit rather than an exhaustive
// DDL mirror.
var lifestyleSpecs = map[string]TableSpec{
	TableLifestyle: {
		Name:           TableLifestyle,
		DropOnInsert:   append([]string{"lifestyle_id"}, lifestyleDrops...),
		IntegerColumns: []string{"vendor_id", "status"},
		DecimalColumns: []string{"longitude", "latitude", "markup"},
	},
	TableLifestyleDetail: {
		Name:           TableLifestyleDetail,
		DropOnInsert:   append([]string{"lifestyle_detail_id"}, lifestyleDrops...),
		IntegerColumns: []string{"lifestyle_id", "updated_by"},
	},
	TableLifestyleRates: {
		Name:           TableLifestyleRates,
		DropOnInsert:   append([]string{"lifestyle_rate_id"}, lifestyleDrops...),
		IntegerColumns: []string{"lifestyle_id", "book_by_days", "cancellation_days", "updated_by"},
		DecimalColumns: []string{
			"adult_rate", "child_rate", "student_rate", "senior_rate", "military_rate",
			"other_rate", "package_rate", "actual_adult_rate", "actual_child_rate", "actual_package_rate",
		},
	},
	TableLifestylePackages: {
		Name:           TableLifestylePackages,
		DropOnInsert:   append([]string{"id"}, lifestyleDrops...),
		IntegerColumns: []string{"rate_id", "min_adult_occupancy", "max_adult_occupancy", "min_child_occupancy", "max_child_occupancy", "total_occupancy", "status"},
		DecimalColumns: []string{"package_rate", "adult_rate", "child_rate", "actual_package_rate", "actual_adult_rate", "actual_child_rate"},
	},
	TableLifestyleInventory: {
		Name:           TableLifestyleInventory,
		DropOnInsert:   append([]string{"lifestyle_inventory_id"}, lifestyleDrops...),
		IntegerColumns: []string{"lifestyle_id", "rate_id", "max_adult_occupancy", "max_children_occupancy", "max_total_occupancy", "total_inventory", "allotment", "used", "balance"},
		DecimalColumns: []string{"longitude", "latitude"},
	},
	TableLifestyleTerms: {
		Name:           TableLifestyleTerms,
		DropOnInsert:   append([]string{"termsncondition_id"}, lifestyleDrops...),
		IntegerColumns: []string{"lifestyle_id", "updated_by"},
	},
}

// Hotel returns the TableSpec for a hotel table, and whether it exists.
func Hotel(name string) (TableSpec, bool) {
	s, ok := hotelSpecs[name]
	return s, ok
}

// Lifestyle returns the TableSpec for a lifestyle table, and whether it exists.
func Lifestyle(name string) (TableSpec, bool) {
	s, ok := lifestyleSpecs[name]
	return s, ok
}

// HotelColumns returns the canonical staged column order for a hotel table.
// Unknown tables return nil.
func HotelColumns(name string) []string {
	return hotelSpecs[name].Columns
}
