// Package domain defines the persistence models for the hotel contract
// tables. These types are mapped with GORM and serve the typed read-back
// queries of the upload pipeline (watermark scans, category name maps) and
// the rates export endpoint; bulk inserts of staged spreadsheet rows go
// through the dynamic path in internal/upload instead.
//
// Date columns are modeled as strings in canonical YYYY-MM-DD form rather
// than time.Time: the staged workbooks, the expansion engine, and the MySQL
// DATE columns all exchange the textual form, and keeping one representation
// avoids driver parseTime divergence between MySQL and the sqlite test DB.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Hotel is the root sellable entity. Exactly one row is created per
// contract upload session; every other table hangs off its generated id.
type Hotel struct {
	ID                  int64          `json:"id"                  gorm:"primaryKey;autoIncrement"`
	HotelName           string         `json:"hotel_name"          gorm:"type:varchar(255);not null"`
	HotelDescription    string         `json:"hotel_description"   gorm:"type:text"`
	StarClassification  *int           `json:"star_classification"`
	AutoConfirmation    *int           `json:"auto_confirmation"`
	Triggers            *int           `json:"triggers"`
	HotelClassification string         `json:"hotel_classification" gorm:"type:varchar(64)"`
	Longitude           *float64       `json:"longitude"`
	Latitude            *float64       `json:"latitude"`
	Provider            string         `json:"provider"            gorm:"type:varchar(255)"`
	HotelAddress        string         `json:"hotel_address"       gorm:"type:varchar(512);not null"`
	TripAdvisorLink     string         `json:"trip_advisor_link"   gorm:"type:varchar(512)"`
	HotelImage          string         `json:"hotel_image"         gorm:"type:varchar(512);not null"`
	Country             string         `json:"country"             gorm:"type:varchar(8)"`
	City                string         `json:"city"                gorm:"type:varchar(128)"`
	MicroLocation       string         `json:"micro_location"      gorm:"type:varchar(128)"`
	HotelStatus         *int           `json:"hotel_status"`
	StartDate           string         `json:"start_date"          gorm:"type:varchar(32)"`
	EndDate             string         `json:"end_date"            gorm:"type:varchar(32)"`
	VendorID            *int           `json:"vendor_id"`
	UpdatedBy           string         `json:"updated_by"          gorm:"type:varchar(64)"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	AdditionalData1     string         `json:"additional_data_1"   gorm:"column:additional_data_1;type:varchar(64)"`
	Markup              *float64       `json:"markup"`
	SubDescription      string         `json:"sub_description"     gorm:"type:text"`
	DeletedAt           gorm.DeletedAt `json:"-"                   gorm:"index"`
	TempColumn          string         `json:"temp_column"         gorm:"type:varchar(64)"`
}

// TableName returns the database table name for Hotel.
func (Hotel) TableName() string { return "hotels" }

// HotelDetail is the 1:1 extension of a hotel holding amenity flags and
// free-text features, keyed by the hotel's generated id.
type HotelDetail struct {
	ID                 int64          `json:"id"                  gorm:"primaryKey;autoIncrement"`
	HotelID            int64          `json:"hotel_id"            gorm:"index;not null"`
	DriverAccomadation string         `json:"driver_accomadation" gorm:"type:varchar(8)"`
	LiftStatus         string         `json:"lift_status"         gorm:"type:varchar(8)"`
	VehicleApprochable string         `json:"vehicle_approchable" gorm:"type:varchar(8)"`
	ACStatus           string         `json:"ac_status"           gorm:"column:ac_status;type:varchar(8)"`
	CovidSafe          string         `json:"covid_safe"          gorm:"type:varchar(8)"`
	Feature1           string         `json:"feature1"            gorm:"type:varchar(128)"`
	Feature2           string         `json:"feature2"            gorm:"type:varchar(128)"`
	Feature3           string         `json:"feature3"            gorm:"type:varchar(128)"`
	Feature4           string         `json:"feature4"            gorm:"type:varchar(128)"`
	Preferred          string         `json:"preferred"           gorm:"type:varchar(8)"`
	UpdatedBy          string         `json:"updated_by"          gorm:"type:varchar(64)"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	HotelDetailscol    string         `json:"hotel_detailscol"    gorm:"type:varchar(64)"`
	DeletedAt          gorm.DeletedAt `json:"-"                   gorm:"index"`
}

// TableName returns the database table name for HotelDetail.
func (HotelDetail) TableName() string { return "hotel_details" }

// RoomCategory is a named subdivision of a hotel ("Deluxe", "Suite", ...).
// Rate rows reference categories by name until this row's id exists, which
// is why the name must stay stable across the pipeline.
type RoomCategory struct {
	ID               int64          `json:"id"                 gorm:"primaryKey;autoIncrement"`
	HotelID          int64          `json:"hotel_id"           gorm:"index;not null"`
	RoomCategoryName string         `json:"room_category_name" gorm:"type:varchar(128);not null"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"-"                  gorm:"index"`
}

// TableName returns the database table name for RoomCategory.
func (RoomCategory) TableName() string { return "hotel_room_categories" }

// RoomType is the secondary axis orthogonal to category (Single/Double).
type RoomType struct {
	ID               int64          `json:"id"                 gorm:"primaryKey;autoIncrement"`
	HotelID          int64          `json:"hotel_id"           gorm:"index;not null"`
	RoomCategoryType string         `json:"room_category_type" gorm:"type:varchar(64);not null"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"-"                  gorm:"index"`
}

// TableName returns the database table name for RoomType.
func (RoomType) TableName() string { return "hotel_room_types" }

// RoomRate is one persisted expanded rate row: one row per
// (period x meal plan x category x room type). Rows sharing the same
// (period, category) share CardID regardless of room type.
type RoomRate struct {
	ID                        int64          `json:"id"                 gorm:"primaryKey;autoIncrement"`
	HotelID                   int64          `json:"hotel_id"           gorm:"index;not null"`
	MarketNationality         string         `json:"market_nationality" gorm:"type:varchar(64)"`
	Currency                  string         `json:"currency"           gorm:"type:varchar(8)"`
	AdultRate                 float64        `json:"adult_rate"`
	ChildWithBedRate          float64        `json:"child_with_bed_rate"`
	ChildWithoutBedRate       float64        `json:"child_without_bed_rate"`
	ChildFocAge               string         `json:"child_foc_age"         gorm:"type:varchar(16)"`
	ChildWithNoBedAge         string         `json:"child_with_no_bed_age" gorm:"type:varchar(16)"`
	ChildWithBedAge           string         `json:"child_with_bed_age"    gorm:"type:varchar(16)"`
	AdultAge                  string         `json:"adult_age"             gorm:"type:varchar(16)"`
	BookByDays                int            `json:"book_by_days"`
	MealPlan                  string         `json:"meal_plan"          gorm:"type:varchar(16)"`
	RoomCategoryID            string         `json:"room_category_id"   gorm:"type:varchar(128)"`
	RoomTypeID                string         `json:"room_type_id"       gorm:"type:varchar(64)"`
	BookingStartDate          string         `json:"booking_start_date" gorm:"type:varchar(32)"`
	BookingEndDate            string         `json:"booking_end_date"   gorm:"type:varchar(32)"`
	PaymentType               string         `json:"payment_type"       gorm:"type:varchar(32)"`
	BlackoutDates             string         `json:"blackout_dates"     gorm:"type:text"`
	BlackoutDays              string         `json:"blackout_days"      gorm:"type:text"`
	CreatedAt                 time.Time      `json:"created_at"`
	UpdatedAt                 time.Time      `json:"updated_at"`
	CardID                    int            `json:"card_id"`
	DeletedAt                 gorm.DeletedAt `json:"-" gorm:"index"`
	ActualAdultRate           float64        `json:"actual_adult_rate"`
	ActualChildWithBedRate    float64        `json:"actual_child_with_bed_rate"`
	ActualChildWithoutBedRate float64        `json:"actual_child_without_bed_rate"`
	MinAdultOccupancy         int            `json:"min_adult_occupancy"`
	MaxAdultOccupancy         int            `json:"max_adult_occupancy"`
	MinChildOccupancy         int            `json:"min_child_occupancy"`
	MaxChildOccupancy         int            `json:"max_child_occupancy"`
	TotalOccupancy            int            `json:"total_occupancy"`
}

// TableName returns the database table name for RoomRate.
func (RoomRate) TableName() string { return "hotel_room_rates" }

// TermsConditions holds the contract's free-text terms, keyed by hotel id.
type TermsConditions struct {
	ID                   int64          `json:"id"                    gorm:"primaryKey;autoIncrement"`
	HotelID              int64          `json:"hotel_id"              gorm:"index;not null"`
	GeneralTC            string         `json:"general_tc"            gorm:"column:general_tc;type:text"`
	CancellationPolicy   string         `json:"cancellation_policy"   gorm:"type:text"`
	CancellationDeadline string         `json:"cancellation_deadline" gorm:"type:varchar(128)"`
	UpdatedBy            string         `json:"updated_by"            gorm:"type:varchar(64)"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `json:"-"                     gorm:"index"`
}

// TableName returns the database table name for TermsConditions.
func (TermsConditions) TableName() string { return "hotel_terms_conditions" }

// RoomInventory is the rate-level allotment row. RateID references a
// hotel_room_rates id that is known only after the rate row is persisted
// and its auto-increment id read back.
type RoomInventory struct {
	ID               int64          `json:"id"                 gorm:"primaryKey;autoIncrement"`
	RateID           int64          `json:"rate_id"            gorm:"index;not null"`
	BookingStartDate string         `json:"booking_start_date" gorm:"type:varchar(32)"`
	BookingEndDate   string         `json:"booking_end_date"   gorm:"type:varchar(32)"`
	Allotment        int            `json:"allotment"`
	StopSaleDate     string         `json:"stop_sale_date"     gorm:"type:varchar(32)"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"-"                  gorm:"index"`
}

// TableName returns the database table name for RoomInventory.
func (RoomInventory) TableName() string { return "hotel_room_inventories" }

// DailyInventory is the per-(category, calendar day) allotment row. It
// stores the category name, not the id, for display purposes — a deliberate
// denormalization carried over from the booking side.
type DailyInventory struct {
	ID             int64          `json:"id"               gorm:"primaryKey;autoIncrement"`
	HotelID        int64          `json:"hotel_id"         gorm:"index;not null"`
	InventoryID    int            `json:"inventory_id"`
	RoomCategoryID string         `json:"room_category_id" gorm:"type:varchar(128)"`
	Date           string         `json:"date"             gorm:"type:varchar(32);index"`
	DailyAllotment int            `json:"daily_allotment"`
	Used           int            `json:"used"`
	Balance        int            `json:"balance"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the database table name for DailyInventory.
func (DailyInventory) TableName() string { return "hotel_room_daily_inventories" }
