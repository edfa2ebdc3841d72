// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the typed read-back queries the upload
// pipeline depends on.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// The upload pipeline inserts staged rows through a dynamic path (see
// internal/upload), so the queries here are read-mostly. Two of them carry
// the pipeline's correctness:
//
//   - MaxID(ctx, db, table) -> (int64, error)
//     Returns the current high-water auto-increment id of a table, 0 when
//     empty. Captured immediately before a bulk insert.
//
//   - NewRatesSince(ctx, db, hotelID, watermark) -> []domain.RoomRate, error
//     Returns only the rate rows inserted after the watermark AND belonging
//     to the given hotel, ordered by id ascending. Inventory generation
//     feeds on this result, so concurrent uploads for other hotels can
//     never leak rows into it.
//
// Error semantics:
//   - When a row is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors the raw gorm error is propagated.
package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/aahaas/go-contract-backend/internal/domain"
)

// ErrNotFound aliases gorm.ErrRecordNotFound for callers that prefer not to
// import gorm directly.
var ErrNotFound = gorm.ErrRecordNotFound

// MaxID returns the highest id currently present in table, or 0 for an
// empty table. The table name must come from the schema package, never from
// request input.
func MaxID(ctx context.Context, db *gorm.DB, table string) (int64, error) {
	var max int64
	err := db.WithContext(ctx).
		Raw(fmt.Sprintf("SELECT COALESCE(MAX(id), 0) FROM `%s`", table)).
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max, nil
}

// GetHotel fetches a single hotel by id, or ErrNotFound.
func GetHotel(ctx context.Context, db *gorm.DB, id int64) (*domain.Hotel, error) {
	var h domain.Hotel
	if err := db.WithContext(ctx).First(&h, id).Error; err != nil {
		return nil, err
	}
	return &h, nil
}

// CountHotels returns the total number of hotels.
func CountHotels(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Hotel{}).Count(&n).Error
	return n, err
}

// ListHotelsPage returns a page of hotels ordered by creation time
// descending.
func ListHotelsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Hotel, error) {
	var hotels []domain.Hotel
	err := db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&hotels).Error
	return hotels, err
}

// CategoriesByHotel returns the hotel's room categories ordered by id
// ascending, i.e. insertion order.
func CategoriesByHotel(ctx context.Context, db *gorm.DB, hotelID int64) ([]domain.RoomCategory, error) {
	var cats []domain.RoomCategory
	err := db.WithContext(ctx).
		Where("hotel_id = ?", hotelID).
		Order("id ASC").
		Find(&cats).Error
	return cats, err
}

// CategoryIDsByName returns a name -> id map of the hotel's categories, used
// to rewrite the category names staged in rate rows into foreign keys.
func CategoryIDsByName(ctx context.Context, db *gorm.DB, hotelID int64) (map[string]int64, error) {
	cats, err := CategoriesByHotel(ctx, db, hotelID)
	if err != nil {
		return nil, err
	}
	m := make(map[string]int64, len(cats))
	for _, c := range cats {
		m[c.RoomCategoryName] = c.ID
	}
	return m, nil
}

// CreateRoomCategory inserts one room category for a hotel and returns the
// stored row. Used by the manual category endpoint when a contract missed a
// category the operator knows about.
func CreateRoomCategory(ctx context.Context, db *gorm.DB, hotelID int64, name string) (*domain.RoomCategory, error) {
	cat := domain.RoomCategory{HotelID: hotelID, RoomCategoryName: name}
	if err := db.WithContext(ctx).Create(&cat).Error; err != nil {
		return nil, err
	}
	return &cat, nil
}

// RoomTypeIDsByName returns a name -> id map of the hotel's room types.
func RoomTypeIDsByName(ctx context.Context, db *gorm.DB, hotelID int64) (map[string]int64, error) {
	var types []domain.RoomType
	err := db.WithContext(ctx).
		Where("hotel_id = ?", hotelID).
		Order("id ASC").
		Find(&types).Error
	if err != nil {
		return nil, err
	}
	m := make(map[string]int64, len(types))
	for _, t := range types {
		m[t.RoomCategoryType] = t.ID
	}
	return m, nil
}

// RatesByHotel returns every rate row of a hotel ordered by id ascending.
func RatesByHotel(ctx context.Context, db *gorm.DB, hotelID int64) ([]domain.RoomRate, error) {
	var rates []domain.RoomRate
	err := db.WithContext(ctx).
		Where("hotel_id = ?", hotelID).
		Order("id ASC").
		Find(&rates).Error
	return rates, err
}

// NewRatesSince returns the rate rows with id greater than watermark that
// belong to hotelID, ordered by id ascending.
func NewRatesSince(ctx context.Context, db *gorm.DB, hotelID, watermark int64) ([]domain.RoomRate, error) {
	var rates []domain.RoomRate
	err := db.WithContext(ctx).
		Where("id > ? AND hotel_id = ?", watermark, hotelID).
		Order("id ASC").
		Find(&rates).Error
	return rates, err
}
