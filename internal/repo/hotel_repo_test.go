package repo

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/aahaas/go-contract-backend/internal/domain"
)

func newHotelRepoDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("hotel_repo_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// Ensure the file handle is released before TempDir cleanup (Windows needs this).
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func TestMaxIDEmptyTable(t *testing.T) {
	db := newHotelRepoDB(t, &domain.RoomRate{})
	max, err := MaxID(context.Background(), db, domain.RoomRate{}.TableName())
	if err != nil {
		t.Fatalf("MaxID: %v", err)
	}
	if max != 0 {
		t.Fatalf("MaxID on empty table = %d, want 0", max)
	}
}

func TestNewRatesSinceIsolation(t *testing.T) {
	ctx := context.Background()
	db := newHotelRepoDB(t, &domain.RoomRate{})

	seed := []domain.RoomRate{
		{HotelID: 1, RoomCategoryID: "Standard", CardID: 100},
		{HotelID: 1, RoomCategoryID: "Deluxe", CardID: 101},
	}
	if err := db.Create(&seed).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	watermark, err := MaxID(ctx, db, domain.RoomRate{}.TableName())
	if err != nil {
		t.Fatalf("MaxID: %v", err)
	}

	// Rows inserted after the watermark, interleaved with another hotel's.
	after := []domain.RoomRate{
		{HotelID: 1, RoomCategoryID: "Suite", CardID: 102},
		{HotelID: 2, RoomCategoryID: "Standard", CardID: 100},
		{HotelID: 1, RoomCategoryID: "Suite", CardID: 103},
	}
	if err := db.Create(&after).Error; err != nil {
		t.Fatalf("insert after watermark: %v", err)
	}

	fresh, err := NewRatesSince(ctx, db, 1, watermark)
	if err != nil {
		t.Fatalf("NewRatesSince: %v", err)
	}
	if len(fresh) != 2 {
		t.Fatalf("got %d fresh rates, want 2", len(fresh))
	}
	for _, r := range fresh {
		if r.HotelID != 1 {
			t.Errorf("foreign hotel row leaked: %+v", r)
		}
		if r.ID <= watermark {
			t.Errorf("stale row leaked: id %d <= watermark %d", r.ID, watermark)
		}
	}
	if fresh[0].ID >= fresh[1].ID {
		t.Errorf("fresh rows not ordered by id: %d, %d", fresh[0].ID, fresh[1].ID)
	}
}

func TestCategoryIDsByName(t *testing.T) {
	ctx := context.Background()
	db := newHotelRepoDB(t, &domain.RoomCategory{})

	cats := []domain.RoomCategory{
		{HotelID: 5, RoomCategoryName: "Standard"},
		{HotelID: 5, RoomCategoryName: "Deluxe"},
		{HotelID: 9, RoomCategoryName: "Penthouse"},
	}
	if err := db.Create(&cats).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	m, err := CategoryIDsByName(ctx, db, 5)
	if err != nil {
		t.Fatalf("CategoryIDsByName: %v", err)
	}
	if len(m) != 2 {
		t.Fatalf("got %d categories, want 2", len(m))
	}
	if m["Standard"] == 0 || m["Deluxe"] == 0 {
		t.Fatalf("missing ids: %v", m)
	}
	if _, ok := m["Penthouse"]; ok {
		t.Fatal("other hotel's category leaked into map")
	}
}

func TestGetHotelNotFound(t *testing.T) {
	db := newHotelRepoDB(t, &domain.Hotel{})
	if _, err := GetHotel(context.Background(), db, 42); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListHotelsPage(t *testing.T) {
	ctx := context.Background()
	db := newHotelRepoDB(t, &domain.Hotel{})

	for i := 0; i < 5; i++ {
		h := domain.Hotel{HotelName: fmt.Sprintf("Hotel %d", i), HotelAddress: "a", HotelImage: "i"}
		if err := db.Create(&h).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	total, err := CountHotels(ctx, db)
	if err != nil || total != 5 {
		t.Fatalf("CountHotels = %d, %v; want 5", total, err)
	}
	page, err := ListHotelsPage(ctx, db, 0, 2)
	if err != nil {
		t.Fatalf("ListHotelsPage: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("got %d hotels, want 2", len(page))
	}
}
