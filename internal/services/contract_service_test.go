package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/aahaas/go-contract-backend/internal/schema"
	"github.com/aahaas/go-contract-backend/internal/session"
	"github.com/aahaas/go-contract-backend/internal/staging"
)

// fakeExtractor returns a canned extraction payload.
type fakeExtractor struct {
	payload string
	err     error
	calls   int
}

func (f *fakeExtractor) ExtractContract(_ context.Context, _ string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.payload), nil
}

const testPayload = `{
	"hotel": {"hotel_name": "Seaside Resort", "city": "Valletta"},
	"hotel_details": {"lift_status": "yes"},
	"room_categories": ["Standard", "Deluxe"],
	"room_types": [],
	"room_rates": [
		{"room_category_id": "Standard", "adult_rate": "150", "meal_plan": "BB",
		 "booking_start_date": "2026-01-01", "booking_end_date": "2026-01-10"}
	],
	"terms_and_conditions": {"cancellation_policy": "7 days prior"}
}`

func newTestContractService(t *testing.T, ex Extractor) *ContractService {
	t.Helper()
	return NewContractService(ex, session.NewMemoryStore(time.Hour), t.TempDir(), zerolog.Nop())
}

func writeContract(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contract.txt")
	if err := os.WriteFile(path, []byte("Seaside Resort rate contract, season 2026. Standard room, BB meal plan, EUR 150 per adult."), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProcessStagesFirstBatch(t *testing.T) {
	ctx := context.Background()
	svc := newTestContractService(t, &fakeExtractor{payload: testPayload})

	result, err := svc.Process(ctx, writeContract(t))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.SessionID == "" {
		t.Fatal("no session id")
	}
	if result.HotelName != "Seaside Resort" {
		t.Errorf("hotel name = %q", result.HotelName)
	}

	want := []string{
		schema.TableHotels, schema.TableHotelDetails,
		schema.TableRoomCategories, schema.TableRoomTypes,
	}
	if len(result.Files) != len(want) {
		t.Fatalf("staged %d files, want %d: %v", len(result.Files), len(want), result.Files)
	}
	for _, table := range want {
		path, ok := result.Files[table]
		if !ok {
			t.Errorf("table %s not staged", table)
			continue
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("workbook %s missing: %v", path, err)
		}
	}

	// The category workbook carries the extracted names.
	tbl, err := staging.ParseWorkbookFile(result.Files[schema.TableRoomCategories])
	if err != nil {
		t.Fatalf("parse categories: %v", err)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("got %d category rows, want 2", len(tbl.Rows))
	}
	if tbl.Rows[0]["room_category_name"] != "Standard" {
		t.Errorf("first category = %q", tbl.Rows[0]["room_category_name"])
	}

	// Room types defaulted because the contract named none.
	types, err := staging.ParseWorkbookFile(result.Files[schema.TableRoomTypes])
	if err != nil {
		t.Fatal(err)
	}
	if len(types.Rows) != 2 {
		t.Fatalf("got %d room type rows, want default Single/Double", len(types.Rows))
	}
}

func TestStageRatesExpandsGrid(t *testing.T) {
	ctx := context.Background()
	svc := newTestContractService(t, &fakeExtractor{payload: testPayload})

	processed, err := svc.Process(ctx, writeContract(t))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	stage, err := svc.StageRates(ctx, processed.SessionID)
	if err != nil {
		t.Fatalf("StageRates: %v", err)
	}
	if stage.Report == nil || stage.Report.Rates == 0 {
		t.Fatalf("report = %+v", stage.Report)
	}

	// 1 period x 1 plan x 2 categories x 2 default room types.
	tbl, err := staging.ParseWorkbookFile(stage.Files[schema.TableRoomRates])
	if err != nil {
		t.Fatal(err)
	}
	if len(tbl.Rows) != 4 {
		t.Fatalf("got %d rate rows, want 4", len(tbl.Rows))
	}
	if tbl.Rows[0]["card_id"] != "100" {
		t.Errorf("first card_id = %q, want 100", tbl.Rows[0]["card_id"])
	}
}

func TestStepOrderingEnforced(t *testing.T) {
	ctx := context.Background()
	svc := newTestContractService(t, &fakeExtractor{payload: testPayload})

	processed, err := svc.Process(ctx, writeContract(t))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if _, err := svc.StageTerms(ctx, processed.SessionID); !errors.Is(err, ErrStepOutOfOrder) {
		t.Fatalf("StageTerms before StageRates: err = %v, want ErrStepOutOfOrder", err)
	}
}

func TestUnknownSession(t *testing.T) {
	svc := newTestContractService(t, &fakeExtractor{payload: testPayload})
	if _, err := svc.StageRates(context.Background(), "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestProcessAllStagesEverything(t *testing.T) {
	ctx := context.Background()
	svc := newTestContractService(t, &fakeExtractor{payload: testPayload})

	result, err := svc.ProcessAll(ctx, writeContract(t))
	if err != nil {
		t.Fatalf("ProcessAll: %v", err)
	}
	if len(result.Files) != len(schema.HotelUploadOrder) {
		t.Fatalf("staged %d files, want all %d tables", len(result.Files), len(schema.HotelUploadOrder))
	}

	// Inventory parity: one skeleton row per staged rate row.
	rates, err := staging.ParseWorkbookFile(result.Files[schema.TableRoomRates])
	if err != nil {
		t.Fatal(err)
	}
	inv, err := staging.ParseWorkbookFile(result.Files[schema.TableRoomInventories])
	if err != nil {
		t.Fatal(err)
	}
	if len(inv.Rows) != len(rates.Rows) {
		t.Fatalf("%d inventory rows for %d rate rows", len(inv.Rows), len(rates.Rows))
	}

	// Daily sheet: 2 categories x 10 days.
	daily, err := staging.ParseWorkbookFile(result.Files[schema.TableDailyInventories])
	if err != nil {
		t.Fatal(err)
	}
	if len(daily.Rows) != 20 {
		t.Fatalf("got %d daily rows, want 20", len(daily.Rows))
	}
}

func TestCleanupRemovesStagingDir(t *testing.T) {
	ctx := context.Background()
	svc := newTestContractService(t, &fakeExtractor{payload: testPayload})

	result, err := svc.Process(ctx, writeContract(t))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	dir := filepath.Dir(result.Files[schema.TableHotels])

	if err := svc.Cleanup(ctx, result.SessionID); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("staging dir still exists: %v", err)
	}
	if _, err := svc.Session(ctx, result.SessionID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("session survived cleanup: %v", err)
	}
}

func TestProcessExtractionFailure(t *testing.T) {
	svc := newTestContractService(t, &fakeExtractor{err: errors.New("model unavailable")})
	if _, err := svc.Process(context.Background(), writeContract(t)); err == nil {
		t.Fatal("expected error")
	}
}

func TestProcessRejectsShortDocument(t *testing.T) {
	ex := &fakeExtractor{payload: testPayload}
	svc := newTestContractService(t, ex)

	path := filepath.Join(t.TempDir(), "contract.txt")
	if err := os.WriteFile(path, []byte("too short"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Process(context.Background(), path); !errors.Is(err, ErrDocumentTooShort) {
		t.Fatalf("err = %v, want ErrDocumentTooShort", err)
	}
	if ex.calls != 0 {
		t.Errorf("extractor called %d times for a rejected document", ex.calls)
	}

	// Exactly at the bound is accepted.
	if err := os.WriteFile(path, []byte(strings.Repeat("r", 50)), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Process(context.Background(), path); err != nil {
		t.Fatalf("50-rune document rejected: %v", err)
	}
}
