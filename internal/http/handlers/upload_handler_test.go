package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/aahaas/go-contract-backend/internal/domain"
	"github.com/aahaas/go-contract-backend/internal/services"
	"github.com/aahaas/go-contract-backend/internal/upload"
)

// --- stub services ---

type stubUploadService struct {
	table   string
	hotelID int64
	rows    []map[string]any
	lsID    int64
	rateID  int64
	err     error
}

func (s *stubUploadService) UploadHotelTable(_ context.Context, table string, workbook io.Reader, hotelID int64) (*upload.BatchResult, error) {
	s.table, s.hotelID = table, hotelID
	_, _ = io.ReadAll(workbook)
	if s.err != nil {
		return nil, s.err
	}
	return &upload.BatchResult{Table: table, Total: 1, Inserted: 1}, nil
}

func (s *stubUploadService) UploadHotelAll(_ context.Context, workbooks map[string]io.Reader, hotelID int64) (map[string]*upload.BatchResult, int64, error) {
	s.hotelID = hotelID
	if s.err != nil {
		return nil, 0, s.err
	}
	out := make(map[string]*upload.BatchResult, len(workbooks))
	for table := range workbooks {
		out[table] = &upload.BatchResult{Table: table, Total: 1, Inserted: 1}
	}
	if hotelID == 0 {
		hotelID = 11
	}
	return out, hotelID, nil
}

func (s *stubUploadService) UploadRates(_ context.Context, hotelID int64, workbook io.Reader) (*upload.RatesResult, error) {
	s.hotelID = hotelID
	_, _ = io.ReadAll(workbook)
	if s.err != nil {
		return nil, s.err
	}
	return &upload.RatesResult{}, nil
}

func (s *stubUploadService) UploadLifestyleAtomic(_ context.Context, tables map[string][]map[string]any) (*upload.LifestyleResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &upload.LifestyleResult{LifestyleIDs: []int64{7}}, nil
}

func (s *stubUploadService) UploadLifestyleTable(_ context.Context, table string, rows []map[string]any, lifestyleID, rateID int64) (*upload.BatchResult, error) {
	s.table, s.rows, s.lsID, s.rateID = table, rows, lifestyleID, rateID
	if s.err != nil {
		return nil, s.err
	}
	return &upload.BatchResult{Table: table, Total: len(rows), Inserted: len(rows)}, nil
}

type stubHotelService struct{}

func (stubHotelService) Get(context.Context, int64) (*domain.Hotel, error) {
	return &domain.Hotel{ID: 1, HotelName: "Seaside Resort"}, nil
}

func (stubHotelService) ListPage(context.Context, int, int) ([]domain.Hotel, int64, error) {
	return nil, 0, nil
}

func (stubHotelService) LastID(context.Context) (int64, error) { return 42, nil }

func (stubHotelService) Rates(_ context.Context, hotelID int64) ([]domain.RoomRate, error) {
	return []domain.RoomRate{{ID: 100, HotelID: hotelID, MealPlan: "BB", AdultRate: 120}}, nil
}

func (stubHotelService) AddCategory(_ context.Context, hotelID int64, name string) (*domain.RoomCategory, error) {
	return &domain.RoomCategory{ID: 3, HotelID: hotelID, RoomCategoryName: name}, nil
}

type stubLifestyleBuilder struct{}

func (stubLifestyleBuilder) BuildTables(products []services.LifestyleProduct) map[string][]map[string]any {
	return map[string][]map[string]any{"tbl_lifestyle": {{"title": products[0].Name}}}
}

// --- helpers ---

func newUploadRouter(svc *stubUploadService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := New(nil, svc, stubLifestyleBuilder{}, stubHotelService{})
	r.POST("/uploads/tables/:table", h.UploadTable)
	r.POST("/uploads/rates", h.UploadRates)
	r.POST("/lifestyle", h.UploadLifestyle)
	r.POST("/lifestyle/tables/:table", h.UploadLifestyleTable)
	return r
}

func workbookForm(t *testing.T) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "hotel_details.xlsx")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if _, err := fw.Write([]byte("not a real workbook, stub ignores content")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

// --- tests ---

func TestUploadTable_PassesHotelID(t *testing.T) {
	svc := &stubUploadService{}
	r := newUploadRouter(svc)

	body, ct := workbookForm(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/uploads/tables/hotel_details?hotel_id=42", body)
	req.Header.Set("Content-Type", ct)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if svc.table != "hotel_details" || svc.hotelID != 42 {
		t.Fatalf("service got table=%q hotel=%d", svc.table, svc.hotelID)
	}
}

func TestUploadTable_HotelIDRequired(t *testing.T) {
	r := newUploadRouter(&stubUploadService{})

	body, ct := workbookForm(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/uploads/tables/hotel_details", body)
	req.Header.Set("Content-Type", ct)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing hotel_id = %d, want 400", w.Code)
	}

	// The hotels table carries no hotel scope, so no hotel_id is fine.
	svc := &stubUploadService{}
	r = newUploadRouter(svc)
	body, ct = workbookForm(t)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/uploads/tables/hotels", body)
	req.Header.Set("Content-Type", ct)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || svc.hotelID != 0 {
		t.Fatalf("hotels upload = %d hotel=%d", w.Code, svc.hotelID)
	}
}

func TestUploadTable_RatesRejected(t *testing.T) {
	r := newUploadRouter(&stubUploadService{})

	body, ct := workbookForm(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/uploads/tables/hotel_room_rates?hotel_id=1", body)
	req.Header.Set("Content-Type", ct)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("rates via generic endpoint = %d, want 400", w.Code)
	}
}

func TestUploadRates_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"no rows", services.ErrNoRows, http.StatusBadRequest},
		{"unknown table", services.ErrUnknownTable, http.StatusBadRequest},
		{"db down", errors.New("dial tcp: refused"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newUploadRouter(&stubUploadService{err: tc.err})
			body, ct := workbookForm(t)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/uploads/rates?hotel_id=1", body)
			req.Header.Set("Content-Type", ct)
			r.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Fatalf("status=%d want=%d", w.Code, tc.want)
			}
		})
	}
}

func TestUploadLifestyle_AtomicFlow(t *testing.T) {
	svc := &stubUploadService{}
	r := newUploadRouter(svc)

	payload := `{"products":[{"lifestyle_name":"Desert Safari"}]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/lifestyle", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var resp upload.LifestyleResult
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(resp.LifestyleIDs) != 1 || resp.LifestyleIDs[0] != 7 {
		t.Fatalf("unexpected result: %+v", resp)
	}
}

func TestUploadLifestyle_RollbackMapsToConflict(t *testing.T) {
	r := newUploadRouter(&stubUploadService{err: upload.ErrNothingInserted})

	payload := `{"products":[{"lifestyle_name":"Desert Safari"}]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/lifestyle", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("status=%d want 409", w.Code)
	}
}

func TestUploadLifestyleTable_ThreadsIDs(t *testing.T) {
	svc := &stubUploadService{}
	r := newUploadRouter(svc)

	payload := `{"rows":[{"rate_name":"Adult"}],"lifestyle_id":5,"rate_id":9}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/lifestyle/tables/tbl_lifestyle_rates", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if svc.table != "tbl_lifestyle_rates" || svc.lsID != 5 || svc.rateID != 9 || len(svc.rows) != 1 {
		t.Fatalf("service got table=%q ls=%d rate=%d rows=%d", svc.table, svc.lsID, svc.rateID, len(svc.rows))
	}
}
