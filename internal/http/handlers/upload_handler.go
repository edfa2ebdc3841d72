// Upload HTTP handlers.
//
// This file exposes REST endpoints for pushing staged workbooks into the
// destination database and for inspecting uploaded hotels:
//   - POST /uploads/tables/{table}  (one hotel-scoped workbook)
//   - POST /uploads/rates           (rates + derived inventories)
//   - POST /uploads/database        (full workbook set, schema order)
//   - GET  /hotels                  (list, paginated)
//   - GET  /hotels/{id}             (single hotel)
//   - GET  /hotels/last-id          (highest hotel id)
//   - GET  /hotels/{id}/rates       (stored rates, JSON or workbook)
//   - POST /hotels/{id}/categories  (add a room category)
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aahaas/go-contract-backend/internal/domain"
	"github.com/aahaas/go-contract-backend/internal/schema"
	"github.com/aahaas/go-contract-backend/internal/services"
	"github.com/aahaas/go-contract-backend/internal/staging"
	"github.com/aahaas/go-contract-backend/internal/upload"
	"github.com/aahaas/go-contract-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// UploadService defines database upload operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type UploadService interface {
	// UploadHotelTable inserts one workbook's rows into a hotel-scoped table.
	UploadHotelTable(ctx context.Context, table string, workbook io.Reader, hotelID int64) (*upload.BatchResult, error)
	// UploadHotelAll inserts a full workbook set in schema order, returning
	// the per-table breakdown and the effective hotel id.
	UploadHotelAll(ctx context.Context, workbooks map[string]io.Reader, hotelID int64) (map[string]*upload.BatchResult, int64, error)
	// UploadRates inserts a rates workbook and generates inventories for the
	// freshly inserted rows.
	UploadRates(ctx context.Context, hotelID int64, workbook io.Reader) (*upload.RatesResult, error)
	// UploadLifestyleAtomic inserts a full lifestyle product atomically.
	UploadLifestyleAtomic(ctx context.Context, tables map[string][]map[string]any) (*upload.LifestyleResult, error)
	// UploadLifestyleTable inserts rows into one lifestyle table.
	UploadLifestyleTable(ctx context.Context, table string, rows []map[string]any, lifestyleID, rateID int64) (*upload.BatchResult, error)
}

// HotelService defines hotel read/auxiliary operations consumed by HTTP
// handlers.
type HotelService interface {
	// Get returns one hotel by id.
	Get(ctx context.Context, id int64) (*domain.Hotel, error)
	// ListPage returns a page of hotels and the total count.
	ListPage(ctx context.Context, page, pageSize int) ([]domain.Hotel, int64, error)
	// LastID returns the highest hotel id present, 0 when none.
	LastID(ctx context.Context) (int64, error)
	// Rates returns every rate row of a hotel ordered by id.
	Rates(ctx context.Context, hotelID int64) ([]domain.RoomRate, error)
	// AddCategory inserts one room category for a hotel.
	AddCategory(ctx context.Context, hotelID int64, name string) (*domain.RoomCategory, error)
}

//
// DTOs
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListHotelsResponse wraps a page of hotels and pagination information.
type ListHotelsResponse struct {
	Hotels     []domain.Hotel `json:"hotels"`
	Pagination Pagination     `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// hotelIDParam parses the hotel_id query parameter. required forces a
// non-zero value (the hotels table itself carries no hotel scope).
func hotelIDParam(c *gin.Context, required bool) (int64, bool) {
	raw := strings.TrimSpace(c.Query("hotel_id"))
	if raw == "" {
		if required {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "hotel_id query parameter is required")
			return 0, false
		}
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "hotel_id must be a non-negative integer")
		return 0, false
	}
	return id, true
}

// uploadWorkbook opens the multipart "file" part for streaming into the
// workbook parser.
func uploadWorkbook(c *gin.Context) (io.ReadCloser, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, `multipart "file" part is required`)
		return nil, false
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "open upload: "+err.Error())
		return nil, false
	}
	return f, true
}

//
// Handlers
//

// UploadTable inserts one staged workbook into its hotel-scoped destination
// table. The rates table has its own endpoint because it drives inventory
// generation.
func (h *Handlers) UploadTable(c *gin.Context) {
	table := strings.TrimSpace(c.Param("table"))
	if table == schema.TableRoomRates {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "use the rates upload endpoint for room rates")
		return
	}
	hotelID, okHotel := hotelIDParam(c, table != schema.TableHotels)
	if !okHotel {
		return
	}
	f, okFile := uploadWorkbook(c)
	if !okFile {
		return
	}
	defer f.Close()

	res, err := h.uploadSvc.UploadHotelTable(c.Request.Context(), table, f, hotelID)
	if err != nil {
		failUpload(c, err)
		return
	}
	ok(c, http.StatusOK, res)
}

// UploadRates inserts the rates workbook and returns the generated rate-level
// and per-day inventory batches alongside the rate batch itself.
func (h *Handlers) UploadRates(c *gin.Context) {
	hotelID, okHotel := hotelIDParam(c, true)
	if !okHotel {
		return
	}
	f, okFile := uploadWorkbook(c)
	if !okFile {
		return
	}
	defer f.Close()

	res, err := h.uploadSvc.UploadRates(c.Request.Context(), hotelID, f)
	if err != nil {
		failUpload(c, err)
		return
	}
	ok(c, http.StatusOK, res)
}

// UploadDatabase inserts a full set of staged workbooks in one request.
// Each multipart file part is named after its destination table; missing
// tables are skipped. Responds with the per-table breakdown and the hotel
// id the child tables were scoped to.
func (h *Handlers) UploadDatabase(c *gin.Context) {
	hotelID, okHotel := hotelIDParam(c, false)
	if !okHotel {
		return
	}
	form, err := c.MultipartForm()
	if err != nil || len(form.File) == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "multipart workbook parts are required")
		return
	}

	workbooks := make(map[string]io.Reader, len(form.File))
	for table, headers := range form.File {
		if len(headers) == 0 {
			continue
		}
		f, err := headers[0].Open()
		if err != nil {
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "open upload: "+err.Error())
			return
		}
		defer f.Close()
		workbooks[strings.TrimSpace(table)] = f
	}

	results, effectiveID, err := h.uploadSvc.UploadHotelAll(c.Request.Context(), workbooks, hotelID)
	if err != nil {
		failUpload(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"hotel_id": effectiveID, "tables": results})
}

// AddCategoryRequest is the JSON payload for adding a room category.
type AddCategoryRequest struct {
	RoomCategoryName string `json:"room_category_name" binding:"required,min=1,max=128"`
}

// AddRoomCategory inserts one room category for a hotel. Operators use this
// when a contract missed a category the rates sheet references.
func (h *Handlers) AddRoomCategory(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "hotel id must be a positive integer")
		return
	}
	var req AddCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.RoomCategoryName) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "room_category_name required (1-128 chars)")
		return
	}
	cat, err := h.hotelSvc.AddCategory(c.Request.Context(), id, strings.TrimSpace(req.RoomCategoryName))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeUploadFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, cat)
}

// LastHotelID returns the highest hotel id, used by operators preparing
// workbooks outside the staged pipeline.
func (h *Handlers) LastHotelID(c *gin.Context) {
	id, err := h.hotelSvc.LastID(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, gin.H{"last_hotel_id": id})
}

// HotelRates returns every rate row of a hotel.
func (h *Handlers) HotelRates(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "hotel id must be a positive integer")
		return
	}
	rates, err := h.hotelSvc.Rates(c.Request.Context(), id)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, gin.H{"hotel_id": id, "rates": rates})
}

// DownloadHotelRates exports a hotel's stored rates as a workbook in the
// staging layout, so an operator can re-review or adjust them.
func (h *Handlers) DownloadHotelRates(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "hotel id must be a positive integer")
		return
	}
	rates, err := h.hotelSvc.Rates(c.Request.Context(), id)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	if len(rates) == 0 {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "hotel has no rates")
		return
	}

	rows := make([]map[string]any, 0, len(rates))
	for _, r := range rates {
		row, err := rateRow(r)
		if err != nil {
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
			return
		}
		rows = append(rows, row)
	}

	dir, err := os.MkdirTemp("", "rates-export-")
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, schema.TableRoomRates+".xlsx")
	if err := staging.WriteTable(path, schema.TableRoomRates, schema.HotelColumns(schema.TableRoomRates), rows); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	c.FileAttachment(path, fmt.Sprintf("hotel_%d_rates.xlsx", id))
}

// rateRow flattens a stored rate into the staging column layout via its
// JSON field names.
func rateRow(r domain.RoomRate) (map[string]any, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	var row map[string]any
	if err := json.Unmarshal(b, &row); err != nil {
		return nil, err
	}
	return row, nil
}

// ListHotels returns a page of uploaded hotels.
func (h *Handlers) ListHotels(c *gin.Context) {
	page, pageSize := clampPagination(c)

	items, total, err := h.hotelSvc.ListPage(c.Request.Context(), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	resp := ListHotelsResponse{
		Hotels: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	}
	ok(c, http.StatusOK, resp)
}

// GetHotel returns one uploaded hotel by id.
func (h *Handlers) GetHotel(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "hotel id must be a positive integer")
		return
	}
	hotel, err := h.hotelSvc.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "hotel not found")
		return
	}
	ok(c, http.StatusOK, hotel)
}

// failUpload translates upload pipeline errors into HTTP error envelopes.
func failUpload(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUnknownTable), errors.Is(err, services.ErrNoRows):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, upload.ErrMissingParent):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, upload.ErrNothingInserted):
		fail(c, http.StatusConflict, ErrCodeUploadFailed, err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeUploadFailed, err.Error())
	}
}
