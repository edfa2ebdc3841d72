// Contract pipeline HTTP handlers.
//
// This file exposes REST endpoints for the contract processing pipeline:
//   - POST   /contracts/process        (step 1: extraction + first workbooks)
//   - POST   /contracts/process-all    (all four steps in one call)
//   - POST   /contracts/{id}/rates       (step 2: expanded rate grid)
//   - POST   /contracts/{id}/terms       (step 3: terms and conditions)
//   - POST   /contracts/{id}/inventories (step 4: inventory sheets)
//   - GET    /contracts/{id}             (session status + staged files)
//   - GET    /contracts/{id}/files/{table} (download one staged workbook)
//   - GET    /contracts/{id}/archive       (download all workbooks as a zip)
//   - DELETE /contracts/{id}             (discard session and staging dir)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses.
package handlers

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aahaas/go-contract-backend/internal/http/middleware"
	"github.com/aahaas/go-contract-backend/internal/services"
	"github.com/aahaas/go-contract-backend/internal/session"
)

//
// Service contracts (context-aware)
//

// ContractService defines the pipeline operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type ContractService interface {
	// Process runs extraction and stages the first batch of workbooks.
	Process(ctx context.Context, documentPath string) (*services.ProcessResult, error)
	// StageRates stages the expanded rate grid for an existing session.
	StageRates(ctx context.Context, sessionID string) (*services.StageResult, error)
	// StageTerms stages the terms and conditions workbook.
	StageTerms(ctx context.Context, sessionID string) (*services.StageResult, error)
	// StageInventories stages rate-level and per-day inventory workbooks.
	StageInventories(ctx context.Context, sessionID string) (*services.StageResult, error)
	// ProcessAll runs every pipeline step in sequence.
	ProcessAll(ctx context.Context, documentPath string) (*services.ProcessResult, error)
	// Session returns the stored session state.
	Session(ctx context.Context, id string) (*session.Session, error)
	// Cleanup discards the session and its staging directory.
	Cleanup(ctx context.Context, id string) error
}

//
// DTOs
//

// SessionResponse describes a processing session and its staged workbooks.
type SessionResponse struct {
	SessionID string            `json:"session_id"`
	HotelName string            `json:"hotel_name"`
	Step      int               `json:"step"`
	Files     map[string]string `json:"files"`
}

//
// Helpers
//

// sessionID validates the :id path parameter as a UUID.
func sessionID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "session id must be a UUID")
		return "", false
	}
	return id, true
}

// failService translates service-layer errors into HTTP error envelopes.
func failService(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		fail(c, http.StatusNotFound, ErrCodeSessionExpired, err.Error())
	case errors.Is(err, services.ErrStepOutOfOrder):
		fail(c, http.StatusConflict, ErrCodeStepOutOfOrder, err.Error())
	case errors.Is(err, services.ErrEmptyDocument),
		errors.Is(err, services.ErrDocumentTooShort),
		errors.Is(err, services.ErrUnknownTable),
		errors.Is(err, services.ErrNoRows):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

// saveUpload stores the multipart "file" part into a temporary directory and
// returns its path plus a cleanup func. The caller must invoke cleanup once
// the pipeline no longer needs the file.
func saveUpload(c *gin.Context) (string, func(), bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, `multipart "file" part is required`)
		return "", nil, false
	}
	dir, err := os.MkdirTemp("", "contract-upload-")
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "create upload dir: "+err.Error())
		return "", nil, false
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	dst := filepath.Join(dir, filepath.Base(fh.Filename))
	if err := c.SaveUploadedFile(fh, dst); err != nil {
		cleanup()
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "store upload: "+err.Error())
		return "", nil, false
	}
	return dst, cleanup, true
}

//
// Handlers
//

// ProcessContract accepts a contract document (PDF or plain text) as a
// multipart upload, runs AI extraction, and stages the first batch of
// workbooks. It returns the session id used by the remaining steps.
func (h *Handlers) ProcessContract(c *gin.Context) {
	path, cleanup, okUpload := saveUpload(c)
	if !okUpload {
		return
	}
	defer cleanup()

	res, err := h.contractSvc.Process(c.Request.Context(), path)
	if err != nil {
		if errors.Is(err, services.ErrEmptyDocument) || errors.Is(err, services.ErrDocumentTooShort) {
			failService(c, err)
			return
		}
		fail(c, http.StatusBadGateway, ErrCodeExtractionFailed, err.Error())
		return
	}
	middleware.LoggerFrom(c).Info().
		Str("session_id", res.SessionID).
		Str("hotel", res.HotelName).
		Msg("contract processed")
	ok(c, http.StatusCreated, res)
}

// ProcessContractAll runs every pipeline step in one call and returns the
// complete set of staged workbooks.
func (h *Handlers) ProcessContractAll(c *gin.Context) {
	path, cleanup, okUpload := saveUpload(c)
	if !okUpload {
		return
	}
	defer cleanup()

	res, err := h.contractSvc.ProcessAll(c.Request.Context(), path)
	if err != nil {
		if errors.Is(err, services.ErrEmptyDocument) || errors.Is(err, services.ErrDocumentTooShort) {
			failService(c, err)
			return
		}
		fail(c, http.StatusBadGateway, ErrCodeExtractionFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, res)
}

// StageRates stages the expanded rate grid (step 2).
func (h *Handlers) StageRates(c *gin.Context) {
	id, okID := sessionID(c)
	if !okID {
		return
	}
	res, err := h.contractSvc.StageRates(c.Request.Context(), id)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, res)
}

// StageTerms stages the terms and conditions workbook (step 3).
func (h *Handlers) StageTerms(c *gin.Context) {
	id, okID := sessionID(c)
	if !okID {
		return
	}
	res, err := h.contractSvc.StageTerms(c.Request.Context(), id)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, res)
}

// StageInventories stages the inventory workbooks (step 4).
func (h *Handlers) StageInventories(c *gin.Context) {
	id, okID := sessionID(c)
	if !okID {
		return
	}
	res, err := h.contractSvc.StageInventories(c.Request.Context(), id)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, res)
}

// GetSession returns the session's current step and staged workbook paths.
func (h *Handlers) GetSession(c *gin.Context) {
	id, okID := sessionID(c)
	if !okID {
		return
	}
	sess, err := h.contractSvc.Session(c.Request.Context(), id)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, SessionResponse{
		SessionID: sess.ID,
		HotelName: sess.HotelName,
		Step:      sess.Step,
		Files:     sess.Files,
	})
}

// DownloadFile streams one staged workbook as an attachment.
func (h *Handlers) DownloadFile(c *gin.Context) {
	id, okID := sessionID(c)
	if !okID {
		return
	}
	table := strings.TrimSpace(c.Param("table"))
	sess, err := h.contractSvc.Session(c.Request.Context(), id)
	if err != nil {
		failService(c, err)
		return
	}
	path, found := sess.Files[table]
	if !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "no staged workbook for table "+table)
		return
	}
	c.FileAttachment(path, table+".xlsx")
}

// DownloadArchive streams every staged workbook as a single zip file.
func (h *Handlers) DownloadArchive(c *gin.Context) {
	id, okID := sessionID(c)
	if !okID {
		return
	}
	sess, err := h.contractSvc.Session(c.Request.Context(), id)
	if err != nil {
		failService(c, err)
		return
	}
	if len(sess.Files) == 0 {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "session has no staged workbooks")
		return
	}

	tables := make([]string, 0, len(sess.Files))
	for t := range sess.Files {
		tables = append(tables, t)
	}
	sort.Strings(tables)

	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.zip"`, sess.ID))
	c.Status(http.StatusOK)

	zw := zip.NewWriter(c.Writer)
	defer zw.Close()
	for _, table := range tables {
		if err := addToArchive(zw, table+".xlsx", sess.Files[table]); err != nil {
			// Headers are already sent; log and stop writing entries.
			middleware.LoggerFrom(c).Error().Err(err).Str("table", table).Msg("archive entry failed")
			return
		}
	}
}

// DeleteSession removes the session state and its staging directory.
func (h *Handlers) DeleteSession(c *gin.Context) {
	id, okID := sessionID(c)
	if !okID {
		return
	}
	if err := h.contractSvc.Cleanup(c.Request.Context(), id); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}

// addToArchive copies one staged workbook into the zip stream.
func addToArchive(zw *zip.Writer, name, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}
