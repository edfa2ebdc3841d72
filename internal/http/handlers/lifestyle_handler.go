// Lifestyle package HTTP handlers.
//
// This file exposes REST endpoints for lifestyle product ingestion:
//   - POST /lifestyle/preview          (build staging tables, no upload)
//   - POST /lifestyle                  (build + upload atomically)
//   - POST /lifestyle/tables/{table}   (upload one table, resumable flow)
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aahaas/go-contract-backend/internal/http/middleware"
	"github.com/aahaas/go-contract-backend/internal/services"
)

// LifestyleBuilder turns lifestyle product payloads into per-table staging
// rows ready for upload.
type LifestyleBuilder interface {
	BuildTables(products []services.LifestyleProduct) map[string][]map[string]any
}

//
// DTOs
//

// LifestyleRequest is the JSON payload for lifestyle ingestion endpoints.
type LifestyleRequest struct {
	Products []services.LifestyleProduct `json:"products" binding:"required,min=1"`
}

// LifestyleTableRequest is the JSON payload for a single-table lifestyle
// upload. LifestyleID and RateID seed foreign keys for rows that do not
// carry their own.
type LifestyleTableRequest struct {
	Rows        []map[string]any `json:"rows" binding:"required,min=1"`
	LifestyleID int64            `json:"lifestyle_id"`
	RateID      int64            `json:"rate_id"`
}

//
// Handlers
//

// PreviewLifestyle builds the staging tables for the supplied products and
// returns them without touching the database. Operators use this to inspect
// the generated rows (including the 210-day inventory horizon) before upload.
func (h *Handlers) PreviewLifestyle(c *gin.Context) {
	var req LifestyleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "at least one product is required")
		return
	}
	tables := h.lifestyleSvc.BuildTables(req.Products)
	ok(c, http.StatusOK, gin.H{"tables": tables})
}

// UploadLifestyle builds the staging tables and uploads all of them in a
// single transaction. Any failing table rolls the whole product back.
func (h *Handlers) UploadLifestyle(c *gin.Context) {
	var req LifestyleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "at least one product is required")
		return
	}
	tables := h.lifestyleSvc.BuildTables(req.Products)

	res, err := h.uploadSvc.UploadLifestyleAtomic(c.Request.Context(), tables)
	if err != nil {
		failUpload(c, err)
		return
	}
	middleware.LoggerFrom(c).Info().
		Int("products", len(req.Products)).
		Int("lifestyle_ids", len(res.LifestyleIDs)).
		Msg("lifestyle upload committed")
	ok(c, http.StatusCreated, res)
}

// UploadLifestyleTable uploads one lifestyle table outside the atomic flow.
// Rows keep whatever inserts, and per-row errors are reported back rather
// than aborting the batch.
func (h *Handlers) UploadLifestyleTable(c *gin.Context) {
	table := strings.TrimSpace(c.Param("table"))

	var req LifestyleTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "at least one row is required")
		return
	}

	res, err := h.uploadSvc.UploadLifestyleTable(c.Request.Context(), table, req.Rows, req.LifestyleID, req.RateID)
	if err != nil {
		failUpload(c, err)
		return
	}
	ok(c, http.StatusOK, res)
}
