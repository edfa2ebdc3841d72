// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as correlation IDs, logging, panic recovery, metrics, compression, and
// CORS.
//
// Design goals:
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/aahaas/go-contract-backend/internal/config"
	"github.com/aahaas/go-contract-backend/internal/domain"
	"github.com/aahaas/go-contract-backend/internal/http/handlers"
	"github.com/aahaas/go-contract-backend/internal/http/middleware"
	"github.com/aahaas/go-contract-backend/internal/repo"
	"github.com/aahaas/go-contract-backend/internal/schema"
	"github.com/aahaas/go-contract-backend/internal/services"
	"github.com/aahaas/go-contract-backend/internal/session"
	"github.com/aahaas/go-contract-backend/internal/upload"
)

// hotelRepoShim adapts the repository free functions to the
// handlers.HotelService interface. This keeps handlers decoupled from the
// concrete repo package while reusing existing functions.
type hotelRepoShim struct {
	db *gorm.DB
}

// Get proxies repo.GetHotel.
func (s hotelRepoShim) Get(ctx context.Context, id int64) (*domain.Hotel, error) {
	return repo.GetHotel(ctx, s.db, id)
}

// ListPage proxies repo.CountHotels and repo.ListHotelsPage.
func (s hotelRepoShim) ListPage(ctx context.Context, page, pageSize int) ([]domain.Hotel, int64, error) {
	total, err := repo.CountHotels(ctx, s.db)
	if err != nil {
		return nil, 0, err
	}
	items, err := repo.ListHotelsPage(ctx, s.db, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// LastID proxies repo.MaxID against the hotels table.
func (s hotelRepoShim) LastID(ctx context.Context) (int64, error) {
	return repo.MaxID(ctx, s.db, schema.TableHotels)
}

// Rates proxies repo.RatesByHotel.
func (s hotelRepoShim) Rates(ctx context.Context, hotelID int64) ([]domain.RoomRate, error) {
	return repo.RatesByHotel(ctx, s.db, hotelID)
}

// AddCategory proxies repo.CreateRoomCategory.
func (s hotelRepoShim) AddCategory(ctx context.Context, hotelID int64, name string) (*domain.RoomCategory, error) {
	return repo.CreateRoomCategory(ctx, s.db, hotelID, name)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures correlation IDs, structured logging, panic recovery,
// Prometheus metrics, response compression, CORS, health and metrics
// endpoints, and then mounts the versioned public API under /api/v*.
//
// Middleware order matters:
//  1. RequestID: generate/propagate correlation id
//  2. Logger: structured access logs
//  3. Recovery: capture panics after logger
//  4. Body size limiter (workbook and PDF uploads can be large)
//  5. Metrics
//  6. Gzip compression (staged workbook JSON responses compress well)
//  7. CORS
func RegisterRoutes(r *gin.Engine, db *gorm.DB, store session.Store, ex services.Extractor, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 2) Structured logging
	r.Use(middleware.Logger())

	// 3) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 4) Global body size limit
	r.Use(limitBody(cfg.MaxUploadSize))

	// 5) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 6) Compress JSON responses. Workbook and zip downloads are already
	// compressed containers, so skip them.
	r.Use(gzip.Gzip(gzip.DefaultCompression,
		gzip.WithExcludedPathsRegexs([]string{`.*/files/.*`, `.*/archive$`, `.*/rates/workbook$`})))

	// 7) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "Content-Disposition"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "Content-Disposition"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Dependency injection: services ← extractor/store/db
	contractSvc := services.NewContractService(ex, store, cfg.StagingDir, log.With().Str("component", "contracts").Logger())
	uploadSvc := services.NewUploadService(upload.NewOrchestrator(db, log.With().Str("component", "upload").Logger()))
	lifestyleSvc := services.NewLifestyleService()
	h := handlers.New(contractSvc, uploadSvc, lifestyleSvc, hotelRepoShim{db: db})

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Contract pipeline
		api.POST("/contracts/process", h.ProcessContract)
		api.POST("/contracts/process-all", h.ProcessContractAll)
		api.POST("/contracts/:id/rates", h.StageRates)
		api.POST("/contracts/:id/terms", h.StageTerms)
		api.POST("/contracts/:id/inventories", h.StageInventories)
		api.GET("/contracts/:id", h.GetSession)
		api.GET("/contracts/:id/files/:table", h.DownloadFile)
		api.GET("/contracts/:id/archive", h.DownloadArchive)
		api.DELETE("/contracts/:id", h.DeleteSession)

		// Database uploads
		api.POST("/uploads/tables/:table", h.UploadTable)
		api.POST("/uploads/rates", h.UploadRates)
		api.POST("/uploads/database", h.UploadDatabase)

		// Lifestyle ingestion
		api.POST("/lifestyle/preview", h.PreviewLifestyle)
		api.POST("/lifestyle", h.UploadLifestyle)
		api.POST("/lifestyle/tables/:table", h.UploadLifestyleTable)

		// Hotels
		api.GET("/hotels", h.ListHotels)
		api.GET("/hotels/last-id", h.LastHotelID)
		api.GET("/hotels/:id", h.GetHotel)
		api.GET("/hotels/:id/rates", h.HotelRates)
		api.GET("/hotels/:id/rates/workbook", h.DownloadHotelRates)
		api.POST("/hotels/:id/categories", h.AddRoomCategory)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
