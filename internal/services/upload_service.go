// Package services – UploadService
//
// This file implements the UploadService, the thin layer between the HTTP
// handlers and the upload orchestrator: it parses reviewed workbooks back
// into rows, validates table names against the managed schema, and delegates
// the database work.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aahaas/go-contract-backend/internal/schema"
	"github.com/aahaas/go-contract-backend/internal/staging"
	"github.com/aahaas/go-contract-backend/internal/upload"
)

// UploadService validates and forwards reviewed workbooks to the database.
type UploadService struct {
	// Orchestrator performs the actual inserts.
	Orchestrator *upload.Orchestrator
}

// NewUploadService constructs an UploadService.
func NewUploadService(o *upload.Orchestrator) *UploadService {
	return &UploadService{Orchestrator: o}
}

// UploadHotelTable parses the workbook and inserts its rows into the named
// hotel table, forcing hotelID onto child-table rows when positive.
func (s *UploadService) UploadHotelTable(ctx context.Context, table string, workbook io.Reader, hotelID int64) (*upload.BatchResult, error) {
	if _, ok := schema.Hotel(table); !ok {
		return nil, ErrUnknownTable
	}
	rows, err := parseRows(workbook)
	if err != nil {
		return nil, err
	}
	return s.Orchestrator.UploadHotelTable(ctx, table, rows, hotelID)
}

// UploadRates parses the rates workbook and runs the combined rates +
// inventories upload for the hotel.
func (s *UploadService) UploadRates(ctx context.Context, hotelID int64, workbook io.Reader) (*upload.RatesResult, error) {
	rows, err := parseRows(workbook)
	if err != nil {
		return nil, err
	}
	return s.Orchestrator.UploadRatesAndInventories(ctx, hotelID, rows)
}

// UploadHotelAll pushes a full set of staged workbooks into the database in
// schema order (hotels first, daily inventories last). Tables without a
// workbook are skipped, as are workbooks that parse to zero rows. When
// hotelID is zero and a hotels workbook is present, the first generated
// hotel id scopes every later table. The rates table goes through the
// watermark path so inventories derive from the freshly inserted rows; its
// staged inventory workbooks are then redundant and are skipped.
func (s *UploadService) UploadHotelAll(ctx context.Context, workbooks map[string]io.Reader, hotelID int64) (map[string]*upload.BatchResult, int64, error) {
	for table := range workbooks {
		if _, ok := schema.Hotel(table); !ok {
			return nil, 0, ErrUnknownTable
		}
	}

	_, ratesStaged := workbooks[schema.TableRoomRates]
	results := make(map[string]*upload.BatchResult, len(workbooks))
	for _, table := range schema.HotelUploadOrder {
		wb, staged := workbooks[table]
		if !staged {
			continue
		}
		if ratesStaged && (table == schema.TableRoomInventories || table == schema.TableDailyInventories) {
			continue
		}
		rows, err := parseRows(wb)
		if errors.Is(err, ErrNoRows) {
			continue
		}
		if err != nil {
			return results, hotelID, fmt.Errorf("parse %s: %w", table, err)
		}

		if table == schema.TableRoomRates {
			rates, err := s.Orchestrator.UploadRatesAndInventories(ctx, hotelID, rows)
			if err != nil {
				return results, hotelID, err
			}
			results[schema.TableRoomRates] = rates.Rates
			results[schema.TableRoomInventories] = rates.Inventories
			results[schema.TableDailyInventories] = rates.Daily
			continue
		}

		batch, err := s.Orchestrator.UploadHotelTable(ctx, table, rows, hotelID)
		if err != nil {
			return results, hotelID, err
		}
		results[table] = batch
		if table == schema.TableHotels && hotelID == 0 && len(batch.IDs) > 0 {
			hotelID = batch.IDs[0]
		}
	}
	if len(results) == 0 {
		return nil, hotelID, ErrNoRows
	}
	return results, hotelID, nil
}

// UploadLifestyleAtomic inserts all provided lifestyle tables in one
// transaction. Unknown table names fail before any database work.
func (s *UploadService) UploadLifestyleAtomic(ctx context.Context, tables map[string][]map[string]any) (*upload.LifestyleResult, error) {
	for table := range tables {
		if _, ok := schema.Lifestyle(table); !ok {
			return nil, ErrUnknownTable
		}
	}
	return s.Orchestrator.UploadLifestyleAtomic(ctx, tables)
}

// UploadLifestyleTable inserts one lifestyle table for the resumable flow.
func (s *UploadService) UploadLifestyleTable(ctx context.Context, table string, rows []map[string]any, lifestyleID, rateID int64) (*upload.BatchResult, error) {
	if _, ok := schema.Lifestyle(table); !ok {
		return nil, ErrUnknownTable
	}
	return s.Orchestrator.UploadLifestyleTable(ctx, table, rows, lifestyleID, rateID)
}

// parseRows reads a workbook into insertable rows.
func parseRows(workbook io.Reader) ([]map[string]any, error) {
	tbl, err := staging.ParseWorkbook(workbook)
	if err != nil {
		return nil, err
	}
	if len(tbl.Rows) == 0 {
		return nil, ErrNoRows
	}
	rows := make([]map[string]any, 0, len(tbl.Rows))
	for _, r := range tbl.Rows {
		row := make(map[string]any, len(r))
		for k, v := range r {
			row[k] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}
