// Package services – ContractService
//
// This file implements the ContractService, which runs the contract
// processing pipeline: document text extraction, AI extraction, rate
// expansion, and Excel staging. The pipeline is split into steps so an
// operator can review each batch of workbooks before generating the next:
//
//	Process -> hotels, hotel_details, categories, room types
//	StageRates -> expanded rate grid
//	StageTerms -> terms and conditions
//	StageInventories -> rate-level and per-day inventory sheets
//
// Session state between steps lives in a session.Store; each step re-reads
// the normalized contract from the session rather than re-running the model.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aahaas/go-contract-backend/internal/doctext"
	"github.com/aahaas/go-contract-backend/internal/expand"
	"github.com/aahaas/go-contract-backend/internal/extract"
	"github.com/aahaas/go-contract-backend/internal/schema"
	"github.com/aahaas/go-contract-backend/internal/session"
	"github.com/aahaas/go-contract-backend/internal/staging"
)

// minContractTextRunes is the shortest extracted text worth sending to the
// model; anything shorter is noise (a scan artifact, a stray note), not a
// contract.
const minContractTextRunes = 50

// Extractor is the AI extraction contract required by ContractService.
type Extractor interface {
	// ExtractContract returns the model's JSON payload for the contract
	// text, fencing already stripped.
	ExtractContract(ctx context.Context, contractText string) ([]byte, error)
}

// ContractService coordinates the processing pipeline.
type ContractService struct {
	// Extractor is the chat-completions client (or a test double).
	Extractor Extractor
	// Sessions persists pipeline state between steps.
	Sessions session.Store
	// StagingDir is the root under which per-session workbook directories
	// are created.
	StagingDir string
	// Log is the service logger.
	Log zerolog.Logger
}

// NewContractService constructs a ContractService.
func NewContractService(ex Extractor, store session.Store, stagingDir string, log zerolog.Logger) *ContractService {
	return &ContractService{Extractor: ex, Sessions: store, StagingDir: stagingDir, Log: log}
}

// ProcessResult reports the outcome of the first pipeline step.
type ProcessResult struct {
	SessionID string            `json:"session_id"`
	HotelName string            `json:"hotel_name"`
	Files     map[string]string `json:"files"`
	Warnings  []string          `json:"warnings,omitempty"`
}

// StageResult reports the outcome of a follow-up staging step.
type StageResult struct {
	SessionID string            `json:"session_id"`
	Files     map[string]string `json:"files"`
	Report    *expand.Report    `json:"report,omitempty"`
}

// Process runs extraction on the uploaded document and stages the first
// batch of workbooks: hotels, hotel_details, room categories, room types.
// It creates the session every later step keys on.
func (s *ContractService) Process(ctx context.Context, documentPath string) (*ProcessResult, error) {
	text, err := doctext.FromFile(ctx, documentPath)
	if err != nil {
		return nil, fmt.Errorf("extract document text: %w", err)
	}
	if text == "" {
		return nil, ErrEmptyDocument
	}
	// The unsupported-format placeholder is longer than the bound, so it
	// passes through and keeps the degraded pipeline alive.
	if utf8.RuneCountInString(text) < minContractTextRunes {
		return nil, ErrDocumentTooShort
	}
	if doctext.IsPlaceholder(text) {
		s.Log.Warn().Str("document", filepath.Base(documentPath)).Msg("unsupported document format, proceeding with placeholder text")
	}

	raw, err := s.Extractor.ExtractContract(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("ai extraction: %w", err)
	}
	contract := extract.Normalize(raw)
	for _, w := range contract.Warnings {
		s.Log.Warn().Str("warning", w).Msg("extraction normalization")
	}

	sess := &session.Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		HotelName: contract.Hotel["hotel_name"],
		Files:     map[string]string{},
		Step:      1,
	}
	sess.Dir = filepath.Join(s.StagingDir, sess.ID)
	if err := os.MkdirAll(sess.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	sess.Contract, err = json.Marshal(contract)
	if err != nil {
		return nil, fmt.Errorf("store contract payload: %w", err)
	}

	if err := s.stageTable(sess, schema.TableHotels, []map[string]any{anyRow(contract.Hotel)}); err != nil {
		return nil, err
	}
	if err := s.stageTable(sess, schema.TableHotelDetails, []map[string]any{anyRow(contract.Details)}); err != nil {
		return nil, err
	}

	catRows := make([]map[string]any, 0, len(contract.Categories))
	for _, name := range contract.Categories {
		catRows = append(catRows, map[string]any{"room_category_name": name})
	}
	if err := s.stageTable(sess, schema.TableRoomCategories, catRows); err != nil {
		return nil, err
	}

	roomTypes := contract.RoomTypes
	if len(roomTypes) == 0 {
		roomTypes = []string{"Single", "Double"}
	}
	typeRows := make([]map[string]any, 0, len(roomTypes))
	for _, name := range roomTypes {
		typeRows = append(typeRows, map[string]any{"room_category_type": name})
	}
	if err := s.stageTable(sess, schema.TableRoomTypes, typeRows); err != nil {
		return nil, err
	}

	if err := s.Sessions.Put(ctx, sess); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	s.Log.Info().
		Str("session_id", sess.ID).
		Str("hotel", sess.HotelName).
		Int("categories", len(contract.Categories)).
		Int("samples", len(contract.Samples)).
		Msg("contract processed")

	return &ProcessResult{
		SessionID: sess.ID,
		HotelName: sess.HotelName,
		Files:     sess.Files,
		Warnings:  contract.Warnings,
	}, nil
}

// StageRates expands the session's rate samples into the full grid and
// stages the rates workbook.
func (s *ContractService) StageRates(ctx context.Context, sessionID string) (*StageResult, error) {
	sess, contract, err := s.load(ctx, sessionID, 1)
	if err != nil {
		return nil, err
	}

	rates, _, report := expand.Expand(contract.Samples, contract.Categories)
	rows := make([]map[string]any, 0, len(rates))
	for _, r := range rates {
		rows = append(rows, r.Row())
	}
	if err := s.stageTable(sess, schema.TableRoomRates, rows); err != nil {
		return nil, err
	}

	sess.Step = 2
	if err := s.Sessions.Put(ctx, sess); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	s.Log.Info().
		Str("session_id", sess.ID).
		Int("rates", report.Rates).
		Int("periods", report.Periods).
		Strs("dropped_periods", report.DroppedPeriods).
		Msg("rates staged")
	return &StageResult{SessionID: sess.ID, Files: sess.Files, Report: &report}, nil
}

// StageTerms stages the terms and conditions workbook.
func (s *ContractService) StageTerms(ctx context.Context, sessionID string) (*StageResult, error) {
	sess, contract, err := s.load(ctx, sessionID, 2)
	if err != nil {
		return nil, err
	}

	if err := s.stageTable(sess, schema.TableTermsConditions, []map[string]any{anyRow(contract.Terms)}); err != nil {
		return nil, err
	}

	sess.Step = 3
	if err := s.Sessions.Put(ctx, sess); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	return &StageResult{SessionID: sess.ID, Files: sess.Files}, nil
}

// StageInventories stages the rate-level inventory skeletons and the
// per-day availability workbook, completing the staging pipeline.
func (s *ContractService) StageInventories(ctx context.Context, sessionID string) (*StageResult, error) {
	sess, contract, err := s.load(ctx, sessionID, 3)
	if err != nil {
		return nil, err
	}

	rates, skeletons, _ := expand.Expand(contract.Samples, contract.Categories)
	invRows := make([]map[string]any, 0, len(skeletons))
	for _, inv := range skeletons {
		invRows = append(invRows, inv.Row())
	}
	if err := s.stageTable(sess, schema.TableRoomInventories, invRows); err != nil {
		return nil, err
	}

	daily := expand.DailyInventories(rates)
	dailyRows := make([]map[string]any, 0, len(daily))
	for _, d := range daily {
		dailyRows = append(dailyRows, d.Row(0))
	}
	if err := s.stageTable(sess, schema.TableDailyInventories, dailyRows); err != nil {
		return nil, err
	}

	sess.Step = 4
	if err := s.Sessions.Put(ctx, sess); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	return &StageResult{SessionID: sess.ID, Files: sess.Files}, nil
}

// ProcessAll runs the whole staging pipeline in one call, for callers that
// do not need per-step review.
func (s *ContractService) ProcessAll(ctx context.Context, documentPath string) (*ProcessResult, error) {
	result, err := s.Process(ctx, documentPath)
	if err != nil {
		return nil, err
	}
	if _, err := s.StageRates(ctx, result.SessionID); err != nil {
		return nil, err
	}
	if _, err := s.StageTerms(ctx, result.SessionID); err != nil {
		return nil, err
	}
	stage, err := s.StageInventories(ctx, result.SessionID)
	if err != nil {
		return nil, err
	}
	result.Files = stage.Files
	return result, nil
}

// Session returns the session for id, mapping expiry to ErrSessionNotFound.
func (s *ContractService) Session(ctx context.Context, id string) (*session.Session, error) {
	sess, err := s.Sessions.Get(ctx, id)
	if errors.Is(err, session.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	return sess, err
}

// Cleanup deletes a session and its staged files.
func (s *ContractService) Cleanup(ctx context.Context, id string) error {
	sess, err := s.Sessions.Get(ctx, id)
	if errors.Is(err, session.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if sess.Dir != "" {
		if err := os.RemoveAll(sess.Dir); err != nil {
			return fmt.Errorf("remove staging dir: %w", err)
		}
	}
	return s.Sessions.Delete(ctx, id)
}

// load fetches the session, enforces step ordering, and decodes the stored
// contract.
func (s *ContractService) load(ctx context.Context, sessionID string, minStep int) (*session.Session, *extract.Contract, error) {
	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if sess.Step < minStep {
		return nil, nil, ErrStepOutOfOrder
	}
	var contract extract.Contract
	if err := json.Unmarshal(sess.Contract, &contract); err != nil {
		return nil, nil, fmt.Errorf("decode stored contract: %w", err)
	}
	return sess, &contract, nil
}

// stageTable writes one workbook and records it on the session.
func (s *ContractService) stageTable(sess *session.Session, table string, rows []map[string]any) error {
	path := filepath.Join(sess.Dir, table+".xlsx")
	if err := staging.WriteTable(path, table, schema.HotelColumns(table), rows); err != nil {
		return fmt.Errorf("stage %s: %w", table, err)
	}
	sess.Files[table] = path
	return nil
}

// anyRow widens a string-valued row to the staging writer's shape.
func anyRow(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
