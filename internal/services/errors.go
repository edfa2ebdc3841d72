// Package services defines the business logic for contract processing and
// uploads. This file centralizes common service-level error values so that
// they can be consistently returned by service methods and checked by
// callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler layer.
package services

import "errors"

var (
	// ErrSessionNotFound indicates that the processing session does not
	// exist or has expired.
	ErrSessionNotFound = errors.New("processing session not found or expired")

	// ErrStepOutOfOrder is returned when a pipeline step is requested
	// before its predecessor has completed.
	ErrStepOutOfOrder = errors.New("previous processing step not completed")

	// ErrEmptyDocument is returned when an uploaded contract contains no
	// usable text.
	ErrEmptyDocument = errors.New("document contains no extractable text")

	// ErrDocumentTooShort is returned when the extracted text is too short
	// to plausibly be a contract.
	ErrDocumentTooShort = errors.New("document text too short to be a contract")

	// ErrUnknownTable is returned for upload requests naming a table the
	// pipeline does not manage.
	ErrUnknownTable = errors.New("unknown destination table")

	// ErrNoRows is returned when an uploaded workbook parses to zero data
	// rows.
	ErrNoRows = errors.New("workbook contains no data rows")
)
