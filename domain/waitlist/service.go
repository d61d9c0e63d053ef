package waitlist

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/Vijayesvar/PLEDG-MF/internal/log"
	"github.com/Vijayesvar/PLEDG-MF/internal/storage"
	apperrors "github.com/Vijayesvar/PLEDG-MF/pkg/errors"
)

type WaitlistService interface {
	// CreateEntry stores a new pending signup.
	CreateEntry(ctx context.Context, req *CreateEntryRequest) (*EntryResponse, error)

	// FindEntryByID retrieves a waitlist entry by its id.
	FindEntryByID(ctx context.Context, id int64) (*EntryResponse, error)

	// UpdateEntry overwrites the supplied fields of an existing entry.
	UpdateEntry(ctx context.Context, id int64, req *UpdateEntryRequest) (*EntryResponse, error)

	// UpdateStatus moves an entry to any status.
	UpdateStatus(ctx context.Context, id int64, req *UpdateStatusRequest) (*EntryResponse, error)

	// ListEntries returns the entries matching every filter in query, in submission order.
	ListEntries(ctx context.Context, query Query) (*ListEntriesResponse, error)

	// DeleteEntry removes an entry. Deleting an unknown id succeeds.
	DeleteEntry(ctx context.Context, id int64) error

	// ClearEntries removes every entry.
	ClearEntries(ctx context.Context) error

	GetStats(ctx context.Context) (*Statistics, error)

	// ExportEntries renders a snapshot in the requested format.
	ExportEntries(ctx context.Context, format ExportFormat) (*ExportResult, error)
}

type waitlistService struct {
	logger *log.Logger
	store  Store
	now    func() time.Time
}

func NewWaitlistService(logger *log.Logger, store Store) WaitlistService {
	return &waitlistService{logger: logger, store: store, now: time.Now}
}

// storeError keeps an open circuit distinguishable (503) from a failed write (500).
func storeError(message string, err error) error {
	if errors.Is(err, storage.ErrSlotUnavailable) {
		return apperrors.NewStorageUnavailableError("Waitlist storage is temporarily unavailable", err)
	}
	return apperrors.NewStorageError(message, err)
}

func (s *waitlistService) CreateEntry(ctx context.Context, req *CreateEntryRequest) (*EntryResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if req == nil {
		logger.Error("CreateEntry received empty request")
		return nil, apperrors.NewInvalidRequestError("request cannot be nil", nil)
	}
	if !req.AgreeToTerms {
		return nil, apperrors.NewInvalidRequestError("terms must be accepted", nil)
	}
	if !InterestType(req.InterestType).IsValid() {
		return nil, apperrors.NewInvalidRequestError("invalid interest type", nil)
	}

	record, err := s.store.Create(ctx, ToInput(req))
	if err != nil {
		logger.Error("Failed to create waitlist entry", "error", err)
		return nil, storeError("Failed to save waitlist entry", err)
	}

	logger.Info("Waitlist entry created", "id", record.ID, "interest_type", record.InterestType)
	response := ToEntryResponse(record)
	return &response, nil
}

func (s *waitlistService) FindEntryByID(ctx context.Context, id int64) (*EntryResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if id <= 0 {
		logger.Error("FindEntryByID received invalid ID")
		return nil, apperrors.NewInvalidRequestError("invalid entry ID", nil)
	}

	record, ok := s.store.Get(ctx, id)
	if !ok {
		return nil, apperrors.NewNotFoundError("Waitlist entry not found", nil)
	}

	response := ToEntryResponse(record)
	return &response, nil
}

func (s *waitlistService) UpdateEntry(ctx context.Context, id int64, req *UpdateEntryRequest) (*EntryResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if id <= 0 {
		logger.Error("UpdateEntry received invalid ID")
		return nil, apperrors.NewInvalidRequestError("invalid entry ID", nil)
	}
	if req == nil {
		logger.Error("UpdateEntry received empty request")
		return nil, apperrors.NewInvalidRequestError("request cannot be nil", nil)
	}

	patch := ToPatch(req)
	if patch.IsEmpty() {
		logger.Error("UpdateEntry received request with no fields to update")
		return nil, apperrors.NewInvalidRequestError("at least one field must be provided for update", nil)
	}
	if patch.InterestType != nil && !patch.InterestType.IsValid() {
		return nil, apperrors.NewInvalidRequestError("invalid interest type", nil)
	}
	if patch.Status != nil && !patch.Status.IsValid() {
		return nil, apperrors.NewInvalidRequestError("invalid status", nil)
	}

	return s.update(ctx, logger, id, patch)
}

func (s *waitlistService) UpdateStatus(ctx context.Context, id int64, req *UpdateStatusRequest) (*EntryResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if id <= 0 {
		logger.Error("UpdateStatus received invalid ID")
		return nil, apperrors.NewInvalidRequestError("invalid entry ID", nil)
	}
	if req == nil || !Status(req.Status).IsValid() {
		return nil, apperrors.NewInvalidRequestError("invalid status", nil)
	}

	status := Status(req.Status)
	return s.update(ctx, logger, id, Patch{Status: &status})
}

func (s *waitlistService) update(ctx context.Context, logger *log.Logger, id int64, patch Patch) (*EntryResponse, error) {
	record, ok, err := s.store.Update(ctx, id, patch)
	if err != nil {
		logger.Error("Failed to update waitlist entry", "id", id, "error", err)
		return nil, storeError("Failed to update waitlist entry", err)
	}
	if !ok {
		return nil, apperrors.NewNotFoundError("Waitlist entry not found", nil)
	}

	response := ToEntryResponse(record)
	return &response, nil
}

func (s *waitlistService) ListEntries(ctx context.Context, query Query) (*ListEntriesResponse, error) {
	var records []Record
	switch {
	case query.Status != "":
		records = s.store.FilterByStatus(ctx, query.Status)
	case query.Interest != "":
		records = s.store.FilterByInterest(ctx, query.Interest)
	default:
		records = s.store.List(ctx)
	}

	if query.Status != "" && query.Interest != "" {
		records = filter(records, func(r Record) bool { return r.InterestType == query.Interest })
	}
	records = Search(records, query.Search)

	entries := ToEntryResponses(records)
	return &ListEntriesResponse{Entries: entries, Count: len(entries)}, nil
}

func (s *waitlistService) DeleteEntry(ctx context.Context, id int64) error {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if id <= 0 {
		logger.Error("DeleteEntry received invalid ID")
		return apperrors.NewInvalidRequestError("invalid entry ID", nil)
	}

	if !s.store.Delete(ctx, id) {
		logger.Error("Failed to delete waitlist entry", "id", id)
		return apperrors.NewStorageError("Failed to delete waitlist entry", nil)
	}

	return nil
}

func (s *waitlistService) ClearEntries(ctx context.Context) error {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if !s.store.ClearAll(ctx) {
		logger.Error("Failed to clear waitlist")
		return apperrors.NewStorageError("Failed to clear waitlist", nil)
	}

	logger.Warn("Waitlist cleared")
	return nil
}

func (s *waitlistService) GetStats(ctx context.Context) (*Statistics, error) {
	stats := s.store.Stats(ctx)
	return &stats, nil
}

func (s *waitlistService) ExportEntries(ctx context.Context, format ExportFormat) (*ExportResult, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	var (
		buf bytes.Buffer
		err error
	)
	switch format {
	case ExportFormatJSON:
		err = s.store.Export(ctx, &buf)
	case ExportFormatCSV:
		err = s.store.ExportCSV(ctx, &buf)
	default:
		return nil, apperrors.NewInvalidRequestError("unsupported export format", nil)
	}
	if err != nil {
		logger.Error("Failed to export waitlist", "format", format, "error", err)
		return nil, apperrors.NewInternalServerError("Failed to export waitlist", err)
	}

	return &ExportResult{
		FileName:    format.FileName(s.now()),
		ContentType: format.ContentType(),
		Body:        buf.Bytes(),
	}, nil
}
