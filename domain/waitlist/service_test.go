package waitlist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/Vijayesvar/PLEDG-MF/internal/log"
	"github.com/Vijayesvar/PLEDG-MF/internal/storage"
	apperrors "github.com/Vijayesvar/PLEDG-MF/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func validCreateRequest() *CreateEntryRequest {
	return &CreateEntryRequest{
		FirstName:    " John ",
		LastName:     "Doe",
		Email:        "  John.Doe@Example.COM ",
		Phone:        "+919800000002",
		InterestType: "lender",
		AgreeToTerms: true,
	}
}

func storedRecord(id int64) Record {
	return Record{
		ID:           id,
		FirstName:    "John",
		LastName:     "Doe",
		Email:        "john.doe@example.com",
		Phone:        "+919800000002",
		InterestType: InterestLender,
		AgreeToTerms: true,
		Status:       StatusPending,
		SubmittedAt:  time.Date(2026, 5, 14, 10, 30, 0, 0, time.UTC),
	}
}

func TestWaitlistService_CreateEntry(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := NewMockStore(ctrl)
	service := NewWaitlistService(log.NewDiscardLogger(), mockStore)

	t.Run("successful creation normalises the input", func(t *testing.T) {
		mockStore.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, in Input) (Record, error) {
				assert.Equal(t, "john.doe@example.com", in.Email)
				assert.Equal(t, "John", in.FirstName)
				assert.Equal(t, InterestLender, in.InterestType)
				return storedRecord(7), nil
			})

		result, err := service.CreateEntry(context.Background(), validCreateRequest())

		require.NoError(t, err)
		assert.Equal(t, int64(7), result.ID)
		assert.Equal(t, "pending", result.Status)
		assert.Equal(t, "2026-05-14T10:30:00.000Z", result.SubmittedAt)
		assert.Nil(t, result.UpdatedAt)
	})

	t.Run("write failure", func(t *testing.T) {
		mockStore.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			Return(Record{}, &PersistenceError{Op: "create", Key: "k", Err: errors.New("disk full")})

		result, err := service.CreateEntry(context.Background(), validCreateRequest())

		assert.Nil(t, result)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeStorageError))
		assert.Equal(t, apperrors.StatusInternalServerError, apperrors.HTTPStatusCode(err))
	})

	t.Run("open circuit maps to unavailable", func(t *testing.T) {
		mockStore.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			Return(Record{}, &PersistenceError{Op: "create", Key: "k", Err: fmt.Errorf("%w: k", storage.ErrSlotUnavailable)})

		_, err := service.CreateEntry(context.Background(), validCreateRequest())

		assert.Equal(t, apperrors.StatusServiceUnavailable, apperrors.HTTPStatusCode(err))
	})

	t.Run("terms not accepted", func(t *testing.T) {
		req := validCreateRequest()
		req.AgreeToTerms = false

		_, err := service.CreateEntry(context.Background(), req)

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidRequest))
	})

	t.Run("nil request", func(t *testing.T) {
		_, err := service.CreateEntry(context.Background(), nil)

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidRequest))
	})
}

func TestWaitlistService_FindEntryByID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := NewMockStore(ctrl)
	service := NewWaitlistService(log.NewDiscardLogger(), mockStore)

	t.Run("found", func(t *testing.T) {
		mockStore.EXPECT().Get(gomock.Any(), int64(7)).Return(storedRecord(7), true)

		result, err := service.FindEntryByID(context.Background(), 7)

		require.NoError(t, err)
		assert.Equal(t, "john.doe@example.com", result.Email)
	})

	t.Run("absent", func(t *testing.T) {
		mockStore.EXPECT().Get(gomock.Any(), int64(8)).Return(Record{}, false)

		result, err := service.FindEntryByID(context.Background(), 8)

		assert.Nil(t, result)
		assert.Equal(t, apperrors.StatusNotFound, apperrors.HTTPStatusCode(err))
	})

	t.Run("invalid id", func(t *testing.T) {
		_, err := service.FindEntryByID(context.Background(), 0)

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidRequest))
	})
}

func TestWaitlistService_UpdateEntry(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := NewMockStore(ctrl)
	service := NewWaitlistService(log.NewDiscardLogger(), mockStore)

	t.Run("passes only supplied fields", func(t *testing.T) {
		updatedAt := time.Date(2026, 5, 15, 8, 0, 0, 0, time.UTC)
		updated := storedRecord(7)
		updated.Company = "Acme"
		updated.UpdatedAt = &updatedAt

		mockStore.EXPECT().
			Update(gomock.Any(), int64(7), Patch{Company: ptr("Acme"), Email: ptr("new@example.com")}).
			Return(updated, true, nil)

		result, err := service.UpdateEntry(context.Background(), 7, &UpdateEntryRequest{
			Company: ptr(" Acme "),
			Email:   ptr("NEW@example.com"),
		})

		require.NoError(t, err)
		assert.Equal(t, "Acme", result.Company)
		require.NotNil(t, result.UpdatedAt)
		assert.Equal(t, "2026-05-15T08:00:00.000Z", *result.UpdatedAt)
	})

	t.Run("empty patch", func(t *testing.T) {
		_, err := service.UpdateEntry(context.Background(), 7, &UpdateEntryRequest{})

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidRequest))
	})

	t.Run("absent", func(t *testing.T) {
		mockStore.EXPECT().Update(gomock.Any(), int64(9), gomock.Any()).Return(Record{}, false, nil)

		_, err := service.UpdateEntry(context.Background(), 9, &UpdateEntryRequest{Role: ptr("CFO")})

		assert.Equal(t, apperrors.StatusNotFound, apperrors.HTTPStatusCode(err))
	})

	t.Run("write failure", func(t *testing.T) {
		mockStore.EXPECT().
			Update(gomock.Any(), int64(7), gomock.Any()).
			Return(Record{}, false, &PersistenceError{Op: "update", Key: "k", Err: errors.New("boom")})

		_, err := service.UpdateEntry(context.Background(), 7, &UpdateEntryRequest{Role: ptr("CFO")})

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeStorageError))
	})
}

func TestWaitlistService_UpdateStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := NewMockStore(ctrl)
	service := NewWaitlistService(log.NewDiscardLogger(), mockStore)

	contacted := storedRecord(7)
	contacted.Status = StatusContacted
	mockStore.EXPECT().
		Update(gomock.Any(), int64(7), Patch{Status: ptr(StatusContacted)}).
		Return(contacted, true, nil)

	result, err := service.UpdateStatus(context.Background(), 7, &UpdateStatusRequest{Status: "contacted"})
	require.NoError(t, err)
	assert.Equal(t, "contacted", result.Status)

	_, err = service.UpdateStatus(context.Background(), 7, &UpdateStatusRequest{Status: "archived"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidRequest))
}

func TestWaitlistService_ListEntries(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := NewMockStore(ctrl)
	service := NewWaitlistService(log.NewDiscardLogger(), mockStore)

	borrower := storedRecord(1)
	borrower.InterestType = InterestBorrower
	borrower.Company = "Ünïcode Traders"
	lender := storedRecord(2)

	t.Run("no filter lists everything", func(t *testing.T) {
		mockStore.EXPECT().List(gomock.Any()).Return([]Record{borrower, lender})

		result, err := service.ListEntries(context.Background(), Query{})

		require.NoError(t, err)
		assert.Equal(t, 2, result.Count)
	})

	t.Run("status and interest combine", func(t *testing.T) {
		mockStore.EXPECT().FilterByStatus(gomock.Any(), StatusPending).Return([]Record{borrower, lender})

		result, err := service.ListEntries(context.Background(), Query{Status: StatusPending, Interest: InterestLender})

		require.NoError(t, err)
		require.Len(t, result.Entries, 1)
		assert.Equal(t, int64(2), result.Entries[0].ID)
	})

	t.Run("interest only", func(t *testing.T) {
		mockStore.EXPECT().FilterByInterest(gomock.Any(), InterestBorrower).Return([]Record{borrower})

		result, err := service.ListEntries(context.Background(), Query{Interest: InterestBorrower})

		require.NoError(t, err)
		assert.Equal(t, 1, result.Count)
	})

	t.Run("search folds case", func(t *testing.T) {
		mockStore.EXPECT().List(gomock.Any()).Return([]Record{borrower, lender})

		result, err := service.ListEntries(context.Background(), Query{Search: "ÜNÏCODE"})

		require.NoError(t, err)
		require.Len(t, result.Entries, 1)
		assert.Equal(t, int64(1), result.Entries[0].ID)
	})
}

func TestWaitlistService_DeleteAndClear(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := NewMockStore(ctrl)
	service := NewWaitlistService(log.NewDiscardLogger(), mockStore)

	mockStore.EXPECT().Delete(gomock.Any(), int64(7)).Return(true)
	assert.NoError(t, service.DeleteEntry(context.Background(), 7))

	mockStore.EXPECT().Delete(gomock.Any(), int64(7)).Return(false)
	err := service.DeleteEntry(context.Background(), 7)
	assert.Equal(t, apperrors.StatusInternalServerError, apperrors.HTTPStatusCode(err))

	mockStore.EXPECT().ClearAll(gomock.Any()).Return(true)
	assert.NoError(t, service.ClearEntries(context.Background()))

	mockStore.EXPECT().ClearAll(gomock.Any()).Return(false)
	assert.True(t, apperrors.IsType(service.ClearEntries(context.Background()), apperrors.ErrorTypeStorageError))
}

func TestWaitlistService_ExportEntries(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := NewMockStore(ctrl)
	svc := NewWaitlistService(log.NewDiscardLogger(), mockStore).(*waitlistService)
	svc.now = func() time.Time { return time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC) }

	mockStore.EXPECT().
		Export(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, w io.Writer) error {
			_, err := w.Write([]byte("[]"))
			return err
		})

	result, err := svc.ExportEntries(context.Background(), ExportFormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "pledg_waitlist_2026-03-09.json", result.FileName)
	assert.Equal(t, "application/json", result.ContentType)
	assert.Equal(t, "[]", string(result.Body))

	mockStore.EXPECT().ExportCSV(gomock.Any(), gomock.Any()).Return(errors.New("frame"))
	_, err = svc.ExportEntries(context.Background(), ExportFormatCSV)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternalServerError))

	_, err = svc.ExportEntries(context.Background(), ExportFormat("xml"))
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidRequest))
}
