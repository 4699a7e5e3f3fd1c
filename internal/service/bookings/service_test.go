package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfpdev/MFP-BookingService/internal/domain"
	bookingRepo "github.com/mfpdev/MFP-BookingService/internal/infra/storage/booking"
	workflowRepo "github.com/mfpdev/MFP-BookingService/internal/infra/storage/workflow"
	"github.com/mfpdev/MFP-BookingService/internal/integrations/notify"
	"github.com/mfpdev/MFP-BookingService/internal/service/bookings/models"
	"github.com/mfpdev/MFP-BookingService/pkg/types"
)

type fakeBookingRepo struct {
	bookings  map[int64]*domain.Booking
	cancelled map[int64]string
}

func newFakeBookingRepo(bookings ...*domain.Booking) *fakeBookingRepo {
	repo := &fakeBookingRepo{
		bookings:  make(map[int64]*domain.Booking),
		cancelled: make(map[int64]string),
	}
	for _, b := range bookings {
		repo.bookings[b.ID] = b
	}
	return repo
}

func (r *fakeBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return b, nil
}

func (r *fakeBookingRepo) GetByUserID(_ context.Context, userID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	var result []*domain.Booking
	for _, b := range r.bookings {
		if b.UserID != userID {
			continue
		}
		if status != nil && b.Status != *status {
			continue
		}
		result = append(result, b)
	}
	return result, nil
}

func (r *fakeBookingRepo) GetByFacilityWithFilter(_ context.Context, filter domain.FacilityBookingsFilter) ([]*domain.Booking, error) {
	var result []*domain.Booking
	for _, b := range r.bookings {
		if b.FacilityID != filter.FacilityID {
			continue
		}
		if filter.ZoneID != nil && b.ZoneID != *filter.ZoneID {
			continue
		}
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		if filter.Status == nil && !filter.IncludeInactive && !b.IsActive() {
			continue
		}
		result = append(result, b)
	}
	return result, nil
}

func (r *fakeBookingRepo) Cancel(_ context.Context, id int64, reason string) error {
	b, ok := r.bookings[id]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	b.Status = domain.StatusCancelled
	r.cancelled[id] = reason
	return nil
}

type fakeWorkflowRepo struct {
	workflows map[int64]*domain.ApprovalWorkflow
}

func (r *fakeWorkflowRepo) GetByBookingID(_ context.Context, bookingID int64) (*domain.ApprovalWorkflow, error) {
	wf, ok := r.workflows[bookingID]
	if !ok {
		return nil, workflowRepo.ErrWorkflowNotFound
	}
	return wf, nil
}

type fakeNotifier struct {
	cancelled []notify.BookingPayload
}

func (n *fakeNotifier) BookingCancelled(_ context.Context, payload notify.BookingPayload) {
	n.cancelled = append(n.cancelled, payload)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func mustTimeRange(t *testing.T, s string) types.TimeRange {
	t.Helper()
	tr, err := types.NewTimeRangeFromString(s)
	require.NoError(t, err)
	return tr
}

func testBooking(t *testing.T, id, userID int64, status domain.BookingStatus) *domain.Booking {
	t.Helper()
	date := time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC)
	occ := domain.Occurrence{ZoneID: 10, Date: date, Slot: mustTimeRange(t, "18:00-20:00")}
	return &domain.Booking{
		ID:          id,
		FacilityID:  1,
		ZoneID:      10,
		UserID:      userID,
		ActorType:   domain.ActorPrivatePerson,
		Occurrences: []domain.Occurrence{occ},
		Status:      status,
		Pricing: domain.PricingBreakdown{
			Lines: []domain.PriceLine{{Occurrence: occ, BasePrice: 800, Multiplier: 1.0, FinalPrice: 800}},
			Total: 800,
		},
		CreatedAt: time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC),
	}
}

func newTestService(repo *fakeBookingRepo, wfRepo *fakeWorkflowRepo, notifier *fakeNotifier) *Service {
	if wfRepo == nil {
		wfRepo = &fakeWorkflowRepo{workflows: map[int64]*domain.ApprovalWorkflow{}}
	}
	if notifier == nil {
		notifier = &fakeNotifier{}
	}
	return NewService(repo, wfRepo, notifier, nopLogger{})
}

func TestService_GetByID_Owner(t *testing.T) {
	repo := newFakeBookingRepo(testBooking(t, 1, 42, domain.StatusApproved))
	wfRepo := &fakeWorkflowRepo{workflows: map[int64]*domain.ApprovalWorkflow{
		1: {ID: 5, BookingID: 1, Status: domain.WorkflowApproved},
	}}
	svc := newTestService(repo, wfRepo, nil)

	resp, err := svc.GetByID(context.Background(), 1, 42)
	require.NoError(t, err)

	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, "approved", resp.Status)
	require.Len(t, resp.Occurrences, 1)
	assert.Equal(t, "2025-05-12", resp.Occurrences[0].Date)
	assert.Equal(t, "18:00-20:00", resp.Occurrences[0].Slot)
	assert.Equal(t, int64(800), resp.Pricing.Total)
	require.NotNil(t, resp.WorkflowStatus)
	assert.Equal(t, "approved", *resp.WorkflowStatus)
}

func TestService_GetByID_AccessDenied(t *testing.T) {
	repo := newFakeBookingRepo(testBooking(t, 1, 42, domain.StatusApproved))
	svc := newTestService(repo, nil, nil)

	_, err := svc.GetByID(context.Background(), 1, 99)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestService_GetByID_NotFound(t *testing.T) {
	svc := newTestService(newFakeBookingRepo(), nil, nil)

	_, err := svc.GetByID(context.Background(), 7, 42)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestService_GetUserBookings_InvalidStatus(t *testing.T) {
	svc := newTestService(newFakeBookingRepo(), nil, nil)

	status := "confirmed"
	_, err := svc.GetUserBookings(context.Background(), &models.GetUserBookingsRequest{UserID: 42, Status: &status})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_GetUserBookings_FiltersByStatus(t *testing.T) {
	repo := newFakeBookingRepo(
		testBooking(t, 1, 42, domain.StatusApproved),
		testBooking(t, 2, 42, domain.StatusCancelled),
		testBooking(t, 3, 99, domain.StatusApproved),
	)
	svc := newTestService(repo, nil, nil)

	status := "approved"
	resp, err := svc.GetUserBookings(context.Background(), &models.GetUserBookingsRequest{UserID: 42, Status: &status})
	require.NoError(t, err)

	require.Len(t, resp.Bookings, 1)
	assert.Equal(t, int64(1), resp.Bookings[0].ID)
}

func TestService_GetFacilityBookings_ExcludesInactiveByDefault(t *testing.T) {
	repo := newFakeBookingRepo(
		testBooking(t, 1, 42, domain.StatusApproved),
		testBooking(t, 2, 43, domain.StatusCancelled),
	)
	svc := newTestService(repo, nil, nil)

	resp, err := svc.GetFacilityBookings(context.Background(), &models.GetFacilityBookingsRequest{FacilityID: 1})
	require.NoError(t, err)

	require.Len(t, resp.Bookings, 1)
	assert.Equal(t, int64(1), resp.Bookings[0].ID)
}

func TestService_Cancel_Owner(t *testing.T) {
	repo := newFakeBookingRepo(testBooking(t, 1, 42, domain.StatusApproved))
	notifier := &fakeNotifier{}
	svc := newTestService(repo, nil, notifier)

	err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{
		UserID:             42,
		CancellationReason: "arrangementet avlyst",
	})
	require.NoError(t, err)

	assert.Equal(t, "arrangementet avlyst", repo.cancelled[1])
	require.Len(t, notifier.cancelled, 1)
	assert.Equal(t, int64(1), notifier.cancelled[0].BookingID)
	assert.Equal(t, "cancelled", notifier.cancelled[0].Status)
}

func TestService_Cancel_NotOwner(t *testing.T) {
	repo := newFakeBookingRepo(testBooking(t, 1, 42, domain.StatusApproved))
	notifier := &fakeNotifier{}
	svc := newTestService(repo, nil, notifier)

	err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: 99})
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Empty(t, repo.cancelled)
	assert.Empty(t, notifier.cancelled)
}

func TestService_Cancel_TerminalStatus(t *testing.T) {
	repo := newFakeBookingRepo(testBooking(t, 1, 42, domain.StatusRejected))
	svc := newTestService(repo, nil, nil)

	err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: 42})
	assert.ErrorIs(t, err, ErrCannotCancel)
}
