package create_booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfpdev/MFP-BookingService/internal/availability"
	"github.com/mfpdev/MFP-BookingService/internal/domain"
	"github.com/mfpdev/MFP-BookingService/internal/integrations/notify"
	"github.com/mfpdev/MFP-BookingService/internal/pricing"
	"github.com/mfpdev/MFP-BookingService/internal/recurrence"
	"github.com/mfpdev/MFP-BookingService/internal/workflow"
	"github.com/mfpdev/MFP-BookingService/pkg/ptr"
	"github.com/mfpdev/MFP-BookingService/pkg/types"
)

type fakeBookingRepo struct {
	created *domain.Booking
	nextID  int64
}

func (f *fakeBookingRepo) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	if f.nextID == 0 {
		f.nextID = 100
	}
	b.ID = f.nextID
	b.CreatedAt = time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	b.UpdatedAt = b.CreatedAt
	f.created = b
	return b, nil
}

type fakeZoneRepo struct {
	chain []*domain.Zone
	err   error
}

func (f *fakeZoneRepo) GetZoneWithAncestors(_ context.Context, _ int64) ([]*domain.Zone, error) {
	return f.chain, f.err
}

type fakePriceRepo struct {
	rules    []domain.PriceRule
	holidays domain.HolidayCalendar
}

func (f *fakePriceRepo) GetActiveByFacility(_ context.Context, _ int64) ([]domain.PriceRule, error) {
	return f.rules, nil
}

func (f *fakePriceRepo) GetHolidays(_ context.Context, _, _ time.Time) (domain.HolidayCalendar, error) {
	return f.holidays, nil
}

type fakeWorkflowRepo struct {
	autoRules []domain.AutoApprovalRule
	templates []domain.ApprovalStepTemplate
	created   *domain.ApprovalWorkflow
}

func (f *fakeWorkflowRepo) Create(_ context.Context, wf *domain.ApprovalWorkflow) (*domain.ApprovalWorkflow, error) {
	wf.ID = 500
	f.created = wf
	return wf, nil
}

func (f *fakeWorkflowRepo) GetAutoApprovalRules(_ context.Context, _ int64) ([]domain.AutoApprovalRule, error) {
	return f.autoRules, nil
}

func (f *fakeWorkflowRepo) GetStepTemplates(_ context.Context, _ int64) ([]domain.ApprovalStepTemplate, error) {
	return f.templates, nil
}

type fakeChecker struct {
	unavailable map[string][]int64 // ключ вхождения -> конфликтующие бронирования
}

func (f *fakeChecker) Check(_ context.Context, _ int64, occs []domain.Occurrence, _ *int64) ([]availability.OccurrenceAvailability, error) {
	results := make([]availability.OccurrenceAvailability, 0, len(occs))
	for _, occ := range occs {
		if ids, ok := f.unavailable[occ.Key()]; ok {
			results = append(results, availability.OccurrenceAvailability{
				Occurrence:            occ,
				Reason:                availability.ReasonConflict,
				ConflictingBookingIDs: ids,
			})
			continue
		}
		results = append(results, availability.OccurrenceAvailability{Occurrence: occ, Available: true})
	}
	return results, nil
}

type fakeNotifier struct {
	createdEvents []notify.BookingPayload
}

func (f *fakeNotifier) BookingCreated(_ context.Context, p notify.BookingPayload) {
	f.createdEvents = append(f.createdEvents, p)
}

type fakeTxManager struct{}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func mustRange(t *testing.T, s string) types.TimeRange {
	t.Helper()
	r, err := types.NewTimeRangeFromString(s)
	require.NoError(t, err)
	return r
}

func openAllWeek() domain.WeekSchedule {
	open := types.TimeString("08:00")
	close := types.TimeString("23:00")
	day := domain.DaySchedule{IsOpen: true, OpenTime: &open, CloseTime: &close}
	return domain.WeekSchedule{
		Monday: day, Tuesday: day, Wednesday: day, Thursday: day,
		Friday: day, Saturday: day, Sunday: day,
	}
}

type env struct {
	uc       *UseCase
	bookings *fakeBookingRepo
	zones    *fakeZoneRepo
	prices   *fakePriceRepo
	wfRepo   *fakeWorkflowRepo
	checker  *fakeChecker
	notifier *fakeNotifier
}

func newEnv() *env {
	e := &env{
		bookings: &fakeBookingRepo{},
		zones: &fakeZoneRepo{chain: []*domain.Zone{{
			ID:           10,
			FacilityID:   1,
			Name:         "Storsalen",
			Capacity:     120,
			BasePrice:    800,
			Active:       true,
			OpeningHours: openAllWeek(),
		}}},
		prices:   &fakePriceRepo{},
		wfRepo:   &fakeWorkflowRepo{},
		checker:  &fakeChecker{},
		notifier: &fakeNotifier{},
	}

	e.uc = NewUseCase(
		e.bookings,
		e.zones,
		e.prices,
		e.wfRepo,
		recurrence.NewExpander(1000),
		e.checker,
		pricing.NewCalculator(),
		workflow.NewEngine(),
		e.notifier,
		fakeTxManager{},
		nopLogger{},
	)
	e.uc.timeProvider = fixedTime{t: time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)}

	return e
}

func weeklyMondaysMay(t *testing.T) domain.RecurrencePattern {
	t.Helper()
	return domain.RecurrencePattern{
		Type:      domain.RecurrenceWeekly,
		Weekdays:  []time.Weekday{time.Monday},
		TimeSlots: []types.TimeRange{mustRange(t, "18:00-20:00")},
		StartDate: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestExecute_AutoApproved(t *testing.T) {
	e := newEnv()
	e.wfRepo.autoRules = []domain.AutoApprovalRule{
		{ID: 1, FacilityID: 1, ActorType: domain.ActorMunicipalUnit, Active: true},
	}

	resp, err := e.uc.Execute(context.Background(), &Request{
		UserID:     42,
		FacilityID: 1,
		ZoneID:     10,
		ActorType:  domain.ActorMunicipalUnit,
		Pattern:    weeklyMondaysMay(t),
	})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, resp.Status)
	assert.Equal(t, domain.WorkflowNotRequired, resp.WorkflowStatus)
	assert.Len(t, resp.Occurrences, 4) // понедельники мая 2025: 5, 12, 19, 26
	assert.Equal(t, int64(4*800), resp.Pricing.Total)
	assert.False(t, resp.Truncated)

	require.Len(t, e.notifier.createdEvents, 1)
	assert.Equal(t, resp.ID, e.notifier.createdEvents[0].BookingID)
	assert.Equal(t, string(domain.StatusApproved), e.notifier.createdEvents[0].Status)
}

func TestExecute_PendingApprovalWithSteps(t *testing.T) {
	e := newEnv()
	e.wfRepo.templates = []domain.ApprovalStepTemplate{
		{ID: 1, FacilityID: 1, Position: 0, ApproverRole: "facility-manager", Required: true, TriggerAfterHours: ptr.Ptr(48)},
		{ID: 2, FacilityID: 1, Position: 1, ApproverRole: "kultursjef", Required: true},
	}

	resp, err := e.uc.Execute(context.Background(), &Request{
		UserID:     42,
		FacilityID: 1,
		ZoneID:     10,
		ActorType:  domain.ActorOrganization,
		Pattern:    weeklyMondaysMay(t),
	})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusPendingApproval, resp.Status)
	assert.Equal(t, domain.WorkflowPending, resp.WorkflowStatus)

	require.NotNil(t, e.wfRepo.created)
	require.Len(t, e.wfRepo.created.Steps, 2)
	first := e.wfRepo.created.Steps[0]
	assert.Equal(t, domain.StepPending, first.Status)
	require.NotNil(t, first.Deadline)
	assert.Equal(t, time.Date(2025, 4, 3, 9, 0, 0, 0, time.UTC), *first.Deadline)
}

func TestExecute_PriceRuleApplied(t *testing.T) {
	e := newEnv()
	e.wfRepo.autoRules = []domain.AutoApprovalRule{
		{ID: 1, FacilityID: 1, ActorType: domain.ActorOrganization, Active: true},
	}
	e.prices.rules = []domain.PriceRule{
		{ID: 7, FacilityID: 1, ActorType: domain.ActorOrganization, Multiplier: 0.5, Priority: 10, Active: true},
	}

	resp, err := e.uc.Execute(context.Background(), &Request{
		UserID:     42,
		FacilityID: 1,
		ZoneID:     10,
		ActorType:  domain.ActorOrganization,
		Pattern:    weeklyMondaysMay(t),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(4*400), resp.Pricing.Total)
	for _, line := range resp.Pricing.Lines {
		require.NotNil(t, line.AppliedRuleID)
		assert.Equal(t, int64(7), *line.AppliedRuleID)
		assert.Equal(t, int64(400), line.FinalPrice)
	}
}

func TestExecute_AdditionalCosts(t *testing.T) {
	e := newEnv()
	e.wfRepo.autoRules = []domain.AutoApprovalRule{
		{ID: 1, FacilityID: 1, ActorType: domain.ActorCompany, Active: true},
	}

	resp, err := e.uc.Execute(context.Background(), &Request{
		UserID:     42,
		FacilityID: 1,
		ZoneID:     10,
		ActorType:  domain.ActorCompany,
		Pattern:    weeklyMondaysMay(t),
		AdditionalCosts: []domain.AdditionalCost{
			{Description: "vask og rigging", Amount: 350},
			{Description: "kommunal rabatt", Amount: -150},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(4*800+350-150), resp.Pricing.Total)
}

func TestExecute_ConflictListsAllOccurrences(t *testing.T) {
	e := newEnv()
	pattern := weeklyMondaysMay(t)

	// Два из четырёх понедельников заняты
	e.checker.unavailable = map[string][]int64{
		"2025-05-12 18:00-20:00": {31},
		"2025-05-26 18:00-20:00": {31, 44},
	}

	resp, err := e.uc.Execute(context.Background(), &Request{
		UserID:     42,
		FacilityID: 1,
		ZoneID:     10,
		ActorType:  domain.ActorPrivatePerson,
		Pattern:    pattern,
	})

	require.Error(t, err)
	assert.Nil(t, resp)
	assert.True(t, errors.Is(err, ErrBookingConflict))

	var conflictErr *ConflictError
	require.True(t, errors.As(err, &conflictErr))
	require.Len(t, conflictErr.Conflicts, 2)
	assert.Equal(t, []int64{31}, conflictErr.Conflicts[0].ConflictingBookingIDs)
	assert.Equal(t, []int64{31, 44}, conflictErr.Conflicts[1].ConflictingBookingIDs)

	// Ничего не создано и не опубликовано
	assert.Nil(t, e.bookings.created)
	assert.Empty(t, e.notifier.createdEvents)
}

func TestExecute_InvalidPattern(t *testing.T) {
	e := newEnv()

	pattern := weeklyMondaysMay(t)
	pattern.Weekdays = nil

	_, err := e.uc.Execute(context.Background(), &Request{
		UserID:     42,
		FacilityID: 1,
		ZoneID:     10,
		ActorType:  domain.ActorPrivatePerson,
		Pattern:    pattern,
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestExecute_InvalidActorType(t *testing.T) {
	e := newEnv()

	_, err := e.uc.Execute(context.Background(), &Request{
		UserID:     42,
		FacilityID: 1,
		ZoneID:     10,
		ActorType:  domain.ActorType("ukjent"),
		Pattern:    weeklyMondaysMay(t),
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestExecute_ZoneNotInFacility(t *testing.T) {
	e := newEnv()
	e.zones.chain[0].FacilityID = 2

	_, err := e.uc.Execute(context.Background(), &Request{
		UserID:     42,
		FacilityID: 1,
		ZoneID:     10,
		ActorType:  domain.ActorPrivatePerson,
		Pattern:    weeklyMondaysMay(t),
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrZoneNotInFacility))
}

func TestExecute_BasePriceInheritedFromParent(t *testing.T) {
	e := newEnv()
	e.wfRepo.autoRules = []domain.AutoApprovalRule{
		{ID: 1, FacilityID: 1, ActorType: domain.ActorPrivatePerson, Active: true},
	}

	// У дочерней зоны цена не задана, берётся цена родителя
	e.zones.chain = []*domain.Zone{
		{ID: 11, FacilityID: 1, ParentZoneID: ptr.Ptr(int64(10)), Name: "Scene A", Active: true, OpeningHours: openAllWeek()},
		{ID: 10, FacilityID: 1, Name: "Storsalen", BasePrice: 600, Active: true, OpeningHours: openAllWeek()},
	}

	resp, err := e.uc.Execute(context.Background(), &Request{
		UserID:     42,
		FacilityID: 1,
		ZoneID:     11,
		ActorType:  domain.ActorPrivatePerson,
		Pattern:    weeklyMondaysMay(t),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(4*600), resp.Pricing.Total)
}

func TestExecute_NoBasePrice(t *testing.T) {
	e := newEnv()
	e.zones.chain = []*domain.Zone{
		{ID: 10, FacilityID: 1, Name: "Storsalen", Active: true, OpeningHours: openAllWeek()},
	}

	_, err := e.uc.Execute(context.Background(), &Request{
		UserID:     42,
		FacilityID: 1,
		ZoneID:     10,
		ActorType:  domain.ActorPrivatePerson,
		Pattern:    weeklyMondaysMay(t),
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoBasePrice))
}
