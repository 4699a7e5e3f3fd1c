package availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfpdev/MFP-BookingService/internal/domain"
	zoneRepo "github.com/mfpdev/MFP-BookingService/internal/infra/storage/zone"
	"github.com/mfpdev/MFP-BookingService/pkg/ptr"
	"github.com/mfpdev/MFP-BookingService/pkg/types"
)

type fakeZoneRepo struct {
	zones map[int64]*domain.Zone
	// blackouts по зонам
	blackouts []domain.BlackoutPeriod
}

func (f *fakeZoneRepo) GetZoneWithAncestors(_ context.Context, zoneID int64) ([]*domain.Zone, error) {
	zone, ok := f.zones[zoneID]
	if !ok {
		return nil, zoneRepo.ErrZoneNotFound
	}
	chain := []*domain.Zone{zone}
	for zone.ParentZoneID != nil {
		parent, ok := f.zones[*zone.ParentZoneID]
		if !ok {
			return nil, zoneRepo.ErrZoneNotFound
		}
		chain = append(chain, parent)
		zone = parent
	}
	return chain, nil
}

func (f *fakeZoneRepo) GetDescendantIDs(_ context.Context, zoneID int64) ([]int64, error) {
	var ids []int64
	frontier := []int64{zoneID}
	for len(frontier) > 0 {
		var next []int64
		for _, z := range f.zones {
			for _, parentID := range frontier {
				if z.ParentZoneID != nil && *z.ParentZoneID == parentID {
					next = append(next, z.ID)
				}
			}
		}
		ids = append(ids, next...)
		frontier = next
	}
	return ids, nil
}

func (f *fakeZoneRepo) GetBlackouts(_ context.Context, zoneIDs []int64, _, _ time.Time) ([]domain.BlackoutPeriod, error) {
	idSet := make(map[int64]bool)
	for _, id := range zoneIDs {
		idSet[id] = true
	}
	var matched []domain.BlackoutPeriod
	for _, b := range f.blackouts {
		if idSet[b.ZoneID] {
			matched = append(matched, b)
		}
	}
	return matched, nil
}

type fakeBookingRepo struct {
	occurrences []domain.BookingOccurrence
}

func (f *fakeBookingRepo) FindOverlapping(_ context.Context, zoneIDs []int64, _, _ time.Time, excludeBookingID *int64) ([]domain.BookingOccurrence, error) {
	idSet := make(map[int64]bool)
	for _, id := range zoneIDs {
		idSet[id] = true
	}
	var matched []domain.BookingOccurrence
	for _, occ := range f.occurrences {
		if excludeBookingID != nil && occ.BookingID == *excludeBookingID {
			continue
		}
		if idSet[occ.ZoneID] {
			matched = append(matched, occ)
		}
	}
	return matched, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func slot(t *testing.T, s string) types.TimeRange {
	t.Helper()
	r, err := types.NewTimeRangeFromString(s)
	require.NoError(t, err)
	return r
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// openAllWeek зона открыта каждый день 08:00-22:00
func openAllWeek() domain.WeekSchedule {
	day := domain.DaySchedule{
		IsOpen:    true,
		OpenTime:  ptr.Ptr(types.TimeString("08:00")),
		CloseTime: ptr.Ptr(types.TimeString("22:00")),
	}
	return domain.WeekSchedule{
		Monday: day, Tuesday: day, Wednesday: day, Thursday: day,
		Friday: day, Saturday: day, Sunday: day,
	}
}

// testZones: зал (1) с двумя секциями (2, 3); отдельная зона (4)
func testZones() *fakeZoneRepo {
	return &fakeZoneRepo{
		zones: map[int64]*domain.Zone{
			1: {ID: 1, FacilityID: 10, Name: "Storsalen", Active: true, OpeningHours: openAllWeek()},
			2: {ID: 2, FacilityID: 10, ParentZoneID: ptr.Ptr(int64(1)), Name: "Sal A", Active: true, OpeningHours: openAllWeek()},
			3: {ID: 3, FacilityID: 10, ParentZoneID: ptr.Ptr(int64(1)), Name: "Sal B", Active: true, OpeningHours: openAllWeek()},
			4: {ID: 4, FacilityID: 10, Name: "Møterom", Active: true, OpeningHours: openAllWeek()},
		},
	}
}

func occ(t *testing.T, zoneID int64, day time.Time, s string) domain.Occurrence {
	t.Helper()
	return domain.Occurrence{ZoneID: zoneID, Date: day, Slot: slot(t, s)}
}

func booked(t *testing.T, bookingID, zoneID int64, day time.Time, s string, status domain.BookingStatus) domain.BookingOccurrence {
	t.Helper()
	return domain.BookingOccurrence{
		BookingID:  bookingID,
		Occurrence: occ(t, zoneID, day, s),
		Status:     status,
	}
}

var monday = date(2025, 5, 5)

func TestCheck_NoConflicts(t *testing.T) {
	checker := NewChecker(testZones(), &fakeBookingRepo{}, nopLogger{})

	occurrences := []domain.Occurrence{
		occ(t, 2, monday, "10:00-12:00"),
		occ(t, 2, monday, "12:00-14:00"),
	}

	results, err := checker.Check(context.Background(), 2, occurrences, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.True(t, r.Available)
		assert.Empty(t, r.ConflictingBookingIDs)
	}
}

func TestCheck_NonOverlappingIntervalsBothAvailable(t *testing.T) {
	// Существующее бронирование граничит со слотами - полуоткрытые интервалы
	bookings := &fakeBookingRepo{occurrences: []domain.BookingOccurrence{
		booked(t, 100, 2, monday, "12:00-14:00", domain.StatusApproved),
	}}
	checker := NewChecker(testZones(), bookings, nopLogger{})

	results, err := checker.Check(context.Background(), 2, []domain.Occurrence{
		occ(t, 2, monday, "10:00-12:00"),
		occ(t, 2, monday, "14:00-16:00"),
	}, nil)
	require.NoError(t, err)
	assert.True(t, results[0].Available)
	assert.True(t, results[1].Available)
}

func TestCheck_SameZoneConflict(t *testing.T) {
	bookings := &fakeBookingRepo{occurrences: []domain.BookingOccurrence{
		booked(t, 100, 2, monday, "11:00-13:00", domain.StatusApproved),
	}}
	checker := NewChecker(testZones(), bookings, nopLogger{})

	results, err := checker.Check(context.Background(), 2, []domain.Occurrence{
		occ(t, 2, monday, "10:00-12:00"),
	}, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Available)
	assert.Equal(t, ReasonConflict, results[0].Reason)
	assert.Equal(t, []int64{100}, results[0].ConflictingBookingIDs)
}

func TestCheck_ParentChildConflicts(t *testing.T) {
	// Бронирование родительской зоны блокирует дочернюю
	bookings := &fakeBookingRepo{occurrences: []domain.BookingOccurrence{
		booked(t, 100, 1, monday, "10:00-12:00", domain.StatusApproved),
	}}
	checker := NewChecker(testZones(), bookings, nopLogger{})

	results, err := checker.Check(context.Background(), 2, []domain.Occurrence{
		occ(t, 2, monday, "11:00-13:00"),
	}, nil)
	require.NoError(t, err)
	assert.False(t, results[0].Available)
	assert.Equal(t, []int64{100}, results[0].ConflictingBookingIDs)

	// И наоборот: бронирование дочерней зоны блокирует родительскую
	bookings = &fakeBookingRepo{occurrences: []domain.BookingOccurrence{
		booked(t, 200, 3, monday, "10:00-12:00", domain.StatusPendingApproval),
	}}
	checker = NewChecker(testZones(), bookings, nopLogger{})

	results, err = checker.Check(context.Background(), 1, []domain.Occurrence{
		occ(t, 1, monday, "11:00-13:00"),
	}, nil)
	require.NoError(t, err)
	assert.False(t, results[0].Available)
	assert.Equal(t, []int64{200}, results[0].ConflictingBookingIDs)
}

func TestCheck_SiblingZonesDoNotConflict(t *testing.T) {
	// Секции A и B - соседи, а не предок/потомок
	bookings := &fakeBookingRepo{occurrences: []domain.BookingOccurrence{
		booked(t, 100, 3, monday, "10:00-12:00", domain.StatusApproved),
	}}
	checker := NewChecker(testZones(), bookings, nopLogger{})

	results, err := checker.Check(context.Background(), 2, []domain.Occurrence{
		occ(t, 2, monday, "10:00-12:00"),
	}, nil)
	require.NoError(t, err)
	assert.True(t, results[0].Available)
}

func TestCheck_CancelledAndRejectedIgnored(t *testing.T) {
	bookings := &fakeBookingRepo{occurrences: []domain.BookingOccurrence{
		booked(t, 100, 2, monday, "10:00-12:00", domain.StatusCancelled),
		booked(t, 101, 2, monday, "10:00-12:00", domain.StatusRejected),
	}}
	checker := NewChecker(testZones(), bookings, nopLogger{})

	results, err := checker.Check(context.Background(), 2, []domain.Occurrence{
		occ(t, 2, monday, "10:00-12:00"),
	}, nil)
	require.NoError(t, err)
	assert.True(t, results[0].Available)
}

func TestCheck_ExcludeBookingID(t *testing.T) {
	// Перепроверка при редактировании игнорирует само бронирование
	bookings := &fakeBookingRepo{occurrences: []domain.BookingOccurrence{
		booked(t, 100, 2, monday, "10:00-12:00", domain.StatusApproved),
	}}
	checker := NewChecker(testZones(), bookings, nopLogger{})

	results, err := checker.Check(context.Background(), 2, []domain.Occurrence{
		occ(t, 2, monday, "10:00-12:00"),
	}, ptr.Ptr(int64(100)))
	require.NoError(t, err)
	assert.True(t, results[0].Available)
}

func TestCheck_BlackoutOnZoneAndAncestor(t *testing.T) {
	zones := testZones()
	zones.blackouts = []domain.BlackoutPeriod{
		{ID: 1, ZoneID: 1, StartDate: date(2025, 5, 5), EndDate: date(2025, 5, 6), Reason: "vedlikehold"},
	}
	checker := NewChecker(zones, &fakeBookingRepo{}, nopLogger{})

	// Блэкаут родителя закрывает дочернюю зону
	results, err := checker.Check(context.Background(), 2, []domain.Occurrence{
		occ(t, 2, monday, "10:00-12:00"),
		occ(t, 2, date(2025, 5, 7), "10:00-12:00"),
	}, nil)
	require.NoError(t, err)
	assert.False(t, results[0].Available)
	assert.Equal(t, ReasonBlackout, results[0].Reason)
	assert.True(t, results[1].Available)
}

func TestCheck_OutsideOpeningHours(t *testing.T) {
	checker := NewChecker(testZones(), &fakeBookingRepo{}, nopLogger{})

	results, err := checker.Check(context.Background(), 2, []domain.Occurrence{
		occ(t, 2, monday, "06:00-09:00"), // раньше открытия
		occ(t, 2, monday, "21:00-23:00"), // позже закрытия... частично
	}, nil)
	require.NoError(t, err)
	assert.False(t, results[0].Available)
	assert.Equal(t, ReasonClosed, results[0].Reason)
	assert.False(t, results[1].Available)
	assert.Equal(t, ReasonClosed, results[1].Reason)
}

func TestCheck_ClosedDay(t *testing.T) {
	zones := testZones()
	schedule := openAllWeek()
	schedule.Sunday = domain.DaySchedule{IsOpen: false}
	zones.zones[4].OpeningHours = schedule
	checker := NewChecker(zones, &fakeBookingRepo{}, nopLogger{})

	sunday := date(2025, 5, 4)
	results, err := checker.Check(context.Background(), 4, []domain.Occurrence{
		occ(t, 4, sunday, "10:00-12:00"),
	}, nil)
	require.NoError(t, err)
	assert.False(t, results[0].Available)
	assert.Equal(t, ReasonClosed, results[0].Reason)
}

func TestCheck_InactiveZone(t *testing.T) {
	zones := testZones()
	zones.zones[4].Active = false
	checker := NewChecker(zones, &fakeBookingRepo{}, nopLogger{})

	results, err := checker.Check(context.Background(), 4, []domain.Occurrence{
		occ(t, 4, monday, "10:00-12:00"),
	}, nil)
	require.NoError(t, err)
	assert.False(t, results[0].Available)
	assert.Equal(t, ReasonInactive, results[0].Reason)
}

func TestCheck_UnknownZone(t *testing.T) {
	checker := NewChecker(testZones(), &fakeBookingRepo{}, nopLogger{})

	_, err := checker.Check(context.Background(), 999, []domain.Occurrence{
		occ(t, 999, monday, "10:00-12:00"),
	}, nil)
	assert.ErrorIs(t, err, ErrZoneNotFound)
}

func TestCheck_AllConflictsEnumerated(t *testing.T) {
	bookings := &fakeBookingRepo{occurrences: []domain.BookingOccurrence{
		booked(t, 100, 2, monday, "10:00-11:00", domain.StatusApproved),
		booked(t, 101, 2, monday, "11:00-12:30", domain.StatusApproved),
		booked(t, 102, 1, monday, "10:30-11:30", domain.StatusPendingApproval),
	}}
	checker := NewChecker(testZones(), bookings, nopLogger{})

	results, err := checker.Check(context.Background(), 2, []domain.Occurrence{
		occ(t, 2, monday, "10:00-12:00"),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{100, 101, 102}, results[0].ConflictingBookingIDs)
}

func TestCheck_OrderMirrorsInput(t *testing.T) {
	bookings := &fakeBookingRepo{occurrences: []domain.BookingOccurrence{
		booked(t, 100, 2, monday, "10:00-12:00", domain.StatusApproved),
	}}
	checker := NewChecker(testZones(), bookings, nopLogger{})

	input := []domain.Occurrence{
		occ(t, 2, date(2025, 5, 12), "10:00-12:00"),
		occ(t, 2, monday, "10:00-12:00"),
		occ(t, 2, date(2025, 5, 19), "10:00-12:00"),
	}

	results, err := checker.Check(context.Background(), 2, input, nil)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, input[i], r.Occurrence)
	}
	assert.True(t, results[0].Available)
	assert.False(t, results[1].Available)
	assert.True(t, results[2].Available)
}
