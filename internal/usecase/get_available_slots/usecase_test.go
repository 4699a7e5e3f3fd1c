package get_available_slots

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfpdev/MFP-BookingService/internal/availability"
	"github.com/mfpdev/MFP-BookingService/internal/domain"
	zoneRepo "github.com/mfpdev/MFP-BookingService/internal/infra/storage/zone"
	"github.com/mfpdev/MFP-BookingService/pkg/types"
)

type fakeZoneRepo struct {
	zones map[int64]*domain.Zone
}

func (f *fakeZoneRepo) GetByID(_ context.Context, id int64) (*domain.Zone, error) {
	if z, ok := f.zones[id]; ok {
		return z, nil
	}
	return nil, zoneRepo.ErrZoneNotFound
}

type fakeChecker struct {
	// busy интервалы, занятые существующими бронированиями
	busy []types.TimeRange
}

func (f *fakeChecker) Check(_ context.Context, _ int64, occs []domain.Occurrence, _ *int64) ([]availability.OccurrenceAvailability, error) {
	results := make([]availability.OccurrenceAvailability, 0, len(occs))
	for _, occ := range occs {
		r := availability.OccurrenceAvailability{Occurrence: occ, Available: true}
		for _, b := range f.busy {
			if occ.Slot.Overlaps(b) {
				r.Available = false
				r.Reason = availability.ReasonConflict
				break
			}
		}
		results = append(results, r)
	}
	return results, nil
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

func testZone() *domain.Zone {
	open := types.TimeString("10:00")
	close := types.TimeString("14:00")
	day := domain.DaySchedule{IsOpen: true, OpenTime: &open, CloseTime: &close}
	return &domain.Zone{
		ID:         10,
		FacilityID: 1,
		Name:       "Gymsal",
		Active:     true,
		OpeningHours: domain.WeekSchedule{
			Monday: day, Tuesday: day, Wednesday: day, Thursday: day, Friday: day,
		},
	}
}

func newUseCase(checker *fakeChecker) *UseCase {
	uc := NewUseCase(
		&fakeZoneRepo{zones: map[int64]*domain.Zone{10: testZone()}},
		checker,
		60,
		nopLogger{},
	)
	uc.timeProvider = fixedTime{t: time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)}
	return uc
}

func TestExecute_FullGridWhenFree(t *testing.T) {
	uc := newUseCase(&fakeChecker{})

	// 2025-05-05 - понедельник
	resp, err := uc.Execute(context.Background(), &Request{
		ZoneID: 10,
		Date:   time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	require.Len(t, resp.Slots, 4) // 10-11, 11-12, 12-13, 13-14
	assert.Equal(t, mustRange(t, "10:00-11:00"), resp.Slots[0].Slot)
	assert.Equal(t, mustRange(t, "13:00-14:00"), resp.Slots[3].Slot)
	for _, s := range resp.Slots {
		assert.True(t, s.Available)
		assert.Empty(t, s.Reason)
	}
}

func TestExecute_BusySlotsMarked(t *testing.T) {
	uc := newUseCase(&fakeChecker{busy: []types.TimeRange{mustRange(t, "11:00-12:00")}})

	resp, err := uc.Execute(context.Background(), &Request{
		ZoneID: 10,
		Date:   time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	require.Len(t, resp.Slots, 4)
	assert.True(t, resp.Slots[0].Available)
	assert.False(t, resp.Slots[1].Available)
	assert.Equal(t, availability.ReasonConflict, resp.Slots[1].Reason)
	assert.True(t, resp.Slots[2].Available)
}

func TestExecute_LongerDuration(t *testing.T) {
	uc := newUseCase(&fakeChecker{})

	resp, err := uc.Execute(context.Background(), &Request{
		ZoneID:          10,
		Date:            time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC),
		DurationMinutes: 120,
	})

	require.NoError(t, err)
	// Двухчасовые слоты с шагом в час: 10-12, 11-13, 12-14
	require.Len(t, resp.Slots, 3)
	assert.Equal(t, mustRange(t, "10:00-12:00"), resp.Slots[0].Slot)
	assert.Equal(t, mustRange(t, "12:00-14:00"), resp.Slots[2].Slot)
}

func TestExecute_ClosedDay(t *testing.T) {
	uc := newUseCase(&fakeChecker{})

	// 2025-05-03 - суббота, расписание не задано
	resp, err := uc.Execute(context.Background(), &Request{
		ZoneID: 10,
		Date:   time.Date(2025, 5, 3, 0, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}

func TestExecute_PastDate(t *testing.T) {
	uc := newUseCase(&fakeChecker{})

	_, err := uc.Execute(context.Background(), &Request{
		ZoneID: 10,
		Date:   time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC),
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidDate))
}

func TestExecute_ZoneNotFound(t *testing.T) {
	uc := newUseCase(&fakeChecker{})

	_, err := uc.Execute(context.Background(), &Request{
		ZoneID: 99,
		Date:   time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC),
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrZoneNotFound))
}

func TestExecute_InvalidDuration(t *testing.T) {
	uc := newUseCase(&fakeChecker{})

	_, err := uc.Execute(context.Background(), &Request{
		ZoneID:          10,
		Date:            time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC),
		DurationMinutes: 45, // не кратно гранулярности 60
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}
