package availability

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/mfpdev/MFP-BookingService/internal/domain"
	zoneRepo "github.com/mfpdev/MFP-BookingService/internal/infra/storage/zone"
)

// Ошибки проверки доступности
var (
	// ErrZoneNotFound возвращается для неизвестной зоны
	// Неизвестная зона никогда не считается доступной
	ErrZoneNotFound = errors.New("availability: zone not found")
	// ErrInternal возвращается при внутренних ошибках проверки
	ErrInternal = errors.New("availability: internal error")
)

// Причины недоступности вхождения
const (
	ReasonConflict = "conflict" // пересечение с существующим бронированием
	ReasonBlackout = "blackout" // период обслуживания зоны или предка
	ReasonClosed   = "closed"   // вне рабочих часов зоны
	ReasonInactive = "inactive" // зона деактивирована
)

// OccurrenceAvailability результат проверки одного вхождения
type OccurrenceAvailability struct {
	Occurrence domain.Occurrence
	Available  bool
	// Reason причина недоступности, пустая строка для доступных вхождений
	Reason string
	// ConflictingBookingIDs все конфликтующие бронирования, отсортированы по ID
	ConflictingBookingIDs []int64
}

// Checker проверяет доступность зоны для набора вхождений
// Чистая функция над данными репозиториев: ничего не записывает
type Checker struct {
	zones    ZoneRepository
	bookings BookingRepository
	logger   Logger
}

// NewChecker создает проверку доступности
func NewChecker(zones ZoneRepository, bookings BookingRepository, logger Logger) *Checker {
	return &Checker{zones: zones, bookings: bookings, logger: logger}
}

// Check проверяет каждое вхождение против существующих бронирований,
// периодов недоступности и рабочих часов зоны
//
// Правило конфликта: два вхождения конфликтуют, если они в одной зоне
// или одна зона предок/потомок другой, их полуоткрытые интервалы
// пересекаются, и существующее бронирование не отменено и не отклонено
//
// Порядок результатов повторяет порядок входных вхождений
func (c *Checker) Check(
	ctx context.Context,
	zoneID int64,
	occurrences []domain.Occurrence,
	excludeBookingID *int64,
) ([]OccurrenceAvailability, error) {
	if len(occurrences) == 0 {
		return []OccurrenceAvailability{}, nil
	}

	// Зона и цепочка предков; неизвестная зона - всегда ошибка
	chain, err := c.zones.GetZoneWithAncestors(ctx, zoneID)
	if err != nil {
		if errors.Is(err, zoneRepo.ErrZoneNotFound) {
			return nil, fmt.Errorf("%w: id=%d", ErrZoneNotFound, zoneID)
		}
		return nil, fmt.Errorf("%w: failed to get zone chain: %v", ErrInternal, err)
	}
	zone := chain[0]

	descendants, err := c.zones.GetDescendantIDs(ctx, zoneID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get descendants: %v", ErrInternal, err)
	}

	// Конфликтное множество: сама зона, предки и потомки
	relatedIDs := make([]int64, 0, len(chain)+len(descendants))
	for _, z := range chain {
		relatedIDs = append(relatedIDs, z.ID)
	}
	relatedIDs = append(relatedIDs, descendants...)

	from, to := dateBounds(occurrences)

	existing, err := c.bookings.FindOverlapping(ctx, relatedIDs, from, to, excludeBookingID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to find overlapping bookings: %v", ErrInternal, err)
	}

	// Блэкауты действуют на зону и всех её предков
	blackoutZoneIDs := make([]int64, 0, len(chain))
	for _, z := range chain {
		blackoutZoneIDs = append(blackoutZoneIDs, z.ID)
	}
	blackouts, err := c.zones.GetBlackouts(ctx, blackoutZoneIDs, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get blackouts: %v", ErrInternal, err)
	}

	results := make([]OccurrenceAvailability, 0, len(occurrences))
	unavailable := 0
	for _, occ := range occurrences {
		checked := c.checkOne(zone, occ, existing, blackouts)
		if !checked.Available {
			unavailable++
		}
		results = append(results, checked)
	}

	if unavailable > 0 {
		c.logger.Info("Check: zone=%d, %d/%d occurrences unavailable", zoneID, unavailable, len(occurrences))
	}

	return results, nil
}

func (c *Checker) checkOne(
	zone *domain.Zone,
	occ domain.Occurrence,
	existing []domain.BookingOccurrence,
	blackouts []domain.BlackoutPeriod,
) OccurrenceAvailability {
	result := OccurrenceAvailability{Occurrence: occ}

	if !zone.Active {
		result.Reason = ReasonInactive
		return result
	}

	// Рабочие часы зоны на этот день недели
	schedule := zone.OpeningHours.ForWeekday(occ.Date.Weekday())
	if !schedule.Covers(occ.Slot) {
		result.Reason = ReasonClosed
		return result
	}

	// Периоды обслуживания
	for _, blackout := range blackouts {
		if blackout.ContainsDate(occ.Date) {
			result.Reason = ReasonBlackout
			return result
		}
	}

	// Конфликты с существующими бронированиями
	conflictSet := make(map[int64]struct{})
	for _, booked := range existing {
		// Репозиторий уже фильтрует неактивные статусы, но правило
		// конфликта от этого зависеть не должно
		if !booked.IsActive() {
			continue
		}
		if !domain.SameDate(booked.Date, occ.Date) {
			continue
		}
		if occ.Slot.Overlaps(booked.Slot) {
			conflictSet[booked.BookingID] = struct{}{}
		}
	}

	if len(conflictSet) > 0 {
		result.Reason = ReasonConflict
		result.ConflictingBookingIDs = sortedIDs(conflictSet)
		return result
	}

	result.Available = true
	return result
}

func dateBounds(occurrences []domain.Occurrence) (time.Time, time.Time) {
	from, to := occurrences[0].Date, occurrences[0].Date
	for _, occ := range occurrences[1:] {
		if occ.Date.Before(from) {
			from = occ.Date
		}
		if occ.Date.After(to) {
			to = occ.Date
		}
	}
	return domain.DateOnly(from), domain.DateOnly(to)
}

func sortedIDs(set map[int64]struct{}) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
