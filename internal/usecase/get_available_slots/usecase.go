package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/mfpdev/MFP-BookingService/internal/domain"
	zoneRepo "github.com/mfpdev/MFP-BookingService/internal/infra/storage/zone"
)

// UseCase use case получения сетки доступных слотов зоны на день
// Сетка строится по рабочим часам зоны, доступность каждого слота
// проверяется общей проверкой доступности (конфликты, блэкауты, иерархия зон)
type UseCase struct {
	zones        ZoneRepository
	checker      AvailabilityChecker
	granularity  int // шаг сетки в минутах
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	zones ZoneRepository,
	checker AvailabilityChecker,
	granularityMinutes int,
	logger Logger,
) *UseCase {
	return &UseCase{
		zones:        zones,
		checker:      checker,
		granularity:  granularityMinutes,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: zone=%d, date=%s, duration=%d",
		req.ZoneID, req.Date.Format(domain.DateFormat), req.DurationMinutes)

	// 1. Валидация входных данных
	if err := validateRequest(req, uc.granularity); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	duration := req.DurationMinutes
	if duration == 0 {
		duration = uc.granularity
	}

	// 2. Дата в прошлом - слотов нет
	now := uc.timeProvider.Now()
	if isDateInPast(req.Date, now) {
		uc.logger.Warn("GetAvailableSlots: date %s is in the past", req.Date.Format(domain.DateFormat))
		return nil, ErrInvalidDate
	}

	// 3. Получаем зону для рабочих часов
	zone, err := uc.zones.GetByID(ctx, req.ZoneID)
	if err != nil {
		if errors.Is(err, zoneRepo.ErrZoneNotFound) {
			uc.logger.Warn("GetAvailableSlots: zone id=%d not found", req.ZoneID)
			return nil, ErrZoneNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get zone id=%d: %v", req.ZoneID, err)
		return nil, fmt.Errorf("%w: failed to get zone: %v", ErrInternal, err)
	}

	// 4. Строим сетку слотов по рабочим часам
	schedule := zone.OpeningHours.ForWeekday(req.Date.Weekday())
	grid, err := generateGrid(schedule, uc.granularity, duration)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to generate grid: %v", err)
		return nil, fmt.Errorf("%w: failed to generate grid: %v", ErrInternal, err)
	}

	if len(grid) == 0 {
		uc.logger.Info("GetAvailableSlots: zone id=%d is closed on %s", req.ZoneID, req.Date.Format(domain.DateFormat))
		return &Response{ZoneID: req.ZoneID, Date: req.Date, Slots: []Slot{}}, nil
	}

	// 5. Проверяем доступность всех слотов одним вызовом
	occurrences := make([]domain.Occurrence, 0, len(grid))
	for _, slot := range grid {
		occurrences = append(occurrences, domain.Occurrence{
			ZoneID: req.ZoneID,
			Date:   domain.DateOnly(req.Date),
			Slot:   slot,
		})
	}

	results, err := uc.checker.Check(ctx, req.ZoneID, occurrences, nil)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: availability check failed: %v", err)
		return nil, fmt.Errorf("%w: availability check failed: %v", ErrInternal, err)
	}

	// 6. Порядок результатов повторяет порядок сетки
	slots := make([]Slot, 0, len(results))
	available := 0
	for _, r := range results {
		if r.Available {
			available++
		}
		slots = append(slots, Slot{
			Slot:      r.Occurrence.Slot,
			Available: r.Available,
			Reason:    r.Reason,
		})
	}

	uc.logger.Info("GetAvailableSlots: zone=%d, date=%s: %d/%d slots available",
		req.ZoneID, req.Date.Format(domain.DateFormat), available, len(slots))

	return &Response{
		ZoneID: req.ZoneID,
		Date:   req.Date,
		Slots:  slots,
	}, nil
}
