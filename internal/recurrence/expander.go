package recurrence

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/mfpdev/MFP-BookingService/internal/domain"
	"github.com/mfpdev/MFP-BookingService/pkg/types"
)

// Ошибки разворачивания шаблона
var (
	// ErrInvalidPattern возвращается для некорректного шаблона:
	// пустые дни недели или слоты, конец раньше начала, неизвестный тип
	ErrInvalidPattern = errors.New("recurrence: invalid pattern")
)

// Result результат разворачивания шаблона
type Result struct {
	Occurrences []domain.Occurrence
	// Truncated выставляется, когда вывод обрезан по maxOccurrences
	// Обрезка не является ошибкой
	Truncated bool
}

// Expander разворачивает шаблон повторения в список конкретных вхождений
type Expander struct {
	maxOccurrences int
}

// NewExpander создает expander с ограничением на число вхождений
func NewExpander(maxOccurrences int) *Expander {
	return &Expander{maxOccurrences: maxOccurrences}
}

// Expand разворачивает шаблон в упорядоченный список вхождений для зоны
// Порядок: по возрастанию даты, внутри даты - по началу слота
// Результат детерминирован: повторный вызов на том же шаблоне дает тот же вывод
func (e *Expander) Expand(ctx context.Context, zoneID int64, pattern domain.RecurrencePattern) (*Result, error) {
	if err := validatePattern(pattern); err != nil {
		return nil, err
	}

	weekdays := weekdaySet(pattern.Weekdays)
	exceptions := exceptionSet(pattern.Exceptions)
	slots := sortedSlots(pattern.TimeSlots)

	start := domain.DateOnly(pattern.StartDate)
	end := domain.DateOnly(pattern.EndDate)

	// Для monthly отслеживаем уже встреченные (месяц, день недели) пары
	seenMonthly := make(map[monthWeekdayKey]bool)
	// Дедупликация одинаковых (дата, слот) пар от некорректного ввода
	seen := make(map[string]bool)

	result := &Result{Occurrences: make([]domain.Occurrence, 0)}

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		// Кооперативная отмена для очень больших диапазонов
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !weekdays[day.Weekday()] {
			continue
		}

		switch pattern.Type {
		case domain.RecurrenceBiweekly:
			if weekIndex(start, day)%2 != 0 {
				continue
			}
		case domain.RecurrenceMonthly:
			key := monthWeekdayKey{year: day.Year(), month: day.Month(), weekday: day.Weekday()}
			if seenMonthly[key] {
				continue
			}
			seenMonthly[key] = true
		}

		// Даты-исключения пропускаются целиком, все слоты дня
		if exceptions[day.Format(domain.DateFormat)] {
			continue
		}

		for _, slot := range slots {
			occ := domain.Occurrence{ZoneID: zoneID, Date: day, Slot: slot}
			if seen[occ.Key()] {
				continue
			}
			seen[occ.Key()] = true

			if len(result.Occurrences) >= e.maxOccurrences {
				result.Truncated = true
				return result, nil
			}
			result.Occurrences = append(result.Occurrences, occ)
		}
	}

	return result, nil
}

func validatePattern(pattern domain.RecurrencePattern) error {
	if !pattern.Type.IsValid() {
		return fmt.Errorf("%w: unknown recurrence type %q", ErrInvalidPattern, pattern.Type)
	}
	if len(pattern.Weekdays) == 0 {
		return fmt.Errorf("%w: weekdays is empty", ErrInvalidPattern)
	}
	if len(pattern.TimeSlots) == 0 {
		return fmt.Errorf("%w: timeSlots is empty", ErrInvalidPattern)
	}
	if pattern.StartDate.IsZero() || pattern.EndDate.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidPattern)
	}
	if domain.DateOnly(pattern.EndDate).Before(domain.DateOnly(pattern.StartDate)) {
		return fmt.Errorf("%w: end date before start date", ErrInvalidPattern)
	}
	for _, slot := range pattern.TimeSlots {
		if err := slot.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPattern, err)
		}
	}
	return nil
}

type monthWeekdayKey struct {
	year    int
	month   time.Month
	weekday time.Weekday
}

func weekdaySet(weekdays []time.Weekday) map[time.Weekday]bool {
	set := make(map[time.Weekday]bool, len(weekdays))
	for _, wd := range weekdays {
		set[wd] = true
	}
	return set
}

func exceptionSet(exceptions []time.Time) map[string]bool {
	set := make(map[string]bool, len(exceptions))
	for _, d := range exceptions {
		set[d.Format(domain.DateFormat)] = true
	}
	return set
}

// sortedSlots возвращает копию слотов, отсортированную по времени начала
func sortedSlots(slots []types.TimeRange) []types.TimeRange {
	sorted := make([]types.TimeRange, len(slots))
	copy(sorted, slots)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start.IsBefore(sorted[j].Start)
		}
		return sorted[i].End.IsBefore(sorted[j].End)
	})
	return sorted
}

// weekIndex возвращает номер недели даты относительно недели стартовой даты
// Недели начинаются с понедельника
// Округление часов страхует от смещения на переходах летнего времени
func weekIndex(start, day time.Time) int {
	days := int(math.Round(domain.DateOnly(day).Sub(startOfWeek(start)).Hours() / 24))
	return days / 7
}

// startOfWeek возвращает понедельник недели, содержащей дату
func startOfWeek(t time.Time) time.Time {
	d := domain.DateOnly(t)
	// time.Weekday: Sunday=0, неделя же начинается с понедельника
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}
