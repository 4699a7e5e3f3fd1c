package domain

import (
	"time"

	"github.com/mfpdev/MFP-BookingService/pkg/types"
)

// Zone бронируемая зона объекта (зал, секция, площадка)
// Зоны образуют дерево: бронирование родительской зоны блокирует дочерние и наоборот
type Zone struct {
	ID           int64
	FacilityID   int64
	ParentZoneID *int64 // nil = корневая зона
	Name         string
	Capacity     int
	BasePrice    int64 // цена одного вхождения в NOK (без доплат и скидок)
	Active       bool
	OpeningHours WeekSchedule
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsRoot возвращает true для зоны без родителя
func (z *Zone) IsRoot() bool {
	return z.ParentZoneID == nil
}

// DaySchedule расписание работы зоны на один день недели
type DaySchedule struct {
	IsOpen    bool              `json:"isOpen"`
	OpenTime  *types.TimeString `json:"openTime,omitempty"`
	CloseTime *types.TimeString `json:"closeTime,omitempty"`
}

// Covers проверяет, что интервал целиком лежит внутри рабочих часов
func (d DaySchedule) Covers(slot types.TimeRange) bool {
	if !d.IsOpen || d.OpenTime == nil || d.CloseTime == nil {
		return false
	}
	return !slot.Start.IsBefore(*d.OpenTime) && !d.CloseTime.IsBefore(slot.End)
}

// WeekSchedule расписание работы зоны по дням недели
type WeekSchedule struct {
	Monday    DaySchedule `json:"monday"`
	Tuesday   DaySchedule `json:"tuesday"`
	Wednesday DaySchedule `json:"wednesday"`
	Thursday  DaySchedule `json:"thursday"`
	Friday    DaySchedule `json:"friday"`
	Saturday  DaySchedule `json:"saturday"`
	Sunday    DaySchedule `json:"sunday"`
}

// ForWeekday возвращает расписание на указанный день недели
func (w WeekSchedule) ForWeekday(weekday time.Weekday) DaySchedule {
	switch weekday {
	case time.Monday:
		return w.Monday
	case time.Tuesday:
		return w.Tuesday
	case time.Wednesday:
		return w.Wednesday
	case time.Thursday:
		return w.Thursday
	case time.Friday:
		return w.Friday
	case time.Saturday:
		return w.Saturday
	case time.Sunday:
		return w.Sunday
	default:
		return DaySchedule{IsOpen: false}
	}
}

// BlackoutPeriod период недоступности зоны (ремонт, обслуживание)
// Закрывает зону и все её дочерние зоны целиком на диапазон дат включительно
type BlackoutPeriod struct {
	ID        int64
	ZoneID    int64
	StartDate time.Time
	EndDate   time.Time
	Reason    string
	CreatedAt time.Time
}

// ContainsDate проверяет попадание даты в период (сравнение только по дате)
func (b BlackoutPeriod) ContainsDate(date time.Time) bool {
	d := DateOnly(date)
	return !d.Before(DateOnly(b.StartDate)) && !d.After(DateOnly(b.EndDate))
}

// DateOnly обнуляет временную часть даты
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDate проверяет, что две даты относятся к одному календарному дню
func SameDate(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
