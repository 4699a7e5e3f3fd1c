package domain

import (
	"time"

	"github.com/mfpdev/MFP-BookingService/pkg/types"
)

// RecurrenceType тип повторения бронирования
type RecurrenceType string

const (
	// RecurrenceWeekly каждую неделю по выбранным дням
	RecurrenceWeekly RecurrenceType = "weekly"
	// RecurrenceBiweekly через неделю (чётные недели от недели стартовой даты)
	RecurrenceBiweekly RecurrenceType = "biweekly"
	// RecurrenceMonthly первое вхождение каждого выбранного дня недели в месяце
	RecurrenceMonthly RecurrenceType = "monthly"
)

// IsValid проверяет, что тип повторения известен
func (t RecurrenceType) IsValid() bool {
	switch t {
	case RecurrenceWeekly, RecurrenceBiweekly, RecurrenceMonthly:
		return true
	default:
		return false
	}
}

// RecurrencePattern шаблон повторяющегося бронирования
type RecurrencePattern struct {
	Type       RecurrenceType
	Weekdays   []time.Weekday
	TimeSlots  []types.TimeRange
	StartDate  time.Time
	EndDate    time.Time
	Exceptions []time.Time // даты-исключения, сравнение только по календарной дате
}

// Occurrence одно конкретное вхождение бронирования: дата + слот + зона
// Производная сущность, порождается разворачиванием шаблона
type Occurrence struct {
	ZoneID int64           `json:"zoneId"`
	Date   time.Time       `json:"date"`
	Slot   types.TimeRange `json:"slot"`
}

// DurationMinutes длительность вхождения в минутах
func (o Occurrence) DurationMinutes() (int, error) {
	return o.Slot.DurationMinutes()
}

// Key уникальный ключ вхождения для дедупликации
func (o Occurrence) Key() string {
	return o.Date.Format(DateFormat) + " " + o.Slot.String()
}
