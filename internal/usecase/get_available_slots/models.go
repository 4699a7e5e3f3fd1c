package get_available_slots

import (
	"time"

	"github.com/mfpdev/MFP-BookingService/pkg/types"
)

// Request модель запроса доступных слотов зоны на день
type Request struct {
	ZoneID int64
	Date   time.Time
	// DurationMinutes длительность слота; 0 - гранулярность сетки из конфигурации
	DurationMinutes int
}

// Slot один слот сетки дня
type Slot struct {
	Slot      types.TimeRange
	Available bool
	// Reason причина недоступности, пустая строка для доступных слотов
	Reason string
}

// Response модель ответа с сеткой слотов
type Response struct {
	ZoneID int64
	Date   time.Time
	Slots  []Slot
}
