package get_available_slots

import (
	"context"
	"time"

	"github.com/mfpdev/MFP-BookingService/internal/availability"
	"github.com/mfpdev/MFP-BookingService/internal/domain"
)

// ZoneRepository интерфейс репозитория зон
type ZoneRepository interface {
	GetByID(ctx context.Context, zoneID int64) (*domain.Zone, error)
}

// AvailabilityChecker проверяет доступность вхождений
type AvailabilityChecker interface {
	Check(ctx context.Context, zoneID int64, occurrences []domain.Occurrence, excludeBookingID *int64) ([]availability.OccurrenceAvailability, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
