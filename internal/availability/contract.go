package availability

import (
	"context"
	"time"

	"github.com/mfpdev/MFP-BookingService/internal/domain"
)

// ZoneRepository интерфейс репозитория зон
type ZoneRepository interface {
	// GetZoneWithAncestors возвращает зону и цепочку её предков, зона первой
	GetZoneWithAncestors(ctx context.Context, zoneID int64) ([]*domain.Zone, error)
	// GetDescendantIDs возвращает идентификаторы всех потомков зоны
	GetDescendantIDs(ctx context.Context, zoneID int64) ([]int64, error)
	// GetBlackouts возвращает периоды недоступности зон, пересекающие диапазон дат
	GetBlackouts(ctx context.Context, zoneIDs []int64, from, to time.Time) ([]domain.BlackoutPeriod, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	// FindOverlapping возвращает вхождения активных бронирований указанных зон
	// в диапазоне дат, кроме бронирования excludeBookingID (если задано)
	FindOverlapping(ctx context.Context, zoneIDs []int64, from, to time.Time, excludeBookingID *int64) ([]domain.BookingOccurrence, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
