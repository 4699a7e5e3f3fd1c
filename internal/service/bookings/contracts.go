package bookings

import (
	"context"

	"github.com/mfpdev/MFP-BookingService/internal/domain"
	"github.com/mfpdev/MFP-BookingService/internal/integrations/notify"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByUserID(ctx context.Context, userID int64, status *domain.BookingStatus) ([]*domain.Booking, error)
	GetByFacilityWithFilter(ctx context.Context, filter domain.FacilityBookingsFilter) ([]*domain.Booking, error)
	Cancel(ctx context.Context, id int64, reason string) error
}

// WorkflowRepository интерфейс репозитория согласований
type WorkflowRepository interface {
	GetByBookingID(ctx context.Context, bookingID int64) (*domain.ApprovalWorkflow, error)
}

// NotificationGateway публикует события бронирований
type NotificationGateway interface {
	BookingCancelled(ctx context.Context, payload notify.BookingPayload)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
