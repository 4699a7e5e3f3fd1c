package create_booking

import (
	"context"
	"time"

	"github.com/mfpdev/MFP-BookingService/internal/availability"
	"github.com/mfpdev/MFP-BookingService/internal/domain"
	"github.com/mfpdev/MFP-BookingService/internal/integrations/notify"
	"github.com/mfpdev/MFP-BookingService/internal/recurrence"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
}

// ZoneRepository интерфейс репозитория зон
type ZoneRepository interface {
	GetZoneWithAncestors(ctx context.Context, zoneID int64) ([]*domain.Zone, error)
}

// PriceRuleRepository интерфейс репозитория ценовых правил
type PriceRuleRepository interface {
	GetActiveByFacility(ctx context.Context, facilityID int64) ([]domain.PriceRule, error)
	GetHolidays(ctx context.Context, from, to time.Time) (domain.HolidayCalendar, error)
}

// WorkflowRepository интерфейс репозитория согласований
type WorkflowRepository interface {
	Create(ctx context.Context, wf *domain.ApprovalWorkflow) (*domain.ApprovalWorkflow, error)
	GetAutoApprovalRules(ctx context.Context, facilityID int64) ([]domain.AutoApprovalRule, error)
	GetStepTemplates(ctx context.Context, facilityID int64) ([]domain.ApprovalStepTemplate, error)
}

// RecurrenceExpander разворачивает шаблон повторения в конкретные вхождения
type RecurrenceExpander interface {
	Expand(ctx context.Context, zoneID int64, pattern domain.RecurrencePattern) (*recurrence.Result, error)
}

// AvailabilityChecker проверяет доступность вхождений
type AvailabilityChecker interface {
	Check(ctx context.Context, zoneID int64, occurrences []domain.Occurrence, excludeBookingID *int64) ([]availability.OccurrenceAvailability, error)
}

// PricingCalculator рассчитывает стоимость бронирования
type PricingCalculator interface {
	PriceBooking(
		occurrences []domain.Occurrence,
		basePrice int64,
		actorType domain.ActorType,
		rules []domain.PriceRule,
		holidays domain.HolidayCalendar,
		additional []domain.AdditionalCost,
	) (domain.PricingBreakdown, error)
}

// WorkflowEngine строит процесс согласования нового бронирования
type WorkflowEngine interface {
	Initialize(
		facilityID int64,
		actorType domain.ActorType,
		autoRules []domain.AutoApprovalRule,
		templates []domain.ApprovalStepTemplate,
		now time.Time,
	) *domain.ApprovalWorkflow
}

// NotificationGateway публикует события бронирований
// Реализация fire-and-forget: ошибки не возвращаются
type NotificationGateway interface {
	BookingCreated(ctx context.Context, payload notify.BookingPayload)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
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
