package approvals

import (
	"context"
	"time"

	"github.com/mfpdev/MFP-BookingService/internal/domain"
	"github.com/mfpdev/MFP-BookingService/internal/integrations/notify"
	"github.com/mfpdev/MFP-BookingService/internal/workflow"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error
}

// WorkflowRepository интерфейс репозитория согласований
type WorkflowRepository interface {
	GetByBookingID(ctx context.Context, bookingID int64) (*domain.ApprovalWorkflow, error)
	Save(ctx context.Context, wf *domain.ApprovalWorkflow) error
	ListPendingOverdue(ctx context.Context, now time.Time) ([]*domain.ApprovalWorkflow, error)
}

// WorkflowEngine машина состояний процесса согласования
type WorkflowEngine interface {
	SubmitDecision(wf *domain.ApprovalWorkflow, stepID string, decision workflow.Decision, approverID int64, notes *string, now time.Time) error
	Escalate(wf *domain.ApprovalWorkflow, now time.Time) *domain.ApprovalStep
}

// NotificationGateway публикует события согласования
type NotificationGateway interface {
	BookingApproved(ctx context.Context, payload notify.BookingPayload)
	BookingRejected(ctx context.Context, payload notify.BookingPayload)
	StepEscalated(ctx context.Context, payload notify.EscalationPayload)
}

// TransactionManager интерфейс менеджера транзакций
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
