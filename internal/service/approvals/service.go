package approvals

import (
	"context"
	"errors"
	"fmt"

	"github.com/mfpdev/MFP-BookingService/internal/domain"
	bookingRepo "github.com/mfpdev/MFP-BookingService/internal/infra/storage/booking"
	workflowRepo "github.com/mfpdev/MFP-BookingService/internal/infra/storage/workflow"
	"github.com/mfpdev/MFP-BookingService/internal/integrations/notify"
	"github.com/mfpdev/MFP-BookingService/internal/service/approvals/models"
	"github.com/mfpdev/MFP-BookingService/internal/workflow"
)

// Service сервис процессов согласования бронирований
type Service struct {
	bookingRepo  BookingRepository
	workflowRepo WorkflowRepository
	engine       WorkflowEngine
	notifier     NotificationGateway
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса согласований
func NewService(
	bookingRepo BookingRepository,
	workflowRepo WorkflowRepository,
	engine WorkflowEngine,
	notifier NotificationGateway,
	txManager TransactionManager,
	timeProvider TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		workflowRepo: workflowRepo,
		engine:       engine,
		notifier:     notifier,
		txManager:    txManager,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// GetWorkflow возвращает процесс согласования бронирования
func (s *Service) GetWorkflow(ctx context.Context, bookingID int64) (*models.WorkflowResponse, error) {
	s.logger.Info("GetWorkflow: fetching workflow for booking id=%d", bookingID)

	wf, err := s.workflowRepo.GetByBookingID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, workflowRepo.ErrWorkflowNotFound) {
			s.logger.Warn("GetWorkflow: workflow for booking id=%d not found", bookingID)
			return nil, ErrWorkflowNotFound
		}
		s.logger.Error("GetWorkflow: repository error for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: GetWorkflow - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainWorkflow(wf), nil
}

// SubmitDecision применяет решение согласующего по шагу процесса
// Одобрение последнего шага переводит бронирование в approved,
// отклонение любого шага - в rejected. Процесс и статус бронирования
// сохраняются в одной транзакции
func (s *Service) SubmitDecision(ctx context.Context, bookingID int64, req *models.SubmitDecisionRequest) (*models.DecisionResponse, error) {
	s.logger.Info("SubmitDecision: booking id=%d, step=%s, decision=%s, approver=%d",
		bookingID, req.StepID, req.Decision, req.ApproverID)

	if err := validateDecisionRequest(req); err != nil {
		s.logger.Warn("SubmitDecision: invalid request for booking id=%d: %v", bookingID, err)
		return nil, err
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("SubmitDecision: booking id=%d not found", bookingID)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("SubmitDecision: repository error for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: SubmitDecision - repository error: %v", ErrInternal, err)
	}

	var wf *domain.ApprovalWorkflow

	err = s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		wf, err = s.workflowRepo.GetByBookingID(ctx, bookingID)
		if err != nil {
			if errors.Is(err, workflowRepo.ErrWorkflowNotFound) {
				return ErrWorkflowNotFound
			}
			return fmt.Errorf("%w: SubmitDecision - failed to load workflow: %v", ErrInternal, err)
		}

		if err := s.engine.SubmitDecision(wf, req.StepID, workflow.Decision(req.Decision), req.ApproverID, req.Notes, s.timeProvider.Now()); err != nil {
			return mapEngineError(err)
		}

		if err := s.workflowRepo.Save(ctx, wf); err != nil {
			return fmt.Errorf("%w: SubmitDecision - failed to save workflow: %v", ErrInternal, err)
		}

		// Терминальный исход согласования фиксируется на бронировании
		switch wf.Status {
		case domain.WorkflowApproved:
			booking.Status = domain.StatusApproved
		case domain.WorkflowRejected:
			booking.Status = domain.StatusRejected
		default:
			return nil
		}
		if err := s.bookingRepo.UpdateStatus(ctx, bookingID, booking.Status); err != nil {
			return fmt.Errorf("%w: SubmitDecision - failed to update booking status: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("SubmitDecision: failed for booking id=%d: %v", bookingID, err)
		return nil, err
	}

	// Уведомляем после коммита транзакции
	payload := notify.BookingPayload{
		BookingID:  booking.ID,
		FacilityID: booking.FacilityID,
		ZoneID:     booking.ZoneID,
		UserID:     booking.UserID,
		Status:     string(booking.Status),
		TotalPrice: booking.Pricing.Total,
	}
	switch wf.Status {
	case domain.WorkflowApproved:
		s.notifier.BookingApproved(ctx, payload)
	case domain.WorkflowRejected:
		s.notifier.BookingRejected(ctx, payload)
	}

	s.logger.Info("SubmitDecision: booking id=%d workflow status=%s", bookingID, wf.Status)
	return &models.DecisionResponse{
		Workflow:      *models.FromDomainWorkflow(wf),
		BookingStatus: string(booking.Status),
	}, nil
}

// RunEscalations помечает просроченные активные шаги всех незавершённых
// процессов и публикует уведомления. Вызывается периодически фоновой задачей
func (s *Service) RunEscalations(ctx context.Context) (*models.EscalationRunResponse, error) {
	now := s.timeProvider.Now()
	s.logger.Info("RunEscalations: checking overdue steps at %s", now.Format("2006-01-02 15:04:05"))

	overdue, err := s.workflowRepo.ListPendingOverdue(ctx, now)
	if err != nil {
		s.logger.Error("RunEscalations: repository error: %v", err)
		return nil, fmt.Errorf("%w: RunEscalations - repository error: %v", ErrInternal, err)
	}

	escalated := 0
	for _, wf := range overdue {
		step := s.engine.Escalate(wf, now)
		if step == nil {
			continue
		}

		if err := s.workflowRepo.Save(ctx, wf); err != nil {
			// Одна неудачная эскалация не прерывает обход остальных
			s.logger.Error("RunEscalations: failed to save workflow id=%d: %v", wf.ID, err)
			continue
		}

		s.notifier.StepEscalated(ctx, notify.EscalationPayload{
			BookingID:    wf.BookingID,
			WorkflowID:   wf.ID,
			StepID:       step.ID,
			ApproverRole: step.ApproverRole,
			Deadline:     *step.Deadline,
		})
		escalated++
	}

	s.logger.Info("RunEscalations: escalated %d of %d overdue workflows", escalated, len(overdue))
	return &models.EscalationRunResponse{Escalated: escalated}, nil
}

func validateDecisionRequest(req *models.SubmitDecisionRequest) error {
	if req.ApproverID <= 0 {
		return fmt.Errorf("%w: approverId must be positive", ErrInvalidInput)
	}
	if req.StepID == "" {
		return fmt.Errorf("%w: stepId is required", ErrInvalidInput)
	}
	return nil
}

// mapEngineError переводит ошибки движка в ошибки сервиса
func mapEngineError(err error) error {
	switch {
	case errors.Is(err, workflow.ErrInvalidDecision):
		return fmt.Errorf("%w: %v", ErrInvalidDecision, err)
	case errors.Is(err, workflow.ErrStepNotFound):
		return fmt.Errorf("%w: %v", ErrStepNotFound, err)
	case errors.Is(err, workflow.ErrInvalidTransition):
		return fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	default:
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}
