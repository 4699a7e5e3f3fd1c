package workflow

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mfpdev/MFP-BookingService/internal/domain"
)

// Ошибки движка согласования
var (
	// ErrInvalidTransition возвращается при действии над чужим шагом
	// или над процессом в терминальном статусе
	ErrInvalidTransition = errors.New("workflow: invalid transition")

	// ErrStepNotFound возвращается, когда шаг не принадлежит процессу
	ErrStepNotFound = errors.New("workflow: step not found")

	// ErrInvalidDecision возвращается для неизвестного решения
	ErrInvalidDecision = errors.New("workflow: invalid decision")
)

// Decision решение по шагу согласования
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Engine движок процесса согласования бронирований
// Чистая машина состояний: мутирует переданный процесс в памяти,
// сохранение - забота вызывающей стороны
type Engine struct{}

// NewEngine создает движок согласования
func NewEngine() *Engine {
	return &Engine{}
}

// Initialize строит процесс согласования для нового бронирования
// Если сработало авто-правило (тип заявителя + объект) или шаги не
// настроены, процесс сразу терминален со статусом not-required
func (e *Engine) Initialize(
	facilityID int64,
	actorType domain.ActorType,
	autoRules []domain.AutoApprovalRule,
	templates []domain.ApprovalStepTemplate,
	now time.Time,
) *domain.ApprovalWorkflow {
	for _, rule := range autoRules {
		if rule.Matches(facilityID, actorType) {
			return &domain.ApprovalWorkflow{
				Status:      domain.WorkflowNotRequired,
				CurrentStep: -1,
				Steps:       []domain.ApprovalStep{},
				CompletedAt: &now,
			}
		}
	}

	if len(templates) == 0 {
		return &domain.ApprovalWorkflow{
			Status:      domain.WorkflowNotRequired,
			CurrentStep: -1,
			Steps:       []domain.ApprovalStep{},
			CompletedAt: &now,
		}
	}

	sorted := make([]domain.ApprovalStepTemplate, len(templates))
	copy(sorted, templates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })

	steps := make([]domain.ApprovalStep, 0, len(sorted))
	for _, tmpl := range sorted {
		steps = append(steps, domain.ApprovalStep{
			ID:                uuid.NewString(),
			ApproverRole:      tmpl.ApproverRole,
			Required:          tmpl.Required,
			Status:            domain.StepPending,
			TriggerAfterHours: tmpl.TriggerAfterHours,
		})
	}

	wf := &domain.ApprovalWorkflow{
		Status:      domain.WorkflowPending,
		CurrentStep: 0,
		Steps:       steps,
	}
	activateStep(&wf.Steps[0], now)

	return wf
}

// SubmitDecision применяет решение по шагу процесса
// Одобрение продвигает процесс на следующий шаг, одобрение последнего
// шага завершает процесс. Отклонение любого шага немедленно терминально:
// оставшиеся шаги помечаются skipped и не выполняются
func (e *Engine) SubmitDecision(
	wf *domain.ApprovalWorkflow,
	stepID string,
	decision Decision,
	approverID int64,
	notes *string,
	now time.Time,
) error {
	if decision != DecisionApprove && decision != DecisionReject {
		return fmt.Errorf("%w: %q", ErrInvalidDecision, decision)
	}

	if wf.Status.IsTerminal() {
		return fmt.Errorf("%w: workflow already %s", ErrInvalidTransition, wf.Status)
	}

	idx := stepIndex(wf, stepID)
	if idx < 0 {
		return fmt.Errorf("%w: step id=%s", ErrStepNotFound, stepID)
	}

	// Решение принимается только по текущему активному шагу
	if idx != wf.CurrentStep {
		return fmt.Errorf("%w: step id=%s is not the current step", ErrInvalidTransition, stepID)
	}

	step := &wf.Steps[idx]
	step.DecidedBy = &approverID
	step.DecidedAt = &now
	step.Notes = notes

	switch decision {
	case DecisionApprove:
		step.Status = domain.StepApproved
		e.advance(wf, now)
	case DecisionReject:
		step.Status = domain.StepRejected
		wf.Status = domain.WorkflowRejected
		wf.CompletedAt = &now
		for i := idx + 1; i < len(wf.Steps); i++ {
			wf.Steps[i].Status = domain.StepSkipped
		}
	}

	return nil
}

func (e *Engine) advance(wf *domain.ApprovalWorkflow, now time.Time) {
	next := wf.CurrentStep + 1
	if next >= len(wf.Steps) {
		wf.Status = domain.WorkflowApproved
		wf.CurrentStep = -1
		wf.CompletedAt = &now
		return
	}
	wf.CurrentStep = next
	activateStep(&wf.Steps[next], now)
}

// Escalate помечает просроченный активный шаг процесса
// Эскалация информационная и не меняет исход согласования
// Возвращает эскалированный шаг или nil, если эскалировать нечего
func (e *Engine) Escalate(wf *domain.ApprovalWorkflow, now time.Time) *domain.ApprovalStep {
	step := wf.ActiveStep()
	if step == nil {
		return nil
	}
	if step.Escalated || !step.IsOverdue(now) {
		return nil
	}
	step.Escalated = true
	return step
}

func activateStep(step *domain.ApprovalStep, now time.Time) {
	step.ActivatedAt = &now
	if step.TriggerAfterHours != nil {
		deadline := now.Add(time.Duration(*step.TriggerAfterHours) * time.Hour)
		step.Deadline = &deadline
	}
}

func stepIndex(wf *domain.ApprovalWorkflow, stepID string) int {
	for i := range wf.Steps {
		if wf.Steps[i].ID == stepID {
			return i
		}
	}
	return -1
}
