package domain

import "time"

// WorkflowStatus статус процесса согласования
type WorkflowStatus string

const (
	// WorkflowNotRequired согласование не требуется (сработало авто-правило)
	WorkflowNotRequired WorkflowStatus = "not-required"
	WorkflowPending     WorkflowStatus = "pending"
	WorkflowApproved    WorkflowStatus = "approved"
	WorkflowRejected    WorkflowStatus = "rejected"
)

// IsTerminal возвращает true для конечных статусов процесса
func (s WorkflowStatus) IsTerminal() bool {
	return s == WorkflowNotRequired || s == WorkflowApproved || s == WorkflowRejected
}

// StepStatus статус одного шага согласования
type StepStatus string

const (
	StepPending  StepStatus = "pending"
	StepApproved StepStatus = "approved"
	StepRejected StepStatus = "rejected"
	StepSkipped  StepStatus = "skipped" // шаги после отклонения не выполняются
)

// ApprovalStep один шаг процесса согласования
type ApprovalStep struct {
	ID           string // uuid
	ApproverRole string
	Required     bool
	Status       StepStatus
	// Escalated информационный флаг просроченного шага,
	// не влияет на исход согласования
	Escalated bool
	// TriggerAfterHours часы до эскалации с момента активации шага, nil - без эскалации
	TriggerAfterHours *int
	Deadline          *time.Time
	ActivatedAt       *time.Time
	DecidedBy         *int64
	DecidedAt         *time.Time
	Notes             *string
}

// IsOverdue проверяет, что шаг просрочен на момент now
func (s ApprovalStep) IsOverdue(now time.Time) bool {
	return s.Status == StepPending && s.Deadline != nil && now.After(*s.Deadline)
}

// ApprovalWorkflow процесс согласования бронирования
// CurrentStep - индекс активного шага в Steps, имеет смысл только в статусе pending
type ApprovalWorkflow struct {
	ID          int64
	BookingID   int64
	Status      WorkflowStatus
	CurrentStep int
	Steps       []ApprovalStep
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ActiveStep возвращает текущий активный шаг или nil для терминальных статусов
func (w *ApprovalWorkflow) ActiveStep() *ApprovalStep {
	if w.Status != WorkflowPending {
		return nil
	}
	if w.CurrentStep < 0 || w.CurrentStep >= len(w.Steps) {
		return nil
	}
	return &w.Steps[w.CurrentStep]
}

// AutoApprovalRule правило автоматического одобрения
// Комбинация объекта и типа заявителя, минующая ручное согласование
type AutoApprovalRule struct {
	ID         int64
	FacilityID int64
	ActorType  ActorType
	Active     bool
	CreatedAt  time.Time
}

// Matches проверяет применимость авто-правила
func (r AutoApprovalRule) Matches(facilityID int64, actor ActorType) bool {
	return r.Active && r.FacilityID == facilityID && r.ActorType == actor
}

// ApprovalStepTemplate шаблон шага согласования, настраивается на объект
type ApprovalStepTemplate struct {
	ID                int64
	FacilityID        int64
	Position          int
	ApproverRole      string
	Required          bool
	TriggerAfterHours *int
}
