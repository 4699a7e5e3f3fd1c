package models

import (
	"time"

	"github.com/mfpdev/MFP-BookingService/internal/domain"
)

// Request модели

// SubmitDecisionRequest запрос на решение по шагу согласования
type SubmitDecisionRequest struct {
	ApproverID int64   `json:"approverId"`
	StepID     string  `json:"stepId"`
	Decision   string  `json:"decision"` // "approve" или "reject"
	Notes      *string `json:"notes,omitempty"`
}

// Response модели

// StepResponse один шаг процесса согласования
type StepResponse struct {
	ID                string  `json:"id"`
	ApproverRole      string  `json:"approverRole"`
	Required          bool    `json:"required"`
	Status            string  `json:"status"`
	Escalated         bool    `json:"escalated"`
	TriggerAfterHours *int    `json:"triggerAfterHours,omitempty"`
	Deadline          *string `json:"deadline,omitempty"`    // ISO 8601 format
	ActivatedAt       *string `json:"activatedAt,omitempty"` // ISO 8601 format
	DecidedBy         *int64  `json:"decidedBy,omitempty"`
	DecidedAt         *string `json:"decidedAt,omitempty"` // ISO 8601 format
	Notes             *string `json:"notes,omitempty"`
}

// WorkflowResponse процесс согласования бронирования
type WorkflowResponse struct {
	ID          int64          `json:"id"`
	BookingID   int64          `json:"bookingId"`
	Status      string         `json:"status"`
	CurrentStep int            `json:"currentStep"`
	Steps       []StepResponse `json:"steps"`
	CompletedAt *string        `json:"completedAt,omitempty"` // ISO 8601 format
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// DecisionResponse результат решения по шагу
type DecisionResponse struct {
	Workflow      WorkflowResponse `json:"workflow"`
	BookingStatus string           `json:"bookingStatus"`
}

// EscalationRunResponse результат прогона эскалаций
type EscalationRunResponse struct {
	Escalated int `json:"escalated"`
}

// Методы конвертации

// FromDomainWorkflow конвертирует domain модель в DTO
func FromDomainWorkflow(wf *domain.ApprovalWorkflow) *WorkflowResponse {
	if wf == nil {
		return nil
	}

	resp := &WorkflowResponse{
		ID:          wf.ID,
		BookingID:   wf.BookingID,
		Status:      string(wf.Status),
		CurrentStep: wf.CurrentStep,
		Steps:       make([]StepResponse, len(wf.Steps)),
		CompletedAt: formatTime(wf.CompletedAt),
		CreatedAt:   wf.CreatedAt,
		UpdatedAt:   wf.UpdatedAt,
	}

	for i, step := range wf.Steps {
		resp.Steps[i] = StepResponse{
			ID:                step.ID,
			ApproverRole:      step.ApproverRole,
			Required:          step.Required,
			Status:            string(step.Status),
			Escalated:         step.Escalated,
			TriggerAfterHours: step.TriggerAfterHours,
			Deadline:          formatTime(step.Deadline),
			ActivatedAt:       formatTime(step.ActivatedAt),
			DecidedBy:         step.DecidedBy,
			DecidedAt:         formatTime(step.DecidedAt),
			Notes:             step.Notes,
		}
	}

	return resp
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
