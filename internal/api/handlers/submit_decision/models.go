package submit_decision

import (
	"github.com/mfpdev/MFP-BookingService/internal/service/approvals/models"
)

// SubmitDecisionRequest HTTP request model
type SubmitDecisionRequest struct {
	StepID   string  `json:"stepId"`
	Decision string  `json:"decision"` // "approve" или "reject"
	Notes    *string `json:"notes,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *SubmitDecisionRequest) ToServiceRequest(approverID int64) *models.SubmitDecisionRequest {
	return &models.SubmitDecisionRequest{
		ApproverID: approverID,
		StepID:     r.StepID,
		Decision:   r.Decision,
		Notes:      r.Notes,
	}
}
