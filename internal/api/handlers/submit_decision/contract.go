package submit_decision

import (
	"context"

	"github.com/mfpdev/MFP-BookingService/internal/service/approvals/models"
)

type ApprovalService interface {
	SubmitDecision(ctx context.Context, bookingID int64, req *models.SubmitDecisionRequest) (*models.DecisionResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
