package get_workflow

import (
	"context"

	"github.com/mfpdev/MFP-BookingService/internal/service/approvals/models"
)

type ApprovalService interface {
	GetWorkflow(ctx context.Context, bookingID int64) (*models.WorkflowResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
