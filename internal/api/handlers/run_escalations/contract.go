package run_escalations

import (
	"context"

	"github.com/mfpdev/MFP-BookingService/internal/service/approvals/models"
)

type ApprovalService interface {
	RunEscalations(ctx context.Context) (*models.EscalationRunResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
