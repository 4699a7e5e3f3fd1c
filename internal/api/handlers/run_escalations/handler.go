package run_escalations

import (
	"net/http"

	"github.com/mfpdev/MFP-BookingService/internal/api/handlers"
)

type Handler struct {
	service ApprovalService
	logger  Logger
}

func NewHandler(service ApprovalService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/workflows/escalations/run
// Эндпоинт для планировщика, дополняет периодический фоновый прогон
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.RunEscalations(r.Context())
	if err != nil {
		h.logger.Error("POST /workflows/escalations/run - Failed to run escalations: error=%v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /workflows/escalations/run - Escalations completed: escalated=%d", result.Escalated)
	handlers.RespondJSON(w, http.StatusOK, result)
}
