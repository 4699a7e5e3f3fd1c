package get_workflow

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mfpdev/MFP-BookingService/internal/api/handlers"
	"github.com/mfpdev/MFP-BookingService/internal/service/approvals"
)

const (
	msgInvalidBookingID = "некорректный ID бронирования"
	msgNotFound         = "процесс согласования не найден"
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

// Handle GET /api/v1/bookings/{bookingId}/workflow
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем bookingId из URL
	vars := mux.Vars(r)
	bookingIDStr := vars["bookingId"]

	bookingID, err := strconv.ParseInt(bookingIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /bookings/{id}/workflow - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	// Получаем процесс согласования
	workflow, err := h.service.GetWorkflow(r.Context(), bookingID)
	if err != nil {
		if errors.Is(err, approvals.ErrWorkflowNotFound) {
			h.logger.Warn("GET /bookings/{id}/workflow - Workflow not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)
			return
		}
		h.logger.Error("GET /bookings/{id}/workflow - Failed to get workflow: booking_id=%d, error=%v",
			bookingID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /bookings/{id}/workflow - Workflow retrieved successfully: booking_id=%d", bookingID)
	handlers.RespondJSON(w, http.StatusOK, workflow)
}
