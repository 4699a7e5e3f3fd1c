package submit_decision

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mfpdev/MFP-BookingService/internal/api/handlers"
	"github.com/mfpdev/MFP-BookingService/internal/api/middleware"
	"github.com/mfpdev/MFP-BookingService/internal/service/approvals"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgBookingNotFound    = "бронирование не найдено"
	msgWorkflowNotFound   = "процесс согласования не найден"
	msgStepNotFound       = "шаг согласования не найден"
	msgInvalidDecision    = "некорректное решение, ожидается approve или reject"
	msgInvalidTransition  = "решение по этому шагу сейчас невозможно"
	msgInvalidInput       = "некорректные данные решения"
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

// Handle POST /api/v1/bookings/{bookingId}/workflow/decision
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем bookingId из URL
	vars := mux.Vars(r)
	bookingIDStr := vars["bookingId"]

	bookingID, err := strconv.ParseInt(bookingIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/workflow/decision - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	// Получаем approverID из контекста (через middleware Auth)
	approverID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings/{id}/workflow/decision - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	// Декодируем body
	var req SubmitDecisionRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/workflow/decision - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Применяем решение
	result, err := h.service.SubmitDecision(r.Context(), bookingID, req.ToServiceRequest(approverID))
	if err != nil {
		switch {
		case errors.Is(err, approvals.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/workflow/decision - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, approvals.ErrWorkflowNotFound):
			h.logger.Warn("POST /bookings/{id}/workflow/decision - Workflow not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgWorkflowNotFound)

		case errors.Is(err, approvals.ErrStepNotFound):
			h.logger.Warn("POST /bookings/{id}/workflow/decision - Step not found: booking_id=%d, step_id=%s",
				bookingID, req.StepID)
			handlers.RespondNotFound(w, msgStepNotFound)

		case errors.Is(err, approvals.ErrInvalidDecision):
			h.logger.Warn("POST /bookings/{id}/workflow/decision - Invalid decision: booking_id=%d, decision=%s",
				bookingID, req.Decision)
			handlers.RespondBadRequest(w, msgInvalidDecision)

		case errors.Is(err, approvals.ErrInvalidTransition):
			h.logger.Warn("POST /bookings/{id}/workflow/decision - Invalid transition: booking_id=%d, step_id=%s",
				bookingID, req.StepID)
			handlers.RespondError(w, http.StatusConflict, msgInvalidTransition)

		case errors.Is(err, approvals.ErrInvalidInput):
			h.logger.Warn("POST /bookings/{id}/workflow/decision - Invalid input: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /bookings/{id}/workflow/decision - Failed to submit decision: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/workflow/decision - Decision submitted: booking_id=%d, approver_id=%d, workflow_status=%s",
		bookingID, approverID, result.Workflow.Status)
	handlers.RespondJSON(w, http.StatusOK, result)
}
