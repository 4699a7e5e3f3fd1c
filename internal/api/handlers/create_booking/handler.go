package create_booking

import (
	"errors"
	"net/http"

	"github.com/mfpdev/MFP-BookingService/internal/api/handlers"
	"github.com/mfpdev/MFP-BookingService/internal/api/middleware"
	createBooking "github.com/mfpdev/MFP-BookingService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidInput       = "некорректные данные бронирования"
	msgZoneNotFound       = "зона не найдена"
	msgZoneNotInFacility  = "зона не принадлежит объекту"
	msgNoBasePrice        = "для зоны не настроена базовая цена"
	msgBookingConflict    = "часть запрошенных слотов уже занята"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Конвертируем HTTP запрос в модель use case (с парсингом дат и слотов)
	useCaseReq, err := req.ToUseCaseRequest(userID)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, err.Error())
		return
	}

	// Вызываем use case
	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		// Конфликт возвращает полный список занятых вхождений
		var conflictErr *createBooking.ConflictError
		if errors.As(err, &conflictErr) {
			h.logger.Warn("POST /bookings - Booking conflict: user_id=%d, zone_id=%d, conflicts=%d",
				userID, req.ZoneID, len(conflictErr.Conflicts))
			handlers.RespondJSON(w, http.StatusConflict, FromConflictError(msgBookingConflict, conflictErr))
			return
		}

		switch {
		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: user_id=%d, error=%v", userID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, createBooking.ErrZoneNotFound):
			h.logger.Warn("POST /bookings - Zone not found: zone_id=%d", req.ZoneID)
			handlers.RespondNotFound(w, msgZoneNotFound)

		case errors.Is(err, createBooking.ErrZoneNotInFacility):
			h.logger.Warn("POST /bookings - Zone not in facility: zone_id=%d, facility_id=%d",
				req.ZoneID, req.FacilityID)
			handlers.RespondBadRequest(w, msgZoneNotInFacility)

		case errors.Is(err, createBooking.ErrNoBasePrice):
			h.logger.Warn("POST /bookings - No base price: zone_id=%d", req.ZoneID)
			handlers.RespondError(w, http.StatusUnprocessableEntity, msgNoBasePrice)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: user_id=%d, zone_id=%d, error=%v",
				userID, req.ZoneID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, user_id=%d, zone_id=%d, status=%s",
		result.ID, userID, req.ZoneID, result.Status)
	handlers.RespondJSON(w, http.StatusCreated, response)
}
