package get_available_slots

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mfpdev/MFP-BookingService/internal/api/handlers"
	getAvailableSlots "github.com/mfpdev/MFP-BookingService/internal/usecase/get_available_slots"
)

const (
	msgInvalidZoneID   = "некорректный ID зоны"
	msgMissingDate     = "дата обязательна"
	msgInvalidDate     = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidDuration = "некорректная длительность слота"
	msgZoneNotFound    = "зона не найдена"
	msgDateInPast      = "дата в прошлом"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/zones/{zoneId}/available-slots
// Query params: date (required, YYYY-MM-DD), duration (опционально, минуты)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	// Извлекаем zoneId из URL
	zoneIDStr := vars["zoneId"]
	zoneID, err := strconv.ParseInt(zoneIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /zones/{id}/available-slots - Invalid zone ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidZoneID)
		return
	}

	// Извлекаем date из query параметров
	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /zones/{id}/available-slots - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	// Формируем запрос к use case (с парсингом даты и длительности)
	useCaseReq, err := ToUseCaseRequest(zoneID, dateStr, r.URL.Query().Get("duration"))
	if err != nil {
		h.logger.Warn("GET /zones/{id}/available-slots - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	// Вызываем use case
	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrZoneNotFound):
			h.logger.Warn("GET /zones/{id}/available-slots - Zone not found: zone_id=%d", zoneID)
			handlers.RespondNotFound(w, msgZoneNotFound)

		case errors.Is(err, getAvailableSlots.ErrInvalidDate):
			h.logger.Warn("GET /zones/{id}/available-slots - Date in past: zone_id=%d, date=%s", zoneID, dateStr)
			handlers.RespondBadRequest(w, msgDateInPast)

		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			h.logger.Warn("GET /zones/{id}/available-slots - Invalid input: zone_id=%d, error=%v", zoneID, err)
			handlers.RespondBadRequest(w, msgInvalidDuration)

		default:
			h.logger.Error("GET /zones/{id}/available-slots - Failed to get slots: zone_id=%d, error=%v",
				zoneID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	// Формируем HTTP ответ
	response := FromUseCaseResponse(result)

	h.logger.Info("GET /zones/{id}/available-slots - Slots retrieved successfully: zone_id=%d, date=%s, slots_count=%d",
		zoneID, dateStr, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, response)
}
