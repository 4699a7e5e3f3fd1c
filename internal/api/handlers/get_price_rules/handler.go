package get_price_rules

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mfpdev/MFP-BookingService/internal/api/handlers"
)

const (
	msgInvalidFacilityID = "некорректный ID объекта"
)

type Handler struct {
	service PriceRuleService
	logger  Logger
}

func NewHandler(service PriceRuleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/facilities/{facilityId}/price-rules
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем facilityId из URL
	vars := mux.Vars(r)
	facilityIDStr := vars["facilityId"]

	facilityID, err := strconv.ParseInt(facilityIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /facilities/{id}/price-rules - Invalid facility ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidFacilityID)
		return
	}

	// Получаем ценовые правила объекта
	result, err := h.service.GetByFacility(r.Context(), facilityID)
	if err != nil {
		h.logger.Error("GET /facilities/{id}/price-rules - Failed to get price rules: facility_id=%d, error=%v",
			facilityID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /facilities/{id}/price-rules - Price rules retrieved successfully: facility_id=%d, count=%d",
		facilityID, len(result.Rules))
	handlers.RespondJSON(w, http.StatusOK, result.Rules)
}
