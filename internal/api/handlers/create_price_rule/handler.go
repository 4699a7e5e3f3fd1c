package create_price_rule

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mfpdev/MFP-BookingService/internal/api/handlers"
	"github.com/mfpdev/MFP-BookingService/internal/service/pricerules"
)

const (
	msgInvalidFacilityID  = "некорректный ID объекта"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidInput       = "некорректные данные ценового правила"
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

// Handle POST /api/v1/facilities/{facilityId}/price-rules
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем facilityId из URL
	vars := mux.Vars(r)
	facilityIDStr := vars["facilityId"]

	facilityID, err := strconv.ParseInt(facilityIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("POST /facilities/{id}/price-rules - Invalid facility ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidFacilityID)
		return
	}

	// Декодируем body
	var req CreatePriceRuleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /facilities/{id}/price-rules - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Создаём правило
	result, err := h.service.Create(r.Context(), req.ToServiceRequest(facilityID))
	if err != nil {
		if errors.Is(err, pricerules.ErrInvalidInput) {
			h.logger.Warn("POST /facilities/{id}/price-rules - Invalid input: facility_id=%d, error=%v",
				facilityID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)
			return
		}
		h.logger.Error("POST /facilities/{id}/price-rules - Failed to create price rule: facility_id=%d, error=%v",
			facilityID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /facilities/{id}/price-rules - Price rule created successfully: rule_id=%d, facility_id=%d",
		result.ID, facilityID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
