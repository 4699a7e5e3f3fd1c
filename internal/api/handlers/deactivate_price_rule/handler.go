package deactivate_price_rule

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mfpdev/MFP-BookingService/internal/api/handlers"
	"github.com/mfpdev/MFP-BookingService/internal/service/pricerules"
)

const (
	msgInvalidRuleID = "некорректный ID ценового правила"
	msgNotFound      = "ценовое правило не найдено"
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

// Handle PATCH /api/v1/price-rules/{ruleId}/deactivate
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем ruleId из URL
	vars := mux.Vars(r)
	ruleIDStr := vars["ruleId"]

	ruleID, err := strconv.ParseInt(ruleIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /price-rules/{id}/deactivate - Invalid rule ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRuleID)
		return
	}

	// Выключаем правило
	if err := h.service.Deactivate(r.Context(), ruleID); err != nil {
		if errors.Is(err, pricerules.ErrRuleNotFound) {
			h.logger.Warn("PATCH /price-rules/{id}/deactivate - Price rule not found: rule_id=%d", ruleID)
			handlers.RespondNotFound(w, msgNotFound)
			return
		}
		h.logger.Error("PATCH /price-rules/{id}/deactivate - Failed to deactivate price rule: rule_id=%d, error=%v",
			ruleID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("PATCH /price-rules/{id}/deactivate - Price rule deactivated successfully: rule_id=%d", ruleID)
	handlers.RespondJSON(w, http.StatusOK, nil)
}
