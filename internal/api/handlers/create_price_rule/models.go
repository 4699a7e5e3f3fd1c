package create_price_rule

import (
	"github.com/mfpdev/MFP-BookingService/internal/service/pricerules/models"
)

// CreatePriceRuleRequest HTTP request model
type CreatePriceRuleRequest struct {
	ActorType  string  `json:"actorType"`
	Category   *string `json:"category,omitempty"`
	DayType    *string `json:"dayType,omitempty"`
	Multiplier float64 `json:"multiplier"`
	Priority   int     `json:"priority"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *CreatePriceRuleRequest) ToServiceRequest(facilityID int64) *models.CreateRuleRequest {
	return &models.CreateRuleRequest{
		FacilityID: facilityID,
		ActorType:  r.ActorType,
		Category:   r.Category,
		DayType:    r.DayType,
		Multiplier: r.Multiplier,
		Priority:   r.Priority,
	}
}
