package models

import (
	"time"

	"github.com/mfpdev/MFP-BookingService/internal/domain"
)

// Request модели

// CreateRuleRequest запрос на создание ценового правила
type CreateRuleRequest struct {
	FacilityID int64   `json:"facilityId"`
	ActorType  string  `json:"actorType"`
	Category   *string `json:"category,omitempty"` // NULL = любое время суток
	DayType    *string `json:"dayType,omitempty"`  // NULL = любой тип дня
	Multiplier float64 `json:"multiplier"`         // <1 скидка, >1 наценка
	Priority   int     `json:"priority"`
}

// UpdateRuleRequest запрос на обновление ценового правила
// Все поля опциональны - обновляются только переданные значения
type UpdateRuleRequest struct {
	ActorType  *string  `json:"actorType,omitempty"`
	Category   *string  `json:"category,omitempty"`
	DayType    *string  `json:"dayType,omitempty"`
	Multiplier *float64 `json:"multiplier,omitempty"`
	Priority   *int     `json:"priority,omitempty"`
}

// Response модели

// RuleResponse ответ с данными ценового правила
type RuleResponse struct {
	ID         int64     `json:"id"`
	FacilityID int64     `json:"facilityId"`
	ActorType  string    `json:"actorType"`
	Category   *string   `json:"category,omitempty"`
	DayType    *string   `json:"dayType,omitempty"`
	Multiplier float64   `json:"multiplier"`
	Priority   int       `json:"priority"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// RuleListResponse ответ со списком ценовых правил
type RuleListResponse struct {
	Rules []RuleResponse `json:"rules"`
}

// Методы конвертации

// FromDomainRule конвертирует domain модель в DTO
func FromDomainRule(r *domain.PriceRule) *RuleResponse {
	if r == nil {
		return nil
	}

	resp := &RuleResponse{
		ID:         r.ID,
		FacilityID: r.FacilityID,
		ActorType:  string(r.ActorType),
		Multiplier: r.Multiplier,
		Priority:   r.Priority,
		Active:     r.Active,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}

	if r.Category != nil {
		category := string(*r.Category)
		resp.Category = &category
	}
	if r.DayType != nil {
		dayType := string(*r.DayType)
		resp.DayType = &dayType
	}

	return resp
}

// FromDomainRuleList конвертирует список domain моделей в DTO
func FromDomainRuleList(rules []domain.PriceRule) *RuleListResponse {
	resp := &RuleListResponse{
		Rules: make([]RuleResponse, len(rules)),
	}

	for i := range rules {
		resp.Rules[i] = *FromDomainRule(&rules[i])
	}

	return resp
}

// ToDomainRule конвертирует request в domain модель
// Валидация значений выполняется сервисом до конвертации
func (r *CreateRuleRequest) ToDomainRule() *domain.PriceRule {
	rule := &domain.PriceRule{
		FacilityID: r.FacilityID,
		ActorType:  domain.ActorType(r.ActorType),
		Multiplier: r.Multiplier,
		Priority:   r.Priority,
		Active:     true,
	}

	if r.Category != nil {
		category := domain.TimeSlotCategory(*r.Category)
		rule.Category = &category
	}
	if r.DayType != nil {
		dayType := domain.DayType(*r.DayType)
		rule.DayType = &dayType
	}

	return rule
}

// ApplyToRule применяет переданные поля запроса к правилу
func (r *UpdateRuleRequest) ApplyToRule(rule *domain.PriceRule) {
	if r.ActorType != nil {
		rule.ActorType = domain.ActorType(*r.ActorType)
	}
	if r.Category != nil {
		category := domain.TimeSlotCategory(*r.Category)
		rule.Category = &category
	}
	if r.DayType != nil {
		dayType := domain.DayType(*r.DayType)
		rule.DayType = &dayType
	}
	if r.Multiplier != nil {
		rule.Multiplier = *r.Multiplier
	}
	if r.Priority != nil {
		rule.Priority = *r.Priority
	}
}
