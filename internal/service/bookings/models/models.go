package models

import (
	"errors"
	"time"

	"github.com/mfpdev/MFP-BookingService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	UserID             int64  `json:"userId"`
	CancellationReason string `json:"cancellationReason"`
}

// GetUserBookingsRequest запрос на получение бронирований пользователя
type GetUserBookingsRequest struct {
	UserID int64   `json:"userId"`
	Status *string `json:"status,omitempty"`
}

// GetFacilityBookingsRequest запрос на получение бронирований объекта
type GetFacilityBookingsRequest struct {
	FacilityID      int64      `json:"facilityId"`
	ZoneID          *int64     `json:"zoneId,omitempty"`          // Фильтр по зоне (опционально)
	StartDate       *time.Time `json:"startDate,omitempty"`       // Начало периода (опционально)
	EndDate         *time.Time `json:"endDate,omitempty"`         // Конец периода (опционально)
	Status          *string    `json:"status,omitempty"`          // Фильтр по статусу (опционально)
	IncludeInactive bool       `json:"includeInactive,omitempty"` // Включить отменённые и отклонённые
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetFacilityBookingsRequest) ToDomainFilter() (domain.FacilityBookingsFilter, error) {
	filter := domain.FacilityBookingsFilter{
		FacilityID:      r.FacilityID,
		ZoneID:          r.ZoneID,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		IncludeInactive: r.IncludeInactive,
	}

	// Конвертируем статус если указан
	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// OccurrenceResponse одно вхождение бронирования
type OccurrenceResponse struct {
	ZoneID int64  `json:"zoneId"`
	Date   string `json:"date"` // "2025-10-15"
	Slot   string `json:"slot"` // "18:00-20:00"
}

// PriceLineResponse строка расчёта цены за вхождение
type PriceLineResponse struct {
	Occurrence    OccurrenceResponse `json:"occurrence"`
	BasePrice     int64              `json:"basePrice"`
	AppliedRuleID *int64             `json:"appliedRuleId,omitempty"`
	Multiplier    float64            `json:"multiplier"`
	FinalPrice    int64              `json:"finalPrice"`
}

// AdditionalCostResponse дополнительная позиция расчёта
type AdditionalCostResponse struct {
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
}

// PricingResponse полный расчёт цены бронирования
type PricingResponse struct {
	Lines      []PriceLineResponse      `json:"lines"`
	Additional []AdditionalCostResponse `json:"additional,omitempty"`
	Total      int64                    `json:"total"`
}

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID             int64                `json:"id"`
	FacilityID     int64                `json:"facilityId"`
	ZoneID         int64                `json:"zoneId"`
	UserID         int64                `json:"userId"`
	ActorType      string               `json:"actorType"`
	OrganizationID *int64               `json:"organizationId,omitempty"`
	Status         string               `json:"status"`
	Occurrences    []OccurrenceResponse `json:"occurrences"`
	Pricing        PricingResponse      `json:"pricing"`
	WorkflowStatus *string              `json:"workflowStatus,omitempty"`
	Notes          *string              `json:"notes,omitempty"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:                 b.ID,
		FacilityID:         b.FacilityID,
		ZoneID:             b.ZoneID,
		UserID:             b.UserID,
		ActorType:          string(b.ActorType),
		OrganizationID:     b.OrganizationID,
		Status:             string(b.Status),
		Occurrences:        fromDomainOccurrences(b.Occurrences),
		Pricing:            fromDomainPricing(b.Pricing),
		Notes:              b.Notes,
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}

	if b.Workflow != nil {
		status := string(b.Workflow.Status)
		resp.WorkflowStatus = &status
	}

	// Конвертируем CancelledAt в строку ISO 8601
	if b.CancelledAt != nil {
		cancelledStr := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	if bookings == nil {
		return &BookingListResponse{
			Bookings: []BookingResponse{},
		}
	}

	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, len(bookings)),
	}

	for i, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings[i] = *bookingResp
		}
	}

	return resp
}

func fromDomainOccurrences(occurrences []domain.Occurrence) []OccurrenceResponse {
	result := make([]OccurrenceResponse, len(occurrences))
	for i, occ := range occurrences {
		result[i] = OccurrenceResponse{
			ZoneID: occ.ZoneID,
			Date:   occ.Date.Format(domain.DateFormat),
			Slot:   occ.Slot.String(),
		}
	}
	return result
}

func fromDomainPricing(p domain.PricingBreakdown) PricingResponse {
	resp := PricingResponse{
		Lines: make([]PriceLineResponse, len(p.Lines)),
		Total: p.Total,
	}

	for i, line := range p.Lines {
		resp.Lines[i] = PriceLineResponse{
			Occurrence: OccurrenceResponse{
				ZoneID: line.Occurrence.ZoneID,
				Date:   line.Occurrence.Date.Format(domain.DateFormat),
				Slot:   line.Occurrence.Slot.String(),
			},
			BasePrice:     line.BasePrice,
			AppliedRuleID: line.AppliedRuleID,
			Multiplier:    line.Multiplier,
			FinalPrice:    line.FinalPrice,
		}
	}

	for _, cost := range p.Additional {
		resp.Additional = append(resp.Additional, AdditionalCostResponse{
			Description: cost.Description,
			Amount:      cost.Amount,
		})
	}

	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(status)

	// Валидируем статус
	validStatuses := []domain.BookingStatus{
		domain.StatusPendingApproval,
		domain.StatusApproved,
		domain.StatusRejected,
		domain.StatusCancelled,
	}

	for _, valid := range validStatuses {
		if s == valid {
			return s, nil
		}
	}

	return "", ErrInvalidStatus
}
