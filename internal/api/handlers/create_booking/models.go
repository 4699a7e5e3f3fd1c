package create_booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/mfpdev/MFP-BookingService/internal/domain"
	createBooking "github.com/mfpdev/MFP-BookingService/internal/usecase/create_booking"
	"github.com/mfpdev/MFP-BookingService/pkg/types"
)

// RecurrencePatternRequest шаблон повторения в HTTP запросе
type RecurrencePatternRequest struct {
	Type       string   `json:"type"`                 // weekly, biweekly, monthly
	Weekdays   []string `json:"weekdays"`             // "monday" .. "sunday"
	TimeSlots  []string `json:"timeSlots"`            // "18:00-20:00"
	StartDate  string   `json:"startDate"`            // "2025-05-01"
	EndDate    string   `json:"endDate"`              // "2025-05-31"
	Exceptions []string `json:"exceptions,omitempty"` // даты-исключения
}

// AdditionalCostRequest доплата или скидка в HTTP запросе
type AdditionalCostRequest struct {
	Description string `json:"description"`
	Amount      int64  `json:"amount"` // NOK, может быть отрицательной
}

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	FacilityID      int64                    `json:"facilityId"`
	ZoneID          int64                    `json:"zoneId"`
	ActorType       string                   `json:"actorType"`
	OrganizationID  *int64                   `json:"organizationId,omitempty"`
	Pattern         RecurrencePatternRequest `json:"pattern"`
	AdditionalCosts []AdditionalCostRequest  `json:"additionalCosts,omitempty"`
	Notes           *string                  `json:"notes,omitempty"`
}

// OccurrenceResponse одно вхождение бронирования
type OccurrenceResponse struct {
	ZoneID int64  `json:"zoneId"`
	Date   string `json:"date"`
	Slot   string `json:"slot"`
}

// PriceLineResponse строка расчёта цены
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

// PricingResponse полный расчёт цены
type PricingResponse struct {
	Lines      []PriceLineResponse      `json:"lines"`
	Additional []AdditionalCostResponse `json:"additional,omitempty"`
	Total      int64                    `json:"total"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID             int64                `json:"id"`
	FacilityID     int64                `json:"facilityId"`
	ZoneID         int64                `json:"zoneId"`
	UserID         int64                `json:"userId"`
	ActorType      string               `json:"actorType"`
	Status         string               `json:"status"`
	Occurrences    []OccurrenceResponse `json:"occurrences"`
	Truncated      bool                 `json:"truncated,omitempty"`
	Pricing        PricingResponse      `json:"pricing"`
	WorkflowStatus string               `json:"workflowStatus"`
	Notes          *string              `json:"notes,omitempty"`
	CreatedAt      string               `json:"createdAt"`
	UpdatedAt      string               `json:"updatedAt"`
}

// ConflictResponse тело ответа 409 со списком конфликтов
type ConflictResponse struct {
	Error     string                   `json:"error"`
	Conflicts []ConflictDetailResponse `json:"conflicts"`
}

// ConflictDetailResponse конфликт одного вхождения
type ConflictDetailResponse struct {
	Occurrence            OccurrenceResponse `json:"occurrence"`
	Reason                string             `json:"reason"`
	ConflictingBookingIDs []int64            `json:"conflictingBookingIds,omitempty"`
}

var weekdaysByName = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(userID int64) (*createBooking.Request, error) {
	pattern, err := r.Pattern.toDomain()
	if err != nil {
		return nil, err
	}

	costs := make([]domain.AdditionalCost, len(r.AdditionalCosts))
	for i, c := range r.AdditionalCosts {
		costs[i] = domain.AdditionalCost{Description: c.Description, Amount: c.Amount}
	}

	return &createBooking.Request{
		UserID:          userID,
		FacilityID:      r.FacilityID,
		ZoneID:          r.ZoneID,
		ActorType:       domain.ActorType(r.ActorType),
		OrganizationID:  r.OrganizationID,
		Pattern:         pattern,
		AdditionalCosts: costs,
		Notes:           r.Notes,
	}, nil
}

func (p *RecurrencePatternRequest) toDomain() (domain.RecurrencePattern, error) {
	pattern := domain.RecurrencePattern{
		Type: domain.RecurrenceType(p.Type),
	}

	for _, name := range p.Weekdays {
		weekday, ok := weekdaysByName[strings.ToLower(name)]
		if !ok {
			return pattern, fmt.Errorf("unknown weekday %q", name)
		}
		pattern.Weekdays = append(pattern.Weekdays, weekday)
	}

	for _, slot := range p.TimeSlots {
		timeRange, err := types.NewTimeRangeFromString(slot)
		if err != nil {
			return pattern, fmt.Errorf("invalid time slot %q: %w", slot, err)
		}
		pattern.TimeSlots = append(pattern.TimeSlots, timeRange)
	}

	var err error
	if pattern.StartDate, err = time.Parse(domain.DateFormat, p.StartDate); err != nil {
		return pattern, fmt.Errorf("invalid start date %q", p.StartDate)
	}
	if pattern.EndDate, err = time.Parse(domain.DateFormat, p.EndDate); err != nil {
		return pattern, fmt.Errorf("invalid end date %q", p.EndDate)
	}

	for _, exception := range p.Exceptions {
		date, err := time.Parse(domain.DateFormat, exception)
		if err != nil {
			return pattern, fmt.Errorf("invalid exception date %q", exception)
		}
		pattern.Exceptions = append(pattern.Exceptions, date)
	}

	return pattern, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	return &BookingResponse{
		ID:             resp.ID,
		FacilityID:     resp.FacilityID,
		ZoneID:         resp.ZoneID,
		UserID:         resp.UserID,
		ActorType:      string(resp.ActorType),
		Status:         string(resp.Status),
		Occurrences:    fromOccurrences(resp.Occurrences),
		Truncated:      resp.Truncated,
		Pricing:        fromPricing(resp.Pricing),
		WorkflowStatus: string(resp.WorkflowStatus),
		Notes:          resp.Notes,
		CreatedAt:      resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      resp.UpdatedAt.Format(time.RFC3339),
	}
}

// FromConflictError конвертирует конфликт вхождений в тело 409
func FromConflictError(message string, conflictErr *createBooking.ConflictError) *ConflictResponse {
	resp := &ConflictResponse{
		Error:     message,
		Conflicts: make([]ConflictDetailResponse, len(conflictErr.Conflicts)),
	}
	for i, c := range conflictErr.Conflicts {
		resp.Conflicts[i] = ConflictDetailResponse{
			Occurrence:            fromOccurrence(c.Occurrence),
			Reason:                c.Reason,
			ConflictingBookingIDs: c.ConflictingBookingIDs,
		}
	}
	return resp
}

func fromOccurrence(occ domain.Occurrence) OccurrenceResponse {
	return OccurrenceResponse{
		ZoneID: occ.ZoneID,
		Date:   occ.Date.Format(domain.DateFormat),
		Slot:   occ.Slot.String(),
	}
}

func fromOccurrences(occurrences []domain.Occurrence) []OccurrenceResponse {
	result := make([]OccurrenceResponse, len(occurrences))
	for i, occ := range occurrences {
		result[i] = fromOccurrence(occ)
	}
	return result
}

func fromPricing(p domain.PricingBreakdown) PricingResponse {
	resp := PricingResponse{
		Lines: make([]PriceLineResponse, len(p.Lines)),
		Total: p.Total,
	}
	for i, line := range p.Lines {
		resp.Lines[i] = PriceLineResponse{
			Occurrence:    fromOccurrence(line.Occurrence),
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
