package domain

import "time"

// TimeSlotCategory категория времени суток для ценовых правил
type TimeSlotCategory string

const (
	SlotMorning TimeSlotCategory = "morning" // до 12:00
	SlotDay     TimeSlotCategory = "day"     // 12:00 - 17:00
	SlotEvening TimeSlotCategory = "evening" // 17:00 - 22:00
	SlotNight   TimeSlotCategory = "night"   // всё остальное
)

// DayType тип дня для ценовых правил
type DayType string

const (
	DayWeekday DayType = "weekday"
	DayWeekend DayType = "weekend"
	DayHoliday DayType = "holiday"
)

// PriceRule ценовое правило: множитель к базовой цене зоны
// Категория времени и тип дня опциональны: nil означает "любой"
// Из подходящих правил выигрывает наибольший приоритет,
// при равном приоритете - более специфичное правило
type PriceRule struct {
	ID         int64
	FacilityID int64
	ActorType  ActorType
	Category   *TimeSlotCategory
	DayType    *DayType
	Multiplier float64 // <1 скидка, >1 наценка
	Priority   int
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Specificity возвращает число заполненных опциональных измерений правила
// Используется для разрешения ничьей по приоритету
func (r PriceRule) Specificity() int {
	score := 0
	if r.Category != nil {
		score++
	}
	if r.DayType != nil {
		score++
	}
	return score
}

// Matches проверяет, что правило применимо к заявителю, категории и типу дня
func (r PriceRule) Matches(actor ActorType, category TimeSlotCategory, dayType DayType) bool {
	if !r.Active || r.ActorType != actor {
		return false
	}
	if r.Category != nil && *r.Category != category {
		return false
	}
	if r.DayType != nil && *r.DayType != dayType {
		return false
	}
	return true
}

// PriceLine строка расчёта цены одного вхождения
// JSON-теги фиксируют формат хранения расчёта в колонке pricing (JSONB)
type PriceLine struct {
	Occurrence    Occurrence `json:"occurrence"`
	BasePrice     int64      `json:"basePrice"`
	AppliedRuleID *int64     `json:"appliedRuleId,omitempty"` // nil - правило не применялось
	Multiplier    float64    `json:"multiplier"`              // 1.0 если правило не применялось
	FinalPrice    int64      `json:"finalPrice"`
}

// AdditionalCost плоская доплата или скидка (знаковая), переданная вызывающей стороной
// Исторические скидки и наценки сохраняются такими строками для аудита
type AdditionalCost struct {
	Description string `json:"description"`
	Amount      int64  `json:"amount"` // NOK, может быть отрицательной
}

// PricingBreakdown полный расчёт цены бронирования
type PricingBreakdown struct {
	Lines      []PriceLine      `json:"lines"`
	Additional []AdditionalCost `json:"additional,omitempty"`
	Total      int64            `json:"total"`
}

// HolidayCalendar набор праздничных дат, поставляется извне
// Ключ - дата в формате DateFormat
type HolidayCalendar map[string]struct{}

// IsHoliday проверяет, что дата является праздничным днём
func (h HolidayCalendar) IsHoliday(date time.Time) bool {
	if h == nil {
		return false
	}
	_, ok := h[date.Format(DateFormat)]
	return ok
}
