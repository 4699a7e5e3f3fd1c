package pricing

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/mfpdev/MFP-BookingService/internal/domain"
	"github.com/mfpdev/MFP-BookingService/pkg/types"
)

// Ошибки расчёта цены
var (
	// ErrNoBasePrice возвращается, когда базовая цена зоны не определена
	ErrNoBasePrice = errors.New("pricing: no base price resolvable")
	// ErrInvalidOccurrence возвращается для вхождения с некорректным слотом
	ErrInvalidOccurrence = errors.New("pricing: invalid occurrence")
)

// Calculator детерминированный калькулятор цены бронирования
// Никакого состояния и обращений к часам: тип дня выводится
// только из даты вхождения и переданного календаря праздников
type Calculator struct{}

// NewCalculator создает калькулятор
func NewCalculator() *Calculator {
	return &Calculator{}
}

// CategoryForStart возвращает категорию времени суток по началу слота
// morning < 12:00, day 12:00-17:00, evening 17:00-22:00, night - остальное
func CategoryForStart(start types.TimeString) (domain.TimeSlotCategory, error) {
	hour, err := start.Hour()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidOccurrence, err)
	}
	switch {
	case hour < 6:
		return domain.SlotNight, nil
	case hour < 12:
		return domain.SlotMorning, nil
	case hour < 17:
		return domain.SlotDay, nil
	case hour < 22:
		return domain.SlotEvening, nil
	default:
		return domain.SlotNight, nil
	}
}

// DayTypeFor возвращает тип дня: праздник (из внешнего календаря),
// выходной (суббота/воскресенье) или будний
func DayTypeFor(date time.Time, holidays domain.HolidayCalendar) domain.DayType {
	if holidays.IsHoliday(date) {
		return domain.DayHoliday
	}
	if date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
		return domain.DayWeekend
	}
	return domain.DayWeekday
}

// PriceOccurrence рассчитывает цену одного вхождения
// Из подходящих активных правил выигрывает наибольший приоритет,
// ничья разрешается большей специфичностью, затем меньшим ID
// Без подходящего правила берётся базовая цена без изменений
func (c *Calculator) PriceOccurrence(
	occ domain.Occurrence,
	basePrice int64,
	actorType domain.ActorType,
	rules []domain.PriceRule,
	holidays domain.HolidayCalendar,
) (domain.PriceLine, error) {
	if basePrice <= 0 {
		return domain.PriceLine{}, fmt.Errorf("%w: zone=%d", ErrNoBasePrice, occ.ZoneID)
	}
	if err := occ.Slot.Validate(); err != nil {
		return domain.PriceLine{}, fmt.Errorf("%w: %v", ErrInvalidOccurrence, err)
	}

	category, err := categoryForSlot(occ)
	if err != nil {
		return domain.PriceLine{}, err
	}
	dayType := DayTypeFor(occ.Date, holidays)

	rule := selectRule(rules, actorType, category, dayType)

	line := domain.PriceLine{
		Occurrence: occ,
		BasePrice:  basePrice,
		Multiplier: 1.0,
		FinalPrice: basePrice,
	}

	if rule != nil {
		line.AppliedRuleID = &rule.ID
		line.Multiplier = rule.Multiplier
		line.FinalPrice = roundHalfUp(float64(basePrice) * rule.Multiplier)
	}

	return line, nil
}

// PriceBooking рассчитывает полную стоимость бронирования:
// сумма построчных цен вхождений плюс плоские доплаты и скидки
func (c *Calculator) PriceBooking(
	occurrences []domain.Occurrence,
	basePrice int64,
	actorType domain.ActorType,
	rules []domain.PriceRule,
	holidays domain.HolidayCalendar,
	additional []domain.AdditionalCost,
) (domain.PricingBreakdown, error) {
	breakdown := domain.PricingBreakdown{
		Lines:      make([]domain.PriceLine, 0, len(occurrences)),
		Additional: additional,
	}

	for _, occ := range occurrences {
		line, err := c.PriceOccurrence(occ, basePrice, actorType, rules, holidays)
		if err != nil {
			return domain.PricingBreakdown{}, err
		}
		breakdown.Lines = append(breakdown.Lines, line)
		breakdown.Total += line.FinalPrice
	}

	for _, cost := range additional {
		breakdown.Total += cost.Amount
	}

	return breakdown, nil
}

func categoryForSlot(occ domain.Occurrence) (domain.TimeSlotCategory, error) {
	return CategoryForStart(occ.Slot.Start)
}

// selectRule выбирает победившее правило или nil, если ни одно не подходит
func selectRule(
	rules []domain.PriceRule,
	actorType domain.ActorType,
	category domain.TimeSlotCategory,
	dayType domain.DayType,
) *domain.PriceRule {
	matched := make([]domain.PriceRule, 0)
	for _, rule := range rules {
		if rule.Matches(actorType, category, dayType) {
			matched = append(matched, rule)
		}
	}
	if len(matched) == 0 {
		return nil
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Priority != matched[j].Priority {
			return matched[i].Priority > matched[j].Priority
		}
		if matched[i].Specificity() != matched[j].Specificity() {
			return matched[i].Specificity() > matched[j].Specificity()
		}
		// Стабильная ничья для детерминизма
		return matched[i].ID < matched[j].ID
	})

	return &matched[0]
}

// roundHalfUp округляет к ближайшей целой кроне, половина всегда вверх
// Банковское округление здесь не используется
func roundHalfUp(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}
