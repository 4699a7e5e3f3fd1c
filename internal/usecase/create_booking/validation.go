package create_booking

import (
	"fmt"

	"github.com/mfpdev/MFP-BookingService/internal/domain"
)

// validateRequest валидирует входные данные запроса
// Содержимое шаблона повторения проверяет разворачиватель
func validateRequest(req *Request) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	if req.FacilityID <= 0 {
		return fmt.Errorf("%w: facilityID must be positive", ErrInvalidInput)
	}

	if req.ZoneID <= 0 {
		return fmt.Errorf("%w: zoneID must be positive", ErrInvalidInput)
	}

	if !req.ActorType.IsValid() {
		return fmt.Errorf("%w: unknown actor type %q", ErrInvalidInput, req.ActorType)
	}

	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes too long (max %d)", ErrInvalidInput, domain.MaxNotesLength)
	}

	for _, cost := range req.AdditionalCosts {
		if cost.Description == "" {
			return fmt.Errorf("%w: additional cost description is required", ErrInvalidInput)
		}
	}

	return nil
}

// resolveBasePrice возвращает базовую цену зоны
// Если у зоны цена не задана, наследуется цена ближайшего предка
func resolveBasePrice(chain []*domain.Zone) (int64, error) {
	for _, zone := range chain {
		if zone.BasePrice > 0 {
			return zone.BasePrice, nil
		}
	}
	return 0, fmt.Errorf("%w: zone=%d", ErrNoBasePrice, chain[0].ID)
}
