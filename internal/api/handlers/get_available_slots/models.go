package get_available_slots

import (
	"strconv"
	"time"

	"github.com/mfpdev/MFP-BookingService/internal/domain"
	getAvailableSlots "github.com/mfpdev/MFP-BookingService/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	ZoneID int64           `json:"zoneId"`
	Date   string          `json:"date"`
	Slots  []AvailableSlot `json:"slots"`
}

// AvailableSlot модель временного слота
type AvailableSlot struct {
	Slot      string `json:"slot"` // "18:00-20:00"
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]AvailableSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = AvailableSlot{
			Slot:      slot.Slot.String(),
			Available: slot.Available,
			Reason:    slot.Reason,
		}
	}

	return &AvailableSlotsResponse{
		ZoneID: resp.ZoneID,
		Date:   resp.Date.Format(domain.DateFormat),
		Slots:  slots,
	}
}

// ToUseCaseRequest создает запрос use case из query параметров
func ToUseCaseRequest(zoneID int64, dateStr, durationStr string) (*getAvailableSlots.Request, error) {
	// Парсим дату
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, err
	}

	// Парсим длительность если указана; 0 - гранулярность сетки
	duration := 0
	if durationStr != "" {
		duration, err = strconv.Atoi(durationStr)
		if err != nil {
			return nil, err
		}
	}

	return &getAvailableSlots.Request{
		ZoneID:          zoneID,
		Date:            date,
		DurationMinutes: duration,
	}, nil
}
