package get_facility_bookings

import (
	"fmt"
	"strconv"
	"time"

	"github.com/mfpdev/MFP-BookingService/internal/domain"
	"github.com/mfpdev/MFP-BookingService/internal/service/bookings/models"
)

// ToServiceRequest формирует запрос к сервису из query параметров
func ToServiceRequest(
	facilityID int64,
	zoneIDStr string,
	statusStr string,
	fromStr string,
	toStr string,
	includeInactiveStr string,
) (*models.GetFacilityBookingsRequest, error) {
	req := &models.GetFacilityBookingsRequest{
		FacilityID:      facilityID,
		IncludeInactive: false, // По умолчанию только активные
	}

	// Парсим zoneId если указан
	if zoneIDStr != "" {
		zoneID, err := strconv.ParseInt(zoneIDStr, 10, 64)
		if err != nil {
			return nil, err
		}
		req.ZoneID = &zoneID
	}

	// Парсим status если указан
	if statusStr != "" {
		req.Status = &statusStr
	}

	// Парсим границы периода если указаны
	if fromStr != "" {
		from, err := time.Parse(domain.DateFormat, fromStr)
		if err != nil {
			return nil, err
		}
		req.StartDate = &from
	}
	if toStr != "" {
		to, err := time.Parse(domain.DateFormat, toStr)
		if err != nil {
			return nil, err
		}
		req.EndDate = &to
	}

	// Парсим includeInactive если указан
	if includeInactiveStr != "" {
		includeInactive, err := strconv.ParseBool(includeInactiveStr)
		if err != nil {
			return nil, fmt.Errorf("invalid includeInactive value: %w", err)
		}
		req.IncludeInactive = includeInactive
	}

	return req, nil
}
