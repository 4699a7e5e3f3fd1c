package get_price_rules

import (
	"context"

	"github.com/mfpdev/MFP-BookingService/internal/service/pricerules/models"
)

type PriceRuleService interface {
	GetByFacility(ctx context.Context, facilityID int64) (*models.RuleListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
