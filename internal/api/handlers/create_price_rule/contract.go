package create_price_rule

import (
	"context"

	"github.com/mfpdev/MFP-BookingService/internal/service/pricerules/models"
)

type PriceRuleService interface {
	Create(ctx context.Context, req *models.CreateRuleRequest) (*models.RuleResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
