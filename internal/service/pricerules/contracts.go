package pricerules

import (
	"context"

	"github.com/mfpdev/MFP-BookingService/internal/domain"
)

// PriceRuleRepository интерфейс репозитория ценовых правил
type PriceRuleRepository interface {
	Create(ctx context.Context, rule *domain.PriceRule) (*domain.PriceRule, error)
	GetByID(ctx context.Context, id int64) (*domain.PriceRule, error)
	GetAllByFacility(ctx context.Context, facilityID int64) ([]domain.PriceRule, error)
	Update(ctx context.Context, id int64, rule *domain.PriceRule) (*domain.PriceRule, error)
	Deactivate(ctx context.Context, id int64) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
