package pricerules

import (
	"context"
	"errors"
	"fmt"

	"github.com/mfpdev/MFP-BookingService/internal/domain"
	ruleRepo "github.com/mfpdev/MFP-BookingService/internal/infra/storage/pricerule"
	"github.com/mfpdev/MFP-BookingService/internal/service/pricerules/models"
)

// Service сервис управления ценовыми правилами объекта
// Авторизация администраторов выполняется на шлюзе до этого сервиса
type Service struct {
	ruleRepo PriceRuleRepository
	logger   Logger
}

// NewService создает новый экземпляр сервиса ценовых правил
func NewService(ruleRepo PriceRuleRepository, logger Logger) *Service {
	return &Service{
		ruleRepo: ruleRepo,
		logger:   logger,
	}
}

// Create создает новое ценовое правило
func (s *Service) Create(ctx context.Context, req *models.CreateRuleRequest) (*models.RuleResponse, error) {
	s.logger.Info("Create: creating price rule for facility=%d, actor=%s", req.FacilityID, req.ActorType)

	if req.FacilityID <= 0 {
		return nil, fmt.Errorf("%w: facilityId must be positive", ErrInvalidInput)
	}
	rule := req.ToDomainRule()
	if err := s.validateRule(rule); err != nil {
		s.logger.Warn("Create: validation failed for facility=%d: %v", req.FacilityID, err)
		return nil, err
	}

	created, err := s.ruleRepo.Create(ctx, rule)
	if err != nil {
		s.logger.Error("Create: repository error for facility=%d: %v", req.FacilityID, err)
		return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Create: successfully created price rule id=%d", created.ID)
	return models.FromDomainRule(created), nil
}

// GetByFacility возвращает все ценовые правила объекта, включая неактивные
func (s *Service) GetByFacility(ctx context.Context, facilityID int64) (*models.RuleListResponse, error) {
	s.logger.Info("GetByFacility: fetching price rules for facility=%d", facilityID)

	rules, err := s.ruleRepo.GetAllByFacility(ctx, facilityID)
	if err != nil {
		s.logger.Error("GetByFacility: repository error for facility=%d: %v", facilityID, err)
		return nil, fmt.Errorf("%w: GetByFacility - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetByFacility: successfully fetched %d rules for facility=%d", len(rules), facilityID)
	return models.FromDomainRuleList(rules), nil
}

// Update обновляет переданные поля ценового правила
func (s *Service) Update(ctx context.Context, id int64, req *models.UpdateRuleRequest) (*models.RuleResponse, error) {
	s.logger.Info("Update: updating price rule id=%d", id)

	rule, err := s.ruleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ruleRepo.ErrRuleNotFound) {
			s.logger.Warn("Update: price rule id=%d not found", id)
			return nil, ErrRuleNotFound
		}
		s.logger.Error("Update: repository error for rule id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
	}

	req.ApplyToRule(rule)
	if err := s.validateRule(rule); err != nil {
		s.logger.Warn("Update: validation failed for rule id=%d: %v", id, err)
		return nil, err
	}

	updated, err := s.ruleRepo.Update(ctx, id, rule)
	if err != nil {
		if errors.Is(err, ruleRepo.ErrRuleNotFound) {
			s.logger.Warn("Update: price rule id=%d not found during update", id)
			return nil, ErrRuleNotFound
		}
		s.logger.Error("Update: repository error for rule id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Update: successfully updated price rule id=%d", id)
	return models.FromDomainRule(updated), nil
}

// Deactivate выключает ценовое правило
// Правило не удаляется: исторические расчёты ссылаются на него по appliedRuleId
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	s.logger.Info("Deactivate: deactivating price rule id=%d", id)

	if err := s.ruleRepo.Deactivate(ctx, id); err != nil {
		if errors.Is(err, ruleRepo.ErrRuleNotFound) {
			s.logger.Warn("Deactivate: price rule id=%d not found", id)
			return ErrRuleNotFound
		}
		s.logger.Error("Deactivate: repository error for rule id=%d: %v", id, err)
		return fmt.Errorf("%w: Deactivate - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Deactivate: successfully deactivated price rule id=%d", id)
	return nil
}

// validateRule проверяет значения правила
func (s *Service) validateRule(rule *domain.PriceRule) error {
	if !rule.ActorType.IsValid() {
		return fmt.Errorf("%w: unknown actor type %q", ErrInvalidInput, rule.ActorType)
	}
	if rule.Multiplier <= 0 {
		return fmt.Errorf("%w: multiplier must be positive", ErrInvalidInput)
	}
	if rule.Category != nil {
		switch *rule.Category {
		case domain.SlotMorning, domain.SlotDay, domain.SlotEvening, domain.SlotNight:
		default:
			return fmt.Errorf("%w: unknown slot category %q", ErrInvalidInput, *rule.Category)
		}
	}
	if rule.DayType != nil {
		switch *rule.DayType {
		case domain.DayWeekday, domain.DayWeekend, domain.DayHoliday:
		default:
			return fmt.Errorf("%w: unknown day type %q", ErrInvalidInput, *rule.DayType)
		}
	}
	return nil
}
