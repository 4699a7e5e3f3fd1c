package create_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/mfpdev/MFP-BookingService/internal/availability"
	"github.com/mfpdev/MFP-BookingService/internal/domain"
	zoneRepo "github.com/mfpdev/MFP-BookingService/internal/infra/storage/zone"
	"github.com/mfpdev/MFP-BookingService/internal/integrations/notify"
	"github.com/mfpdev/MFP-BookingService/internal/recurrence"
)

// UseCase use case создания бронирования: оркестрирует разворачивание
// шаблона, проверку доступности, расчёт цены и запуск согласования
type UseCase struct {
	bookingRepo  BookingRepository
	zoneRepo     ZoneRepository
	priceRepo    PriceRuleRepository
	workflowRepo WorkflowRepository
	expander     RecurrenceExpander
	checker      AvailabilityChecker
	calculator   PricingCalculator
	engine       WorkflowEngine
	notifier     NotificationGateway
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	zoneRepo ZoneRepository,
	priceRepo PriceRuleRepository,
	workflowRepo WorkflowRepository,
	expander RecurrenceExpander,
	checker AvailabilityChecker,
	calculator PricingCalculator,
	engine WorkflowEngine,
	notifier NotificationGateway,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		zoneRepo:     zoneRepo,
		priceRepo:    priceRepo,
		workflowRepo: workflowRepo,
		expander:     expander,
		checker:      checker,
		calculator:   calculator,
		engine:       engine,
		notifier:     notifier,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case создания бронирования
// Проверка доступности и запись выполняются в одной сериализуемой
// транзакции: между проверкой и вставкой не может вклиниться
// конкурирующее бронирование того же слота
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: user=%d, facility=%d, zone=%d, actor=%s, type=%s",
		req.UserID, req.FacilityID, req.ZoneID, req.ActorType, req.Pattern.Type)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Разворачиваем шаблон повторения в конкретные вхождения
	expanded, err := uc.expander.Expand(ctx, req.ZoneID, req.Pattern)
	if err != nil {
		if errors.Is(err, recurrence.ErrInvalidPattern) {
			uc.logger.Warn("CreateBooking: invalid pattern: %v", err)
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		uc.logger.Error("CreateBooking: expand failed: %v", err)
		return nil, fmt.Errorf("%w: failed to expand pattern: %v", ErrInternal, err)
	}

	if expanded.Truncated {
		uc.logger.Warn("CreateBooking: pattern truncated to %d occurrences", len(expanded.Occurrences))
	}

	// Переменная для хранения результата
	var result *domain.Booking

	// 4. Выполняем проверку и запись в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 4.1. Зона с цепочкой предков: принадлежность объекту и базовая цена
		chain, err := uc.zoneRepo.GetZoneWithAncestors(txCtx, req.ZoneID)
		if err != nil {
			if errors.Is(err, zoneRepo.ErrZoneNotFound) {
				uc.logger.Warn("CreateBooking: zone id=%d not found", req.ZoneID)
				return ErrZoneNotFound
			}
			uc.logger.Error("CreateBooking: failed to get zone id=%d: %v", req.ZoneID, err)
			return fmt.Errorf("%w: failed to get zone: %v", ErrInternal, err)
		}

		zone := chain[0]
		if zone.FacilityID != req.FacilityID {
			uc.logger.Warn("CreateBooking: zone id=%d belongs to facility id=%d, requested facility id=%d",
				zone.ID, zone.FacilityID, req.FacilityID)
			return ErrZoneNotInFacility
		}

		basePrice, err := resolveBasePrice(chain)
		if err != nil {
			uc.logger.Warn("CreateBooking: %v", err)
			return err
		}

		// 4.2. Проверяем доступность всех вхождений
		results, err := uc.checker.Check(txCtx, req.ZoneID, expanded.Occurrences, nil)
		if err != nil {
			if errors.Is(err, availability.ErrZoneNotFound) {
				return ErrZoneNotFound
			}
			uc.logger.Error("CreateBooking: availability check failed: %v", err)
			return fmt.Errorf("%w: availability check failed: %v", ErrInternal, err)
		}

		// Бронирование создается целиком или не создается вовсе:
		// клиент получает полный список недоступных вхождений
		conflicts := collectConflicts(results)
		if len(conflicts) > 0 {
			uc.logger.Warn("CreateBooking: %d/%d occurrences unavailable", len(conflicts), len(results))
			return &ConflictError{Conflicts: conflicts}
		}

		// 4.3. Рассчитываем стоимость
		rules, err := uc.priceRepo.GetActiveByFacility(txCtx, req.FacilityID)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to get price rules: %v", err)
			return fmt.Errorf("%w: failed to get price rules: %v", ErrInternal, err)
		}

		holidays, err := uc.priceRepo.GetHolidays(txCtx, req.Pattern.StartDate, req.Pattern.EndDate)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to get holidays: %v", err)
			return fmt.Errorf("%w: failed to get holidays: %v", ErrInternal, err)
		}

		pricing, err := uc.calculator.PriceBooking(
			expanded.Occurrences, basePrice, req.ActorType, rules, holidays, req.AdditionalCosts)
		if err != nil {
			uc.logger.Error("CreateBooking: pricing failed: %v", err)
			return fmt.Errorf("%w: pricing failed: %v", ErrInternal, err)
		}

		// 4.4. Строим процесс согласования
		autoRules, err := uc.workflowRepo.GetAutoApprovalRules(txCtx, req.FacilityID)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to get auto-approval rules: %v", err)
			return fmt.Errorf("%w: failed to get auto-approval rules: %v", ErrInternal, err)
		}

		templates, err := uc.workflowRepo.GetStepTemplates(txCtx, req.FacilityID)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to get step templates: %v", err)
			return fmt.Errorf("%w: failed to get step templates: %v", ErrInternal, err)
		}

		wf := uc.engine.Initialize(req.FacilityID, req.ActorType, autoRules, templates, now)

		// Статус бронирования следует за процессом: без согласования
		// бронирование сразу одобрено
		status := domain.StatusPendingApproval
		if wf.Status == domain.WorkflowNotRequired {
			status = domain.StatusApproved
		}

		// 4.5. Сохраняем бронирование и процесс
		booking := &domain.Booking{
			FacilityID:     req.FacilityID,
			ZoneID:         req.ZoneID,
			UserID:         req.UserID,
			ActorType:      req.ActorType,
			OrganizationID: req.OrganizationID,
			Occurrences:    expanded.Occurrences,
			Status:         status,
			Pricing:        pricing,
			Notes:          req.Notes,
		}

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		wf.BookingID = created.ID
		if _, err := uc.workflowRepo.Create(txCtx, wf); err != nil {
			uc.logger.Error("CreateBooking: failed to create workflow: %v", err)
			return fmt.Errorf("%w: failed to create workflow: %v", ErrInternal, err)
		}

		created.Workflow = wf
		result = created
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateBooking: created booking id=%d, status=%s, occurrences=%d, total=%d NOK",
		result.ID, result.Status, len(result.Occurrences), result.Pricing.Total)

	// 5. Уведомление после коммита, сбой публикации не откатывает бронирование
	uc.notifier.BookingCreated(ctx, notify.BookingPayload{
		BookingID:  result.ID,
		FacilityID: result.FacilityID,
		ZoneID:     result.ZoneID,
		UserID:     result.UserID,
		Status:     string(result.Status),
		TotalPrice: result.Pricing.Total,
	})

	return &Response{
		ID:             result.ID,
		FacilityID:     result.FacilityID,
		ZoneID:         result.ZoneID,
		UserID:         result.UserID,
		ActorType:      result.ActorType,
		Status:         result.Status,
		Occurrences:    result.Occurrences,
		Truncated:      expanded.Truncated,
		Pricing:        result.Pricing,
		WorkflowStatus: result.Workflow.Status,
		Notes:          result.Notes,
		CreatedAt:      result.CreatedAt,
		UpdatedAt:      result.UpdatedAt,
	}, nil
}

// collectConflicts собирает недоступные вхождения в детали ConflictError
func collectConflicts(results []availability.OccurrenceAvailability) []ConflictDetail {
	conflicts := make([]ConflictDetail, 0)
	for _, r := range results {
		if r.Available {
			continue
		}
		conflicts = append(conflicts, ConflictDetail{
			Occurrence:            r.Occurrence,
			Reason:                r.Reason,
			ConflictingBookingIDs: r.ConflictingBookingIDs,
		})
	}
	return conflicts
}
