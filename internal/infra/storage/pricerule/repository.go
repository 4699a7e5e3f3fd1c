package pricerule

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/mfpdev/MFP-BookingService/internal/domain"
	"github.com/mfpdev/MFP-BookingService/pkg/dbmetrics"
	"github.com/mfpdev/MFP-BookingService/pkg/psqlbuilder"
)

// Repository репозиторий для работы с ценовыми правилами и праздничным календарём
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория ценовых правил
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

var ruleColumns = []string{
	"id",
	"facility_id",
	"actor_type",
	"slot_category",
	"day_type",
	"multiplier",
	"priority",
	"active",
	"created_at",
	"updated_at",
}

// Create создает новое ценовое правило
func (r *Repository) Create(ctx context.Context, rule *domain.PriceRule) (*domain.PriceRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("price_rules").
		Columns(
			"facility_id",
			"actor_type",
			"slot_category",
			"day_type",
			"multiplier",
			"priority",
			"active",
		).
		Values(
			rule.FacilityID,
			rule.ActorType,
			rule.Category,
			rule.DayType,
			rule.Multiplier,
			rule.Priority,
			rule.Active,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&rule.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	rule.CreatedAt = createdAt.Time
	rule.UpdatedAt = updatedAt.Time

	return rule, nil
}

// GetByID получает ценовое правило по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.PriceRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(ruleColumns...).
		From("price_rules").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	rule, err := r.scanRule(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrRuleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan rule: %v", ErrScanRow, err)
	}

	return rule, nil
}

// GetActiveByFacility получает активные правила объекта
// Выбор применимого правила (приоритет, специфичность) делает калькулятор цен
func (r *Repository) GetActiveByFacility(ctx context.Context, facilityID int64) ([]domain.PriceRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(ruleColumns...).
		From("price_rules").
		Where(squirrel.Eq{"facility_id": facilityID, "active": true}).
		OrderBy("priority DESC, id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByFacility - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByFacility - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanRules(rows)
}

// GetAllByFacility получает все правила объекта, включая выключенные
// Используется административным API управления правилами
func (r *Repository) GetAllByFacility(ctx context.Context, facilityID int64) ([]domain.PriceRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(ruleColumns...).
		From("price_rules").
		Where(squirrel.Eq{"facility_id": facilityID}).
		OrderBy("priority DESC, id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetAllByFacility - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetAllByFacility - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanRules(rows)
}

// Update обновляет ценовое правило
func (r *Repository) Update(ctx context.Context, id int64, rule *domain.PriceRule) (*domain.PriceRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("price_rules").
		Set("actor_type", rule.ActorType).
		Set("slot_category", rule.Category).
		Set("day_type", rule.DayType).
		Set("multiplier", rule.Multiplier).
		Set("priority", rule.Priority).
		Set("active", rule.Active).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING facility_id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&rule.FacilityID, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrRuleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	rule.ID = id
	rule.CreatedAt = createdAt.Time
	rule.UpdatedAt = updatedAt.Time

	return rule, nil
}

// Deactivate выключает правило без физического удаления
// История применённых правил остаётся доступной по appliedRuleId в расчётах
func (r *Repository) Deactivate(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("price_rules").
		Set("active", false).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Deactivate - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Deactivate - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Deactivate - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrRuleNotFound
	}

	return nil
}

// GetHolidays получает праздничный календарь за период
func (r *Repository) GetHolidays(ctx context.Context, from, to time.Time) (domain.HolidayCalendar, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("holiday_date").
		From("holidays").
		Where(squirrel.GtOrEq{"holiday_date": from}).
		Where(squirrel.LtOrEq{"holiday_date": to}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetHolidays - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetHolidays - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	calendar := make(domain.HolidayCalendar)
	for rows.Next() {
		var date time.Time
		if err := rows.Scan(&date); err != nil {
			return nil, fmt.Errorf("%w: GetHolidays - scan holiday: %v", ErrScanRow, err)
		}
		calendar[date.Format(domain.DateFormat)] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetHolidays - rows error: %v", ErrScanRow, err)
	}

	return calendar, nil
}

// scanRule сканирует одну строку ценового правила
func (r *Repository) scanRule(row interface {
	Scan(dest ...interface{}) error
}) (*domain.PriceRule, error) {
	var rule domain.PriceRule
	var category, dayType sql.NullString
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&rule.ID,
		&rule.FacilityID,
		&rule.ActorType,
		&category,
		&dayType,
		&rule.Multiplier,
		&rule.Priority,
		&rule.Active,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if category.Valid {
		c := domain.TimeSlotCategory(category.String)
		rule.Category = &c
	}
	if dayType.Valid {
		d := domain.DayType(dayType.String)
		rule.DayType = &d
	}
	rule.CreatedAt = createdAt.Time
	rule.UpdatedAt = updatedAt.Time

	return &rule, nil
}

// scanRules сканирует результаты запроса в слайс правил
func (r *Repository) scanRules(rows *sql.Rows) ([]domain.PriceRule, error) {
	rules := make([]domain.PriceRule, 0)

	for rows.Next() {
		rule, err := r.scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanRules - scan row: %v", ErrScanRow, err)
		}
		rules = append(rules, *rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanRules - rows error: %v", ErrScanRow, err)
	}

	return rules, nil
}
