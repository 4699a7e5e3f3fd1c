package workflow

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

// Repository репозиторий процессов согласования
// Процесс хранится двумя таблицами: approval_workflows и approval_steps
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория согласований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

var stepColumns = []string{
	"id",
	"workflow_id",
	"position",
	"approver_role",
	"required",
	"status",
	"escalated",
	"trigger_after_hours",
	"deadline",
	"activated_at",
	"decided_by",
	"decided_at",
	"notes",
}

// Create сохраняет процесс согласования вместе с шагами
// Вызывается в той же транзакции, что и создание бронирования
func (r *Repository) Create(ctx context.Context, wf *domain.ApprovalWorkflow) (*domain.ApprovalWorkflow, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("approval_workflows").
		Columns("booking_id", "status", "current_step", "completed_at").
		Values(wf.BookingID, wf.Status, wf.CurrentStep, wf.CompletedAt).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&wf.ID, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	wf.CreatedAt = createdAt.Time
	wf.UpdatedAt = updatedAt.Time

	// Шаги вставляются одним запросом, позиция равна индексу в слайсе
	if len(wf.Steps) > 0 {
		insertBuilder := psqlbuilder.Insert("approval_steps").
			Columns(
				"id",
				"workflow_id",
				"position",
				"approver_role",
				"required",
				"status",
				"escalated",
				"trigger_after_hours",
				"deadline",
				"activated_at",
			)

		for i, step := range wf.Steps {
			insertBuilder = insertBuilder.Values(
				step.ID,
				wf.ID,
				i,
				step.ApproverRole,
				step.Required,
				step.Status,
				step.Escalated,
				step.TriggerAfterHours,
				step.Deadline,
				step.ActivatedAt,
			)
		}

		query, args, err = insertBuilder.ToSql()
		if err != nil {
			return nil, fmt.Errorf("%w: Create - build steps insert: %v", ErrBuildQuery, err)
		}

		if _, err = executor.ExecContext(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("%w: Create - insert steps: %v", ErrExecQuery, err)
		}
	}

	return wf, nil
}

// GetByBookingID получает процесс согласования бронирования вместе с шагами
func (r *Repository) GetByBookingID(ctx context.Context, bookingID int64) (*domain.ApprovalWorkflow, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"booking_id",
		"status",
		"current_step",
		"completed_at",
		"created_at",
		"updated_at",
	).
		From("approval_workflows").
		Where(squirrel.Eq{"booking_id": bookingID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByBookingID - build select query: %v", ErrBuildQuery, err)
	}

	var wf domain.ApprovalWorkflow
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&wf.ID,
		&wf.BookingID,
		&wf.Status,
		&wf.CurrentStep,
		&wf.CompletedAt,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrWorkflowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByBookingID - scan workflow: %v", ErrScanRow, err)
	}

	wf.CreatedAt = createdAt.Time
	wf.UpdatedAt = updatedAt.Time

	if err := r.loadSteps(ctx, executor, &wf); err != nil {
		return nil, err
	}

	return &wf, nil
}

// Save записывает изменённое состояние процесса и всех его шагов
// Процесс меняется целиком после решения по шагу или эскалации,
// поэтому здесь простая перезапись вместо точечных апдейтов
func (r *Repository) Save(ctx context.Context, wf *domain.ApprovalWorkflow) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("approval_workflows").
		Set("status", wf.Status).
		Set("current_step", wf.CurrentStep).
		Set("completed_at", wf.CompletedAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": wf.ID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Save - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Save - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Save - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrWorkflowNotFound
	}

	for _, step := range wf.Steps {
		query, args, err := psqlbuilder.Update("approval_steps").
			Set("status", step.Status).
			Set("escalated", step.Escalated).
			Set("deadline", step.Deadline).
			Set("activated_at", step.ActivatedAt).
			Set("decided_by", step.DecidedBy).
			Set("decided_at", step.DecidedAt).
			Set("notes", step.Notes).
			Where(squirrel.Eq{"id": step.ID, "workflow_id": wf.ID}).
			ToSql()

		if err != nil {
			return fmt.Errorf("%w: Save - build step update: %v", ErrBuildQuery, err)
		}

		result, err := executor.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("%w: Save - execute step update: %v", ErrExecQuery, err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("%w: Save - get step rows affected: %v", ErrExecQuery, err)
		}
		if rowsAffected == 0 {
			return fmt.Errorf("%w: Save - step %s", ErrStepNotFound, step.ID)
		}
	}

	return nil
}

// ListPendingOverdue получает процессы в статусе pending, у которых активный шаг
// просрочен и ещё не эскалирован. Используется фоновым прогоном эскалаций.
func (r *Repository) ListPendingOverdue(ctx context.Context, now time.Time) ([]*domain.ApprovalWorkflow, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"w.id",
		"w.booking_id",
		"w.status",
		"w.current_step",
		"w.completed_at",
		"w.created_at",
		"w.updated_at",
	).
		From("approval_workflows w").
		Join("approval_steps s ON s.workflow_id = w.id AND s.position = w.current_step").
		Where(squirrel.Eq{"w.status": domain.WorkflowPending, "s.status": domain.StepPending, "s.escalated": false}).
		Where(squirrel.Lt{"s.deadline": now}).
		OrderBy("s.deadline ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListPendingOverdue - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListPendingOverdue - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	workflows := make([]*domain.ApprovalWorkflow, 0)
	for rows.Next() {
		var wf domain.ApprovalWorkflow
		var createdAt, updatedAt sql.NullTime

		if err := rows.Scan(
			&wf.ID,
			&wf.BookingID,
			&wf.Status,
			&wf.CurrentStep,
			&wf.CompletedAt,
			&createdAt,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: ListPendingOverdue - scan workflow: %v", ErrScanRow, err)
		}

		wf.CreatedAt = createdAt.Time
		wf.UpdatedAt = updatedAt.Time
		workflows = append(workflows, &wf)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListPendingOverdue - rows error: %v", ErrScanRow, err)
	}

	for _, wf := range workflows {
		if err := r.loadSteps(ctx, executor, wf); err != nil {
			return nil, err
		}
	}

	return workflows, nil
}

// GetAutoApprovalRules получает активные авто-правила объекта
func (r *Repository) GetAutoApprovalRules(ctx context.Context, facilityID int64) ([]domain.AutoApprovalRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"facility_id",
		"actor_type",
		"active",
		"created_at",
	).
		From("auto_approval_rules").
		Where(squirrel.Eq{"facility_id": facilityID, "active": true}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetAutoApprovalRules - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetAutoApprovalRules - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	rules := make([]domain.AutoApprovalRule, 0)
	for rows.Next() {
		var rule domain.AutoApprovalRule
		var createdAt sql.NullTime

		if err := rows.Scan(&rule.ID, &rule.FacilityID, &rule.ActorType, &rule.Active, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: GetAutoApprovalRules - scan rule: %v", ErrScanRow, err)
		}

		rule.CreatedAt = createdAt.Time
		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetAutoApprovalRules - rows error: %v", ErrScanRow, err)
	}

	return rules, nil
}

// GetStepTemplates получает шаблоны шагов согласования объекта по порядку
func (r *Repository) GetStepTemplates(ctx context.Context, facilityID int64) ([]domain.ApprovalStepTemplate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"facility_id",
		"position",
		"approver_role",
		"required",
		"trigger_after_hours",
	).
		From("approval_step_templates").
		Where(squirrel.Eq{"facility_id": facilityID}).
		OrderBy("position ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetStepTemplates - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetStepTemplates - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	templates := make([]domain.ApprovalStepTemplate, 0)
	for rows.Next() {
		var tpl domain.ApprovalStepTemplate

		if err := rows.Scan(
			&tpl.ID,
			&tpl.FacilityID,
			&tpl.Position,
			&tpl.ApproverRole,
			&tpl.Required,
			&tpl.TriggerAfterHours,
		); err != nil {
			return nil, fmt.Errorf("%w: GetStepTemplates - scan template: %v", ErrScanRow, err)
		}

		templates = append(templates, tpl)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetStepTemplates - rows error: %v", ErrScanRow, err)
	}

	return templates, nil
}

// loadSteps догружает шаги процесса в порядке позиций
func (r *Repository) loadSteps(ctx context.Context, executor dbmetrics.DBExecutor, wf *domain.ApprovalWorkflow) error {
	query, args, err := psqlbuilder.Select(stepColumns...).
		From("approval_steps").
		Where(squirrel.Eq{"workflow_id": wf.ID}).
		OrderBy("position ASC").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: loadSteps - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: loadSteps - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	wf.Steps = make([]domain.ApprovalStep, 0)
	for rows.Next() {
		var step domain.ApprovalStep
		var workflowID int64
		var position int

		if err := rows.Scan(
			&step.ID,
			&workflowID,
			&position,
			&step.ApproverRole,
			&step.Required,
			&step.Status,
			&step.Escalated,
			&step.TriggerAfterHours,
			&step.Deadline,
			&step.ActivatedAt,
			&step.DecidedBy,
			&step.DecidedAt,
			&step.Notes,
		); err != nil {
			return fmt.Errorf("%w: loadSteps - scan step: %v", ErrScanRow, err)
		}

		wf.Steps = append(wf.Steps, step)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: loadSteps - rows error: %v", ErrScanRow, err)
	}

	return nil
}
