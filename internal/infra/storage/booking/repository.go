package booking

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/mfpdev/MFP-BookingService/internal/domain"
	"github.com/mfpdev/MFP-BookingService/pkg/dbmetrics"
	"github.com/mfpdev/MFP-BookingService/pkg/psqlbuilder"
)

// Repository репозиторий для работы с бронированиями и их вхождениями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

var bookingColumns = []string{
	"id",
	"facility_id",
	"zone_id",
	"user_id",
	"actor_type",
	"organization_id",
	"status",
	"pricing",
	"total_price",
	"notes",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Create создает бронирование вместе со всеми его вхождениями
// Если в контексте передана активная транзакция (через context.Value), использует её.
// Вызывающая сторона ОБЯЗАНА оборачивать создание в транзакцию вместе с проверкой
// доступности: между проверкой и вставкой иначе остаётся окно для двойного бронирования.
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	pricingJSON, err := json.Marshal(booking.Pricing)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - marshal pricing: %v", ErrBuildQuery, err)
	}

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"facility_id",
			"zone_id",
			"user_id",
			"actor_type",
			"organization_id",
			"status",
			"pricing",
			"total_price",
			"notes",
		).
		Values(
			booking.FacilityID,
			booking.ZoneID,
			booking.UserID,
			booking.ActorType,
			booking.OrganizationID,
			booking.Status,
			pricingJSON,
			booking.Pricing.Total,
			booking.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	// Вхождения вставляются одним запросом
	if len(booking.Occurrences) > 0 {
		insertBuilder := psqlbuilder.Insert("booking_occurrences").
			Columns("booking_id", "zone_id", "occurrence_date", "time_slot")

		for _, occ := range booking.Occurrences {
			insertBuilder = insertBuilder.Values(booking.ID, occ.ZoneID, occ.Date, occ.Slot)
		}

		query, args, err = insertBuilder.ToSql()
		if err != nil {
			return nil, fmt.Errorf("%w: Create - build occurrences insert: %v", ErrBuildQuery, err)
		}

		if _, err = executor.ExecContext(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("%w: Create - insert occurrences: %v", ErrExecQuery, err)
		}
	}

	return booking, nil
}

// GetByID получает бронирование по ID вместе с вхождениями
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := r.scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	if err := r.attachOccurrences(ctx, executor, []*domain.Booking{booking}); err != nil {
		return nil, err
	}

	return booking, nil
}

// GetByUserID получает список бронирований пользователя
// Опционально фильтрует по статусу
func (r *Repository) GetByUserID(ctx context.Context, userID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC, id DESC")

	// Фильтрация по статусу, если указан
	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	bookings, err := r.scanBookings(rows)
	if err != nil {
		return nil, err
	}

	if err := r.attachOccurrences(ctx, executor, bookings); err != nil {
		return nil, err
	}

	return bookings, nil
}

// GetByFacilityWithFilter получает бронирования объекта с гибкой фильтрацией
// Поддерживает фильтрацию по:
// - Зоне (ZoneID) - опционально
// - Периоду (StartDate, EndDate) по датам вхождений - опционально
// - Статусу (Status) - опционально
// - Включению неактивных бронирований (IncludeInactive)
func (r *Repository) GetByFacilityWithFilter(ctx context.Context, filter domain.FacilityBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"facility_id": filter.FacilityID}).
		OrderBy("created_at DESC, id DESC")

	// Фильтрация по зоне (если указана)
	if filter.ZoneID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"zone_id": *filter.ZoneID})
	}

	// Фильтрация по периоду идёт по датам вхождений: бронирование попадает
	// в выборку, если хотя бы одно его вхождение лежит в периоде
	if filter.StartDate != nil || filter.EndDate != nil {
		sub := squirrel.Select("1").
			From("booking_occurrences o").
			Where("o.booking_id = bookings.id")
		if filter.StartDate != nil {
			sub = sub.Where(squirrel.GtOrEq{"o.occurrence_date": *filter.StartDate})
		}
		if filter.EndDate != nil {
			sub = sub.Where(squirrel.LtOrEq{"o.occurrence_date": *filter.EndDate})
		}
		subQuery, subArgs, err := sub.ToSql()
		if err != nil {
			return nil, fmt.Errorf("%w: GetByFacilityWithFilter - build subquery: %v", ErrBuildQuery, err)
		}
		selectBuilder = selectBuilder.Where("EXISTS ("+subQuery+")", subArgs...)
	}

	// Фильтрация по статусу
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		// Если не указан конкретный статус и не нужны неактивные - исключаем их
		inactiveStatusStrings := make([]string, len(domain.InactiveStatuses))
		for i, s := range domain.InactiveStatuses {
			inactiveStatusStrings[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": inactiveStatusStrings})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByFacilityWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByFacilityWithFilter - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	bookings, err := r.scanBookings(rows)
	if err != nil {
		return nil, err
	}

	if err := r.attachOccurrences(ctx, executor, bookings); err != nil {
		return nil, err
	}

	return bookings, nil
}

// FindOverlapping получает вхождения активных бронирований по набору зон за период
// Используется проверкой доступности. Возвращает плоские строки вхождений,
// пересечение по времени внутри дня проверяет вызывающая сторона.
//
// excludeBookingID позволяет исключить собственное бронирование при перепроверке.
// Внутри транзакции строки блокируются через FOR UPDATE OF o - это вместе с
// уровнем SERIALIZABLE закрывает гонку "проверили-вставили" между
// конкурирующими заявками на один слот.
func (r *Repository) FindOverlapping(ctx context.Context, zoneIDs []int64, from, to time.Time, excludeBookingID *int64) ([]domain.BookingOccurrence, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if len(zoneIDs) == 0 {
		return []domain.BookingOccurrence{}, nil
	}

	inactiveStatusStrings := make([]string, len(domain.InactiveStatuses))
	for i, s := range domain.InactiveStatuses {
		inactiveStatusStrings[i] = string(s)
	}

	selectBuilder := psqlbuilder.Select(
		"o.booking_id",
		"o.zone_id",
		"o.occurrence_date",
		"o.time_slot",
		"b.status",
	).
		From("booking_occurrences o").
		Join("bookings b ON b.id = o.booking_id").
		Where(squirrel.Eq{"o.zone_id": zoneIDs}).
		Where(squirrel.GtOrEq{"o.occurrence_date": from}).
		Where(squirrel.LtOrEq{"o.occurrence_date": to}).
		Where(squirrel.NotEq{"b.status": inactiveStatusStrings}).
		OrderBy("o.occurrence_date ASC, o.time_slot ASC")

	if excludeBookingID != nil {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"o.booking_id": *excludeBookingID})
	}

	// Блокировка строк только внутри транзакции (usecase создания бронирования)
	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE OF o")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FindOverlapping - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FindOverlapping - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	occurrences := make([]domain.BookingOccurrence, 0)
	for rows.Next() {
		var occ domain.BookingOccurrence
		if err := rows.Scan(
			&occ.BookingID,
			&occ.ZoneID,
			&occ.Date,
			&occ.Slot,
			&occ.Status,
		); err != nil {
			return nil, fmt.Errorf("%w: FindOverlapping - scan row: %v", ErrScanRow, err)
		}
		occurrences = append(occurrences, occ)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: FindOverlapping - rows error: %v", ErrScanRow, err)
	}

	return occurrences, nil
}

// UpdateStatus обновляет статус бронирования
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// Cancel отменяет бронирование с указанием причины
// Физическое удаление не используется: записи нужны для истории и аудита
func (r *Repository) Cancel(ctx context.Context, id int64, reason string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Cancel - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Cancel - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// scanBooking сканирует одну строку бронирования
func (r *Repository) scanBooking(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Booking, error) {
	var booking domain.Booking
	var pricingJSON []byte
	var totalPrice int64
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.FacilityID,
		&booking.ZoneID,
		&booking.UserID,
		&booking.ActorType,
		&booking.OrganizationID,
		&booking.Status,
		&pricingJSON,
		&totalPrice,
		&booking.Notes,
		&booking.CancellationReason,
		&booking.CancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(pricingJSON) > 0 {
		if err := json.Unmarshal(pricingJSON, &booking.Pricing); err != nil {
			return nil, fmt.Errorf("unmarshal pricing: %v", err)
		}
	}
	booking.Pricing.Total = totalPrice
	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func (r *Repository) scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := r.scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}

// attachOccurrences догружает вхождения для набора бронирований одним запросом
func (r *Repository) attachOccurrences(ctx context.Context, executor dbmetrics.DBExecutor, bookings []*domain.Booking) error {
	if len(bookings) == 0 {
		return nil
	}

	ids := make([]int64, len(bookings))
	byID := make(map[int64]*domain.Booking, len(bookings))
	for i, b := range bookings {
		ids[i] = b.ID
		byID[b.ID] = b
		b.Occurrences = make([]domain.Occurrence, 0)
	}

	query, args, err := psqlbuilder.Select(
		"booking_id",
		"zone_id",
		"occurrence_date",
		"time_slot",
	).
		From("booking_occurrences").
		Where(squirrel.Eq{"booking_id": ids}).
		OrderBy("occurrence_date ASC, time_slot ASC").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: attachOccurrences - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: attachOccurrences - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var bookingID int64
		var occ domain.Occurrence
		if err := rows.Scan(&bookingID, &occ.ZoneID, &occ.Date, &occ.Slot); err != nil {
			return fmt.Errorf("%w: attachOccurrences - scan row: %v", ErrScanRow, err)
		}
		if b, ok := byID[bookingID]; ok {
			b.Occurrences = append(b.Occurrences, occ)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: attachOccurrences - rows error: %v", ErrScanRow, err)
	}

	return nil
}
