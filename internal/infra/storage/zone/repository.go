package zone

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

// Предохранитель от циклов при обходе иерархии зон
const maxHierarchyDepth = 32

var zoneColumns = []string{
	"id",
	"facility_id",
	"parent_zone_id",
	"name",
	"capacity",
	"base_price",
	"active",
	"opening_hours",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с зонами объектов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория зон
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает зону по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Zone, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(zoneColumns...).
		From("zones").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	zone, err := r.scanZone(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrZoneNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan zone: %v", ErrScanRow, err)
	}

	return zone, nil
}

// GetZoneWithAncestors возвращает зону и цепочку её предков до корня
// Сама зона идёт первой, затем родитель, и так далее
// Цепочка разрешается повторными запросами с защитой от циклов
func (r *Repository) GetZoneWithAncestors(ctx context.Context, zoneID int64) ([]*domain.Zone, error) {
	chain := make([]*domain.Zone, 0, 2)
	visited := make(map[int64]bool)

	currentID := zoneID
	for depth := 0; depth < maxHierarchyDepth; depth++ {
		if visited[currentID] {
			return nil, fmt.Errorf("%w: zone id=%d", ErrHierarchyCycle, currentID)
		}
		visited[currentID] = true

		zone, err := r.GetByID(ctx, currentID)
		if err != nil {
			// Отсутствующий предок - повреждённые данные, но для запрошенной
			// зоны это всё равно ErrZoneNotFound только на первом шаге
			if err == ErrZoneNotFound && len(chain) > 0 {
				return nil, fmt.Errorf("%w: missing ancestor id=%d", ErrZoneNotFound, currentID)
			}
			return nil, err
		}
		chain = append(chain, zone)

		if zone.ParentZoneID == nil {
			return chain, nil
		}
		currentID = *zone.ParentZoneID
	}

	return nil, fmt.Errorf("%w: depth limit exceeded for zone id=%d", ErrHierarchyCycle, zoneID)
}

// GetDescendantIDs возвращает идентификаторы всех потомков зоны
// Обход в ширину уровнями: parent_zone_id IN (текущий уровень)
func (r *Repository) GetDescendantIDs(ctx context.Context, zoneID int64) ([]int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	descendants := make([]int64, 0)
	visited := map[int64]bool{zoneID: true}
	level := []int64{zoneID}

	for depth := 0; depth < maxHierarchyDepth && len(level) > 0; depth++ {
		query, args, err := psqlbuilder.Select("id").
			From("zones").
			Where(squirrel.Eq{"parent_zone_id": level}).
			OrderBy("id ASC").
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("%w: GetDescendantIDs - build select query: %v", ErrBuildQuery, err)
		}

		rows, err := executor.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("%w: GetDescendantIDs - execute query: %v", ErrExecQuery, err)
		}

		next := make([]int64, 0)
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, fmt.Errorf("%w: GetDescendantIDs - scan id: %v", ErrScanRow, err)
			}
			if visited[id] {
				continue
			}
			visited[id] = true
			next = append(next, id)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("%w: GetDescendantIDs - rows error: %v", ErrScanRow, err)
		}
		rows.Close()

		descendants = append(descendants, next...)
		level = next
	}

	return descendants, nil
}

// GetByFacility возвращает активные зоны объекта
func (r *Repository) GetByFacility(ctx context.Context, facilityID int64) ([]*domain.Zone, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(zoneColumns...).
		From("zones").
		Where(squirrel.Eq{"facility_id": facilityID, "active": true}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByFacility - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByFacility - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	zones := make([]*domain.Zone, 0)
	for rows.Next() {
		zone, err := r.scanZone(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: GetByFacility - scan zone: %v", ErrScanRow, err)
		}
		zones = append(zones, zone)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetByFacility - rows error: %v", ErrScanRow, err)
	}

	return zones, nil
}

// GetBlackouts возвращает периоды недоступности зон, пересекающие диапазон дат
func (r *Repository) GetBlackouts(ctx context.Context, zoneIDs []int64, from, to time.Time) ([]domain.BlackoutPeriod, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"zone_id",
		"start_date",
		"end_date",
		"reason",
		"created_at",
	).
		From("zone_blackouts").
		Where(squirrel.Eq{"zone_id": zoneIDs}).
		Where(squirrel.LtOrEq{"start_date": to}).
		Where(squirrel.GtOrEq{"end_date": from}).
		OrderBy("start_date ASC, id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetBlackouts - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetBlackouts - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	blackouts := make([]domain.BlackoutPeriod, 0)
	for rows.Next() {
		var b domain.BlackoutPeriod
		var createdAt sql.NullTime
		if err := rows.Scan(&b.ID, &b.ZoneID, &b.StartDate, &b.EndDate, &b.Reason, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: GetBlackouts - scan blackout: %v", ErrScanRow, err)
		}
		b.CreatedAt = createdAt.Time
		blackouts = append(blackouts, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetBlackouts - rows error: %v", ErrScanRow, err)
	}

	return blackouts, nil
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *Repository) scanZone(row rowScanner) (*domain.Zone, error) {
	var zone domain.Zone
	var openingHours []byte
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&zone.ID,
		&zone.FacilityID,
		&zone.ParentZoneID,
		&zone.Name,
		&zone.Capacity,
		&zone.BasePrice,
		&zone.Active,
		&openingHours,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(openingHours) > 0 {
		if err := json.Unmarshal(openingHours, &zone.OpeningHours); err != nil {
			return nil, fmt.Errorf("invalid opening_hours json: %v", err)
		}
	}

	zone.CreatedAt = createdAt.Time
	zone.UpdatedAt = updatedAt.Time

	return &zone, nil
}
