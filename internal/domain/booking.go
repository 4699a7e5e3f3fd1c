package domain

import "time"

// BookingStatus статус бронирования
type BookingStatus string

const (
	StatusPendingApproval BookingStatus = "pending_approval"
	StatusApproved        BookingStatus = "approved"
	StatusRejected        BookingStatus = "rejected"
	StatusCancelled       BookingStatus = "cancelled"
)

// ActorType категория заявителя, определяет цены и маршрут согласования
type ActorType string

const (
	ActorPrivatePerson ActorType = "privatperson"
	ActorOrganization  ActorType = "lag-foreninger"
	ActorCompany       ActorType = "bedrift"
	ActorMunicipalUnit ActorType = "kommunal-enhet"
)

// IsValid проверяет, что тип заявителя известен
func (a ActorType) IsValid() bool {
	switch a {
	case ActorPrivatePerson, ActorOrganization, ActorCompany, ActorMunicipalUnit:
		return true
	default:
		return false
	}
}

// Booking бронирование зоны: одно или несколько вхождений
// Записи не удаляются физически, только переводятся по статусам
type Booking struct {
	ID             int64
	FacilityID     int64
	ZoneID         int64
	UserID         int64
	ActorType      ActorType
	OrganizationID *int64
	Occurrences    []Occurrence
	Status         BookingStatus
	Pricing        PricingBreakdown
	Workflow       *ApprovalWorkflow
	Notes          *string

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive возвращает true, если бронирование занимает слоты
// Отклонённые и отменённые бронирования не конфликтуют с новыми
func (b *Booking) IsActive() bool {
	return b.Status != StatusCancelled && b.Status != StatusRejected
}

// CanBeCancelled возвращает true, если бронирование можно отменить
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPendingApproval || b.Status == StatusApproved
}

// BookingOccurrence строка вхождения существующего бронирования
// Используется проверкой доступности: достаточно идентификаторов и интервала
type BookingOccurrence struct {
	BookingID int64
	Occurrence
	Status BookingStatus
}

// IsActive возвращает true, если вхождение занимает слот
func (o BookingOccurrence) IsActive() bool {
	return o.Status != StatusCancelled && o.Status != StatusRejected
}

// FacilityBookingsFilter фильтр для получения бронирований объекта
type FacilityBookingsFilter struct {
	FacilityID      int64
	ZoneID          *int64         // nil - все зоны объекта
	StartDate       *time.Time     // начало периода, nil - без ограничения
	EndDate         *time.Time     // конец периода, nil - без ограничения
	Status          *BookingStatus // nil - все статусы с учётом IncludeInactive
	IncludeInactive bool           // включать ли отменённые и отклонённые
}
