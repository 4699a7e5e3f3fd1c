package create_booking

import (
	"time"

	"github.com/mfpdev/MFP-BookingService/internal/domain"
)

// Request модель запроса на создание бронирования
type Request struct {
	UserID         int64            // ID пользователя из заголовка аутентификации
	FacilityID     int64            // ID объекта
	ZoneID         int64            // ID бронируемой зоны
	ActorType      domain.ActorType // Категория заявителя
	OrganizationID *int64           // ID организации (для lag-foreninger и bedrift)

	// Pattern шаблон повторения. Для разового бронирования - weekly с одним
	// днём недели и периодом в одну неделю
	Pattern domain.RecurrencePattern

	// AdditionalCosts плоские доплаты и скидки (знаковые), попадают в расчёт цены
	AdditionalCosts []domain.AdditionalCost

	Notes *string
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID         int64
	FacilityID int64
	ZoneID     int64
	UserID     int64
	ActorType  domain.ActorType
	Status     domain.BookingStatus

	Occurrences []domain.Occurrence
	// Truncated признак усечения разворачивания по лимиту вхождений
	Truncated bool

	Pricing        domain.PricingBreakdown
	WorkflowStatus domain.WorkflowStatus

	Notes     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
