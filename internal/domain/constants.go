package domain

// Форматы даты и времени
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// Бизнес-ограничения
const (
	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500
	MaxApprovalNotesLength      = 1000
)

// InactiveStatuses статусы бронирований, не занимающих слоты
// Используется при поиске конфликтующих вхождений
var InactiveStatuses = []BookingStatus{
	StatusCancelled,
	StatusRejected,
}

// ActiveStatuses статусы бронирований, занимающих слоты
var ActiveStatuses = []BookingStatus{
	StatusPendingApproval,
	StatusApproved,
}
