package create_booking

import (
	"errors"
	"fmt"

	"github.com/mfpdev/MFP-BookingService/internal/domain"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrZoneNotFound возвращается, когда зона не найдена
	ErrZoneNotFound = errors.New("create_booking: zone not found")

	// ErrZoneNotInFacility возвращается, когда зона не принадлежит указанному объекту
	ErrZoneNotInFacility = errors.New("create_booking: zone does not belong to facility")

	// ErrBookingConflict возвращается, когда хотя бы одно вхождение недоступно
	// Бронирование создается только целиком: частичных созданий нет
	ErrBookingConflict = errors.New("create_booking: booking conflict")

	// ErrNoBasePrice возвращается, когда ни зона, ни её предки не задают базовую цену
	ErrNoBasePrice = errors.New("create_booking: no base price for zone")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)

// ConflictDetail описание одного недоступного вхождения
type ConflictDetail struct {
	Occurrence            domain.Occurrence
	Reason                string
	ConflictingBookingIDs []int64
}

// ConflictError несет полный список недоступных вхождений
// Клиент получает все проблемные даты сразу, а не по одной
type ConflictError struct {
	Conflicts []ConflictDetail
}

// Error реализует интерфейс error
func (e *ConflictError) Error() string {
	return fmt.Sprintf("%v: %d of requested occurrences unavailable", ErrBookingConflict, len(e.Conflicts))
}

// Unwrap позволяет матчить ошибку через errors.Is(err, ErrBookingConflict)
func (e *ConflictError) Unwrap() error {
	return ErrBookingConflict
}
