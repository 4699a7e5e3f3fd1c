package approvals

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking not found")

	// ErrWorkflowNotFound возвращается, когда процесс согласования не найден
	ErrWorkflowNotFound = errors.New("approval workflow not found")

	// ErrStepNotFound возвращается, когда шаг не принадлежит процессу
	ErrStepNotFound = errors.New("approval step not found")

	// ErrInvalidDecision возвращается для неизвестного решения
	ErrInvalidDecision = errors.New("invalid decision")

	// ErrInvalidTransition возвращается для решения по неактивному шагу
	// или по уже завершённому процессу
	ErrInvalidTransition = errors.New("invalid workflow transition")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
