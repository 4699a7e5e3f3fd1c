package pricerules

import "errors"

var (
	// ErrRuleNotFound возвращается, когда ценовое правило не найдено
	ErrRuleNotFound = errors.New("price rule not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
