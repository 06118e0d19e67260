package policy

import "errors"

var (
	// ErrInvalidValue значение ключа не разбирается или вне допустимого диапазона
	ErrInvalidValue = errors.New("policy: invalid value")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("policy: internal error")
)
