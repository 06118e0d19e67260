package block_slots

import "errors"

var (
	// ErrAccessDenied блокировки создаёт только администратор
	ErrAccessDenied = errors.New("block_slots: access denied")

	// ErrMachineNotFound возвращается, когда машина фильтра не найдена
	ErrMachineNotFound = errors.New("block_slots: machine not found")

	// ErrNotSupported схема БД не поддерживает блокировки
	ErrNotSupported = errors.New("block_slots: blocked slots are not supported")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("block_slots: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("block_slots: internal error")
)
