package get_available_slots

import "errors"

var (
	// ErrMachineNotFound возвращается, когда машина не найдена
	ErrMachineNotFound = errors.New("machine not found")

	// ErrMachineInactive возвращается, когда машина выведена из работы
	ErrMachineInactive = errors.New("machine is not active")

	// ErrPitchNotSupported возвращается, когда покрытие недоступно на машине
	ErrPitchNotSupported = errors.New("pitch type is not supported by machine")

	// ErrModeNotAllowed возвращается при самообслуживании на машинах с обязательным оператором
	ErrModeNotAllowed = errors.New("operation mode is not allowed for machine")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("usecase: internal error")
)
