package create_booking

import (
	"errors"
	"fmt"
)

var (
	// ErrMachineNotFound возвращается, когда машина не найдена
	ErrMachineNotFound = errors.New("create_booking: machine not found")

	// ErrMachineInactive возвращается, когда машина выведена из работы
	ErrMachineInactive = errors.New("create_booking: machine is not active")

	// ErrPitchNotSupported возвращается, когда покрытие недоступно на машине
	ErrPitchNotSupported = errors.New("create_booking: pitch type is not supported by machine")

	// ErrModeNotAllowed возвращается при самообслуживании на машине с обязательным оператором
	ErrModeNotAllowed = errors.New("create_booking: operation mode is not allowed for machine")

	// ErrSlotInPast возвращается, когда начало слота уже прошло
	ErrSlotInPast = errors.New("create_booking: slot is in the past")

	// ErrInvalidTimeSlot возвращается, когда слот не совпадает с сеткой
	ErrInvalidTimeSlot = errors.New("create_booking: invalid time slot")

	// ErrSlotBlocked возвращается, когда слот закрыт администратором
	ErrSlotBlocked = errors.New("create_booking: slot is blocked")

	// ErrSlotConflict возвращается, когда слот уже занят
	ErrSlotConflict = errors.New("create_booking: slot is already booked")

	// ErrFundingChanged возвращается, когда повторная отправка меняет источник оплаты бронирования
	ErrFundingChanged = errors.New("create_booking: booking funding source cannot be changed")

	// ErrOperatorUnavailable возвращается, когда все операторы заняты
	ErrOperatorUnavailable = errors.New("create_booking: no operator available for slot")

	// ErrPackageNotFound возвращается, когда купленный пакет не найден
	ErrPackageNotFound = errors.New("create_booking: user package not found")

	// ErrAccessDenied возвращается при бронировании за другого игрока без прав администратора
	ErrAccessDenied = errors.New("create_booking: access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)

// SlotError ошибка конкретного слота пакета.
// В режиме per_slot Committed содержит уже сохранённые слоты в порядке запроса.
type SlotError struct {
	Index     int
	Committed []Booking
	Err       error
}

func (e *SlotError) Error() string {
	return fmt.Sprintf("slot %d: %v", e.Index, e.Err)
}

func (e *SlotError) Unwrap() error {
	return e.Err
}

func slotError(index int, err error) *SlotError {
	return &SlotError{Index: index, Err: err}
}
