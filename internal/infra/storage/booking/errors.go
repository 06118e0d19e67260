package booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking.repository: booking not found")

	// ErrSlotTaken возвращается при нарушении уникального индекса занятого слота
	ErrSlotTaken = errors.New("booking.repository: slot already booked")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("booking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("booking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("booking.repository: failed to scan row")

	// ErrCannotCancel возвращается, когда бронирование уже не в статусе BOOKED
	ErrCannotCancel = errors.New("booking.repository: booking cannot be cancelled")

	// ErrNoTransaction возвращается, когда операция требует транзакции в контексте
	ErrNoTransaction = errors.New("booking.repository: transaction required")
)
