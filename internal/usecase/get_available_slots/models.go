package get_available_slots

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
	"github.com/m04kA/SMC-NetsBookingService/pkg/types"
)

// Request модель запроса доступности.
// Нужен MachineID или BallType (старый запрос по категории).
type Request struct {
	UserID        int64 // для прошедших дат: администратору отдаётся расписание
	Date          time.Time
	MachineID     *int64
	BallType      *domain.BallType
	PitchType     *domain.PitchType
	OperationMode *domain.OperationMode
}

// Response модель ответа со списком слотов
type Response struct {
	Date          time.Time
	MachineID     *int64
	BallType      domain.BallType
	PitchType     *domain.PitchType
	PolicyVersion time.Time
	Slots         []Slot
}

// Slot слот со статусом и ценой одиночного бронирования
type Slot struct {
	StartTime         types.TimeString
	EndTime           types.TimeString
	Status            domain.SlotStatus
	Price             decimal.Decimal
	OperatorAvailable bool
	TimeSlab          domain.TimeSlab
}
