package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-NetsBookingService/pkg/types"
)

// BookingStatus статус бронирования. DONE не хранится, а вычисляется при чтении.
type BookingStatus string

const (
	StatusBooked    BookingStatus = "BOOKED"
	StatusCancelled BookingStatus = "CANCELLED"
	StatusDone      BookingStatus = "DONE"
)

func (s BookingStatus) IsValid() bool {
	return s == StatusBooked || s == StatusCancelled || s == StatusDone
}

// Booking бронирование одного слота
type Booking struct {
	ID            int64
	UserID        *int64 // игрок; nil для бронирований администратора без игрока
	CreatedBy     int64
	MachineID     *int64 // nil для старых бронирований по типу мяча
	BookingDate   time.Time
	StartTime     types.TimeString
	EndTime       types.TimeString
	BallType      BallType
	PitchType     *PitchType
	OperationMode OperationMode
	Status        BookingStatus

	Price          decimal.Decimal
	OriginalPrice  decimal.Decimal
	DiscountAmount decimal.Decimal
	ExtraCharge    decimal.Decimal

	CancellationReason *string
	CancelledBy        *int64
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EffectiveStatus статус с учётом текущего времени: BOOKED после окончания слота становится DONE
func (b *Booking) EffectiveStatus(now time.Time) BookingStatus {
	if b.Status == StatusBooked && HasPassed(b.BookingDate, b.EndTime, now) {
		return StatusDone
	}
	return b.Status
}

// IsActive бронирование держит слот
func (b *Booking) IsActive() bool {
	return b.Status == StatusBooked
}

// CanBeCancelled отменить можно только ещё не прошедшее BOOKED бронирование
func (b *Booking) CanBeCancelled(now time.Time) bool {
	return b.EffectiveStatus(now) == StatusBooked
}

// ConsumesOperator бронирование занимает оператора из пула
func (b *Booking) ConsumesOperator() bool {
	return b.IsActive() && b.OperationMode == ModeWithOperator
}

// Overlaps пересечение по минутам суток: start < bookingEnd && end > bookingStart
func (b *Booking) Overlaps(start, end types.TimeString) bool {
	return start.IsBefore(b.EndTime) && end.IsAfter(b.StartTime)
}

// BelongsTo бронирование принадлежит игроку
func (b *Booking) BelongsTo(userID int64) bool {
	return b.UserID != nil && *b.UserID == userID
}

// SameMachine совпадает машина (или оба без машины с одной категорией мяча)
func (b *Booking) SameMachine(machineID *int64, ball BallType) bool {
	if b.MachineID == nil || machineID == nil {
		return b.MachineID == nil && machineID == nil && b.BallType.Category() == ball.Category()
	}
	return *b.MachineID == *machineID
}

// BookingsFilter фильтр списков бронирований
type BookingsFilter struct {
	UserID    *int64
	MachineID *int64
	StartDate *time.Time
	EndDate   *time.Time
	Status    *BookingStatus // DONE фильтруется после чтения
}

// ConflictQuery поиск BOOKED бронирований, занимающих слот в классе машин
type ConflictQuery struct {
	Date      time.Time
	StartTime types.TimeString
	EndTime   types.TimeString
	Class     MachineClass
}
