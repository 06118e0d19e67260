package domain

import (
	"time"

	"github.com/m04kA/SMC-NetsBookingService/pkg/types"
)

// BlockedSlot административная блокировка диапазона дат.
// Без времени начала и конца блокирует день целиком.
type BlockedSlot struct {
	ID        int64
	StartDate time.Time
	EndDate   time.Time
	StartTime *types.TimeString
	EndTime   *types.TimeString
	MachineID *int64
	PitchType *PitchType
	Reason    string
	CreatedBy int64
	CreatedAt time.Time
}

// IsWholeDay блокировка без диапазона времени
func (b *BlockedSlot) IsWholeDay() bool {
	return b.StartTime == nil || b.EndTime == nil
}

// CoversDate дата попадает в диапазон [StartDate, EndDate]
func (b *BlockedSlot) CoversDate(date time.Time) bool {
	d := calendarDay(date)
	return !d.Before(calendarDay(b.StartDate)) && !d.After(calendarDay(b.EndDate))
}

// OverlapsTime пересечение по минутам суток: slotStart < blockEnd && slotEnd > blockStart
func (b *BlockedSlot) OverlapsTime(start, end types.TimeString) bool {
	if b.IsWholeDay() {
		return true
	}
	return start.IsBefore(*b.EndTime) && end.IsAfter(*b.StartTime)
}

// MatchesPitch фильтр покрытия; покрытие запроса nil считается базовым
func (b *BlockedSlot) MatchesPitch(pitch *PitchType) bool {
	if b.PitchType == nil {
		return true
	}
	return b.PitchType.Normalize() == PitchOrBaseline(pitch)
}

// BlocksSlot блокировка закрывает слот для класса машин и покрытия
func (b *BlockedSlot) BlocksSlot(date time.Time, start, end types.TimeString, class MachineClass, pitch *PitchType) bool {
	return b.CoversDate(date) &&
		class.MatchesMachineFilter(b.MachineID) &&
		b.MatchesPitch(pitch) &&
		b.OverlapsTime(start, end)
}

// AffectsBooking бронирование попадает под каскадную отмену
func (b *BlockedSlot) AffectsBooking(booking *Booking) bool {
	if !booking.IsActive() || !b.CoversDate(booking.BookingDate) {
		return false
	}
	if b.MachineID != nil && (booking.MachineID == nil || *booking.MachineID != *b.MachineID) {
		return false
	}
	return b.MatchesPitch(booking.PitchType) && b.OverlapsTime(booking.StartTime, booking.EndTime)
}

// BlocksFilter фильтр списка блокировок
type BlocksFilter struct {
	From *time.Time
	To   *time.Time
}
