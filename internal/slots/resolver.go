package slots

import (
	"time"

	"github.com/samber/lo"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
	"github.com/m04kA/SMC-NetsBookingService/pkg/types"
)

// ResolveInput снимок данных на момент запроса доступности
type ResolveInput struct {
	Date  time.Time
	Slots []domain.Slot
	Class domain.MachineClass
	Pitch *domain.PitchType

	// OperatorDependent запрос требует оператора (машина с оператором или режим WITH_OPERATOR)
	OperatorDependent bool
	OperatorCount     int

	// Bookings все BOOKED бронирования на дату по всем машинам
	Bookings []*domain.Booking
	Blocks   []*domain.BlockedSlot

	TimeSlabs domain.TimeSlabConfig
}

// Resolve вычисляет статус каждого слота.
// Приоритет: Blocked > Booked > OperatorUnavailable > Available. Цена здесь не считается.
func Resolve(in ResolveInput) []domain.ResolvedSlot {
	active := lo.Filter(in.Bookings, func(b *domain.Booking, _ int) bool {
		return b.IsActive()
	})
	blocks := lo.Filter(in.Blocks, func(b *domain.BlockedSlot, _ int) bool {
		return b.CoversDate(in.Date)
	})

	result := make([]domain.ResolvedSlot, len(in.Slots))

	for i, slot := range in.Slots {
		usage := OperatorUsage(active, slot.StartTime, slot.EndTime)
		operatorAvailable := usage < in.OperatorCount

		status := domain.SlotAvailable
		switch {
		case isBlocked(blocks, in, slot):
			status = domain.SlotBlocked
		case isBooked(active, in.Class, slot):
			status = domain.SlotBooked
		case in.OperatorDependent && !operatorAvailable:
			status = domain.SlotOperatorUnavailable
		}

		result[i] = domain.ResolvedSlot{
			Slot:              slot,
			Status:            status,
			OperatorAvailable: operatorAvailable,
			TimeSlab:          in.TimeSlabs.SlabFor(slot.StartTime),
		}
	}

	return result
}

// OperatorUsage количество бронирований с оператором, пересекающихся со слотом.
// Бронирования лежат на одной сетке, поэтому это счётчик по времени начала.
func OperatorUsage(bookings []*domain.Booking, start, end types.TimeString) int {
	return lo.CountBy(bookings, func(b *domain.Booking) bool {
		return b.ConsumesOperator() && b.Overlaps(start, end)
	})
}

// FindConflicts бронирования класса машин, занимающие слот
func FindConflicts(bookings []*domain.Booking, class domain.MachineClass, start, end types.TimeString) []*domain.Booking {
	return lo.Filter(bookings, func(b *domain.Booking, _ int) bool {
		return b.IsActive() && class.ContainsBooking(b) && b.Overlaps(start, end)
	})
}

func isBooked(bookings []*domain.Booking, class domain.MachineClass, slot domain.Slot) bool {
	return len(FindConflicts(bookings, class, slot.StartTime, slot.EndTime)) > 0
}

func isBlocked(blocks []*domain.BlockedSlot, in ResolveInput, slot domain.Slot) bool {
	return IsSlotBlocked(blocks, in.Date, slot, in.Class, in.Pitch)
}

// IsSlotBlocked проверка одного слота для валидации при бронировании
func IsSlotBlocked(blocks []*domain.BlockedSlot, date time.Time, slot domain.Slot, class domain.MachineClass, pitch *domain.PitchType) bool {
	return lo.SomeBy(blocks, func(b *domain.BlockedSlot) bool {
		return b.BlocksSlot(date, slot.StartTime, slot.EndTime, class, pitch)
	})
}
