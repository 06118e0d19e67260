package domain

import (
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-NetsBookingService/pkg/types"
)

// SlotStatus статус слота в выдаче доступности
type SlotStatus string

const (
	SlotAvailable           SlotStatus = "AVAILABLE"
	SlotBooked              SlotStatus = "BOOKED"
	SlotOperatorUnavailable SlotStatus = "OPERATOR_UNAVAILABLE"
	SlotBlocked             SlotStatus = "BLOCKED"
)

// Slot полуинтервал [StartTime, EndTime)
type Slot struct {
	StartTime types.TimeString
	EndTime   types.TimeString
}

// ResolvedSlot слот со статусом и ценой
type ResolvedSlot struct {
	Slot
	Status            SlotStatus
	OperatorAvailable bool
	TimeSlab          TimeSlab
	Price             decimal.Decimal
}

// IsBookable слот можно забронировать
func (s *ResolvedSlot) IsBookable() bool {
	return s.Status == SlotAvailable
}
