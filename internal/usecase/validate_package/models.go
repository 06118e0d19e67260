package validate_package

import (
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
	"github.com/m04kA/SMC-NetsBookingService/pkg/types"
)

// Request проверка, покрывает ли пакет предполагаемое бронирование
type Request struct {
	UserID        int64
	UserPackageID int64
	BallType      domain.BallType
	PitchType     *domain.PitchType
	MachineID     *int64
	StartTime     types.TimeString
	SlotCount     int
}

// Response результат проверки. При отказе Valid=false и Reason заполнен.
type Response struct {
	Valid       bool
	Reason      string
	Message     string
	Remaining   int
	ExtraCharge decimal.Decimal
	PerSlot     decimal.Decimal
	Axes        []string
}
