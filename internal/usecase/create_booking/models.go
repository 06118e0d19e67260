package create_booking

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
	"github.com/m04kA/SMC-NetsBookingService/pkg/types"
)

// Request пакет слотов на бронирование (от 1 до MaxBatchSize)
type Request struct {
	CallerID      int64  // X-User-ID
	UserID        *int64 // игрок; администратор может бронировать за другого игрока или без игрока
	UserPackageID *int64 // оплата сессиями пакета
	Items         []Item
}

// Item один слот. EndTime можно не указывать, он вычисляется по длительности слота.
type Item struct {
	MachineID     *int64
	BallType      *domain.BallType
	PitchType     *domain.PitchType
	OperationMode *domain.OperationMode
	Date          time.Time
	StartTime     types.TimeString
	EndTime       types.TimeString
}

// Response сохранённые бронирования в порядке запроса
type Response struct {
	Bookings         []Booking
	Total            decimal.Decimal
	ExtraChargeTotal decimal.Decimal
	PolicyVersion    time.Time
}

// Booking сохранённое бронирование
type Booking struct {
	ID             int64
	UserID         *int64
	MachineID      *int64
	BookingDate    time.Time
	StartTime      types.TimeString
	EndTime        types.TimeString
	BallType       domain.BallType
	PitchType      *domain.PitchType
	OperationMode  domain.OperationMode
	Status         domain.BookingStatus
	Price          decimal.Decimal
	OriginalPrice  decimal.Decimal
	DiscountAmount decimal.Decimal
	ExtraCharge    decimal.Decimal
	UserPackageID  *int64
	Updated        bool // повторная отправка того же слота обновила существующее бронирование
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func fromDomainBooking(b *domain.Booking, userPackageID *int64, updated bool) Booking {
	return Booking{
		ID:             b.ID,
		UserID:         b.UserID,
		MachineID:      b.MachineID,
		BookingDate:    b.BookingDate,
		StartTime:      b.StartTime,
		EndTime:        b.EndTime,
		BallType:       b.BallType,
		PitchType:      b.PitchType,
		OperationMode:  b.OperationMode,
		Status:         b.Status,
		Price:          b.Price,
		OriginalPrice:  b.OriginalPrice,
		DiscountAmount: b.DiscountAmount,
		ExtraCharge:    b.ExtraCharge,
		UserPackageID:  userPackageID,
		Updated:        updated,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}
