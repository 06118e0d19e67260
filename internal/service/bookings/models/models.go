package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// GetUserBookingsRequest запрос на получение бронирований пользователя
type GetUserBookingsRequest struct {
	CallerID int64   `json:"-"`
	UserID   int64   `json:"userId"`
	Status   *string `json:"status,omitempty"`
}

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	UserID             int64
	CancellationReason string
}

// GetScheduleRequest запрос расписания на дату
type GetScheduleRequest struct {
	CallerID  int64
	Date      time.Time
	MachineID *int64
	Status    *string
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID            int64   `json:"id"`
	UserID        *int64  `json:"userId,omitempty"`
	CreatedBy     int64   `json:"createdBy"`
	MachineID     *int64  `json:"machineId,omitempty"`
	BookingDate   string  `json:"bookingDate"` // "2025-10-15"
	StartTime     string  `json:"startTime"`   // "10:00"
	EndTime       string  `json:"endTime"`
	BallType      string  `json:"ballType"`
	PitchType     *string `json:"pitchType,omitempty"`
	OperationMode string  `json:"operationMode"`
	Status        string  `json:"status"`

	Price          decimal.Decimal `json:"price"`
	OriginalPrice  decimal.Decimal `json:"originalPrice"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	ExtraCharge    decimal.Decimal `json:"extraCharge"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledBy        *int64  `json:"cancelledBy,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO; статус DONE вычисляется на момент now
func FromDomainBooking(b *domain.Booking, now time.Time) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:                 b.ID,
		UserID:             b.UserID,
		CreatedBy:          b.CreatedBy,
		MachineID:          b.MachineID,
		BookingDate:        b.BookingDate.Format(domain.DateFormat),
		StartTime:          b.StartTime.String(),
		EndTime:            b.EndTime.String(),
		BallType:           string(b.BallType),
		OperationMode:      string(b.OperationMode),
		Status:             string(b.EffectiveStatus(now)),
		Price:              b.Price,
		OriginalPrice:      b.OriginalPrice,
		DiscountAmount:     b.DiscountAmount,
		ExtraCharge:        b.ExtraCharge,
		CancellationReason: b.CancellationReason,
		CancelledBy:        b.CancelledBy,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}

	if b.PitchType != nil {
		pitch := string(*b.PitchType)
		resp.PitchType = &pitch
	}

	if b.CancelledAt != nil {
		cancelledStr := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking, now time.Time) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking, now); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(status)
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}
