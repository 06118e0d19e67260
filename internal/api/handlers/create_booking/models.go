package create_booking

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
	createBooking "github.com/m04kA/SMC-NetsBookingService/internal/usecase/create_booking"
	"github.com/m04kA/SMC-NetsBookingService/pkg/types"
)

var errMixedOwnership = errors.New("all slots must share userId and userPackageId")

// SlotRequest HTTP модель одного слота
type SlotRequest struct {
	BookingDate   string  `json:"bookingDate"` // "2025-10-15"
	StartTime     string  `json:"startTime"`   // "10:00"
	EndTime       string  `json:"endTime,omitempty"`
	MachineID     *int64  `json:"machineId,omitempty"`
	BallType      *string `json:"ballType,omitempty"`
	PitchType     *string `json:"pitchType,omitempty"`
	OperationMode *string `json:"operationMode,omitempty"`
	UserPackageID *int64  `json:"userPackageId,omitempty"`
	UserID        *int64  `json:"userId,omitempty"`
}

// CreateBookingRequest HTTP request model: массив слотов
type CreateBookingRequest []SlotRequest

// BookingResponse HTTP response model
type BookingResponse struct {
	ID             int64           `json:"id"`
	UserID         *int64          `json:"userId,omitempty"`
	MachineID      *int64          `json:"machineId,omitempty"`
	BookingDate    string          `json:"bookingDate"`
	StartTime      string          `json:"startTime"`
	EndTime        string          `json:"endTime"`
	BallType       string          `json:"ballType"`
	PitchType      *string         `json:"pitchType,omitempty"`
	OperationMode  string          `json:"operationMode"`
	Status         string          `json:"status"`
	Price          decimal.Decimal `json:"price"`
	OriginalPrice  decimal.Decimal `json:"originalPrice"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	ExtraCharge    decimal.Decimal `json:"extraCharge"`
	UserPackageID  *int64          `json:"userPackageId,omitempty"`
	Updated        bool            `json:"updated"`
	CreatedAt      string          `json:"createdAt"`
	UpdatedAt      string          `json:"updatedAt"`
}

// CreateBookingResponse бронирования в порядке запроса
type CreateBookingResponse struct {
	Bookings         []BookingResponse `json:"bookings"`
	Total            decimal.Decimal   `json:"total"`
	ExtraChargeTotal decimal.Decimal   `json:"extraChargeTotal"`
	PolicyVersion    *time.Time        `json:"policyVersion,omitempty"`
}

// SlotErrorDetails детали отказа по слоту
type SlotErrorDetails struct {
	SlotIndex int               `json:"slotIndex"`
	Committed []BookingResponse `json:"committed"`
	Remaining *int              `json:"remainingSessions,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case.
// userId и userPackageId одинаковы для всех слотов пакета.
func (r CreateBookingRequest) ToUseCaseRequest(callerID int64) (*createBooking.Request, error) {
	req := &createBooking.Request{
		CallerID: callerID,
		Items:    make([]createBooking.Item, 0, len(r)),
	}

	for i, slot := range r {
		if i == 0 {
			req.UserID = slot.UserID
			req.UserPackageID = slot.UserPackageID
		} else if !sameID(req.UserID, slot.UserID) || !sameID(req.UserPackageID, slot.UserPackageID) {
			return nil, errMixedOwnership
		}

		item, err := slot.toItem()
		if err != nil {
			return nil, fmt.Errorf("slot %d: %w", i, err)
		}
		req.Items = append(req.Items, item)
	}

	return req, nil
}

func (s SlotRequest) toItem() (createBooking.Item, error) {
	var item createBooking.Item

	date, err := time.Parse(domain.DateFormat, s.BookingDate)
	if err != nil {
		return item, err
	}

	start, err := types.NewTimeStringFromString(s.StartTime)
	if err != nil {
		return item, err
	}

	var end types.TimeString
	if s.EndTime != "" {
		if end, err = types.NewTimeStringFromString(s.EndTime); err != nil {
			return item, err
		}
	}

	item = createBooking.Item{
		MachineID: s.MachineID,
		Date:      date,
		StartTime: start,
		EndTime:   end,
	}

	if s.BallType != nil {
		ball := domain.BallType(strings.ToUpper(*s.BallType))
		item.BallType = &ball
	}
	if s.PitchType != nil {
		pitch := domain.PitchType(strings.ToUpper(*s.PitchType))
		item.PitchType = &pitch
	}
	if s.OperationMode != nil {
		mode := domain.OperationMode(strings.ToUpper(*s.OperationMode))
		item.OperationMode = &mode
	}

	return item, nil
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *CreateBookingResponse {
	result := &CreateBookingResponse{
		Bookings:         make([]BookingResponse, len(resp.Bookings)),
		Total:            resp.Total,
		ExtraChargeTotal: resp.ExtraChargeTotal,
	}

	for i, b := range resp.Bookings {
		result.Bookings[i] = fromBooking(b)
	}

	if !resp.PolicyVersion.IsZero() {
		version := resp.PolicyVersion
		result.PolicyVersion = &version
	}

	return result
}

func fromBooking(b createBooking.Booking) BookingResponse {
	resp := BookingResponse{
		ID:             b.ID,
		UserID:         b.UserID,
		MachineID:      b.MachineID,
		BookingDate:    b.BookingDate.Format(domain.DateFormat),
		StartTime:      b.StartTime.String(),
		EndTime:        b.EndTime.String(),
		BallType:       string(b.BallType),
		OperationMode:  string(b.OperationMode),
		Status:         string(b.Status),
		Price:          b.Price,
		OriginalPrice:  b.OriginalPrice,
		DiscountAmount: b.DiscountAmount,
		ExtraCharge:    b.ExtraCharge,
		UserPackageID:  b.UserPackageID,
		Updated:        b.Updated,
		CreatedAt:      b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      b.UpdatedAt.Format(time.RFC3339),
	}

	if b.PitchType != nil {
		pitch := string(*b.PitchType)
		resp.PitchType = &pitch
	}

	return resp
}
