package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-NetsBookingService/pkg/types"
)

// NotificationKind тип уведомления
type NotificationKind string

const (
	NotificationBookingCancelled NotificationKind = "booking_cancelled"
)

// Notification уведомление игроку, создаётся в транзакции каскадной отмены
// и публикуется в брокер после коммита
type Notification struct {
	ID          uuid.UUID
	UserID      int64
	BookingID   int64
	Kind        NotificationKind
	Payload     NotificationPayload
	CreatedAt   time.Time
	PublishedAt *time.Time
}

// NotificationPayload тело сообщения
type NotificationPayload struct {
	BookingID   int64            `json:"bookingId"`
	BookingDate string           `json:"bookingDate"`
	StartTime   types.TimeString `json:"startTime"`
	EndTime     types.TimeString `json:"endTime"`
	Reason      string           `json:"reason"`
	BlockID     int64            `json:"blockId"`
}

// NewCancellationNotification уведомление об отмене бронирования блокировкой
func NewCancellationNotification(b *Booking, block *BlockedSlot) *Notification {
	return &Notification{
		ID:        uuid.New(),
		UserID:    *b.UserID,
		BookingID: b.ID,
		Kind:      NotificationBookingCancelled,
		Payload: NotificationPayload{
			BookingID:   b.ID,
			BookingDate: b.BookingDate.Format(DateFormat),
			StartTime:   b.StartTime,
			EndTime:     b.EndTime,
			Reason:      block.Reason,
			BlockID:     block.ID,
		},
	}
}

// SchemaCapabilities возможности схемы БД, определяются один раз при старте
type SchemaCapabilities struct {
	PricingColumns bool // в bookings есть original_price, discount_amount, extra_charge
	BlockedSlots   bool // есть таблица blocked_slots
}
