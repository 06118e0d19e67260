package block_slots

import (
	"time"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
	"github.com/m04kA/SMC-NetsBookingService/pkg/types"
)

// Request блокировка диапазона дат; без времени блокируется весь день
type Request struct {
	CallerID  int64
	StartDate time.Time
	EndDate   time.Time
	StartTime *types.TimeString
	EndTime   *types.TimeString
	MachineID *int64
	PitchType *domain.PitchType
	Reason    string
}

// Response созданная блокировка и отменённые бронирования
type Response struct {
	Block              *domain.BlockedSlot
	CancelledBookings  []int64
	NotificationsSent  int
	NotificationsTotal int
}
