package get_schedule_bookings

import (
	"context"

	"github.com/m04kA/SMC-NetsBookingService/internal/service/bookings/models"
)

type BookingService interface {
	GetScheduleBookings(ctx context.Context, req *models.GetScheduleRequest) (*models.BookingListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
