package bookings

import (
	"context"
	"time"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	List(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error)
	Cancel(ctx context.Context, id int64, reason string, cancelledBy int64) error
}

// PackageRepository возврат сессий пакета при отмене
type PackageRepository interface {
	GetLinkByBookingID(ctx context.Context, bookingID int64) (*domain.PackageBooking, error)
	DecrementUsed(ctx context.Context, id int64, n int) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// RoleResolver определяет роль пользователя
type RoleResolver interface {
	IsAdmin(ctx context.Context, userID int64) bool
}

// TimeProvider источник текущего времени
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальное время
type RealTimeProvider struct{}

func (RealTimeProvider) Now() time.Time {
	return time.Now()
}
