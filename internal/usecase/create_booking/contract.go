package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
	"github.com/m04kA/SMC-NetsBookingService/pkg/types"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	Update(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	FindConflicts(ctx context.Context, q domain.ConflictQuery) ([]*domain.Booking, error)
	ListBookedOnDate(ctx context.Context, date time.Time) ([]*domain.Booking, error)
	LockSlot(ctx context.Context, date time.Time, start types.TimeString) error
}

// BlockRepository интерфейс репозитория блокировок
type BlockRepository interface {
	ListForDate(ctx context.Context, date time.Time) ([]*domain.BlockedSlot, error)
}

// MachineRepository интерфейс справочника машин
type MachineRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Machine, error)
	ListActive(ctx context.Context, category *domain.MachineCategory) ([]*domain.Machine, error)
}

// PackageRepository интерфейс репозитория пакетов
type PackageRepository interface {
	GetUserPackage(ctx context.Context, id int64) (*domain.UserPackage, error)
	IncrementUsed(ctx context.Context, id int64, n int) error
	MarkExpired(ctx context.Context, id int64) error
	CreateLink(ctx context.Context, link *domain.PackageBooking) (*domain.PackageBooking, error)
	GetLinkByBookingID(ctx context.Context, bookingID int64) (*domain.PackageBooking, error)
}

// PolicyProvider действующая политика
type PolicyProvider interface {
	Effective(ctx context.Context) (*domain.Policy, error)
}

// RoleResolver определяет роль пользователя
type RoleResolver interface {
	IsAdmin(ctx context.Context, userID int64) bool
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics доменные счётчики
type Metrics interface {
	BookingCreated(ballType string, packageFunded bool)
	BookingRejected(reason string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
