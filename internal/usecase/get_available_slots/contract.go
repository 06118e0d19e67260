package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	// ListBookedOnDate все BOOKED бронирования на дату по всем машинам
	ListBookedOnDate(ctx context.Context, date time.Time) ([]*domain.Booking, error)
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

// PolicyProvider действующая политика
type PolicyProvider interface {
	Effective(ctx context.Context) (*domain.Policy, error)
}

// RoleResolver определяет роль пользователя
type RoleResolver interface {
	IsAdmin(ctx context.Context, userID int64) bool
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
