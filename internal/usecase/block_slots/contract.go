package block_slots

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
	"github.com/m04kA/SMC-NetsBookingService/internal/integrations/notifier"
)

// BlockRepository интерфейс репозитория блокировок
type BlockRepository interface {
	Create(ctx context.Context, block *domain.BlockedSlot) (*domain.BlockedSlot, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	FindForBlock(ctx context.Context, block *domain.BlockedSlot) ([]*domain.Booking, error)
	Cancel(ctx context.Context, id int64, reason string, cancelledBy int64) error
}

// MachineRepository интерфейс справочника машин
type MachineRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Machine, error)
}

// PackageRepository возврат сессий пакетов
type PackageRepository interface {
	GetLinkByBookingID(ctx context.Context, bookingID int64) (*domain.PackageBooking, error)
	DecrementUsed(ctx context.Context, id int64, n int) error
}

// NotificationRepository исходящие уведомления
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error)
	MarkPublished(ctx context.Context, id uuid.UUID) error
}

// Publisher публикация в брокер. nil отключает публикацию, уведомления остаются в таблице.
type Publisher interface {
	Publish(ctx context.Context, msg notifier.Message) error
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
	BookingsCascadeCancelled(n int)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
