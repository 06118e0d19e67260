package blocks

import (
	"context"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
)

// BlockRepository интерфейс репозитория блокировок
type BlockRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.BlockedSlot, error)
	List(ctx context.Context, filter domain.BlocksFilter) ([]*domain.BlockedSlot, error)
	Delete(ctx context.Context, id int64) error
}

// RoleResolver определяет роль пользователя
type RoleResolver interface {
	IsAdmin(ctx context.Context, userID int64) bool
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
