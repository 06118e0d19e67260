package policy

import (
	"context"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
)

// PolicyRepository хранилище сырых значений политики
type PolicyRepository interface {
	GetByKeys(ctx context.Context, keys []string) (map[string]domain.PolicyEntry, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Debug(format string, v ...interface{})
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
