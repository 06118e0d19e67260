package validate_package

import (
	"context"
	"time"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
)

// PackageRepository интерфейс репозитория пакетов
type PackageRepository interface {
	GetUserPackage(ctx context.Context, id int64) (*domain.UserPackage, error)
	MarkExpired(ctx context.Context, id int64) error
}

// PolicyProvider действующая политика
type PolicyProvider interface {
	Effective(ctx context.Context) (*domain.Policy, error)
}

type TimeProvider interface {
	Now() time.Time
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

type RealTimeProvider struct{}

func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
