package list_blocks

import (
	"context"
	"time"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
)

type BlockService interface {
	List(ctx context.Context, callerID int64, from, to *time.Time) ([]*domain.BlockedSlot, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
