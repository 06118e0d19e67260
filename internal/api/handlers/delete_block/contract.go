package delete_block

import "context"

type BlockService interface {
	Delete(ctx context.Context, callerID, id int64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
