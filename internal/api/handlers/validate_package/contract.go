package validate_package

import (
	"context"

	validatePackage "github.com/m04kA/SMC-NetsBookingService/internal/usecase/validate_package"
)

type ValidatePackageUseCase interface {
	Execute(ctx context.Context, req *validatePackage.Request) (*validatePackage.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
