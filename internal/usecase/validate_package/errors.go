package validate_package

import "errors"

var (
	ErrPackageNotFound = errors.New("validate_package: user package not found")
	ErrInvalidInput    = errors.New("validate_package: invalid input data")
	ErrInternal        = errors.New("validate_package: internal error")
)
