package blocks

import "errors"

var (
	ErrBlockNotFound = errors.New("block not found")
	ErrAccessDenied  = errors.New("access denied")
	ErrInvalidInput  = errors.New("invalid input data")
	ErrInternal      = errors.New("service: internal error")
)
