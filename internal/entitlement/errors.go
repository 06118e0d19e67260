package entitlement

import (
	"errors"
	"fmt"
)

var (
	// ErrNotOwner пакет принадлежит другому пользователю
	ErrNotOwner = errors.New("entitlement: package belongs to another user")

	// ErrInactive пакет не активен (отменён)
	ErrInactive = errors.New("entitlement: package is not active")

	// ErrExpired срок действия пакета истёк
	ErrExpired = errors.New("entitlement: package has expired")

	// ErrInsufficientSessions в пакете недостаточно сессий
	ErrInsufficientSessions = errors.New("entitlement: not enough sessions left")

	// ErrCategoryMismatch пакет не покрывает категорию мяча
	ErrCategoryMismatch = errors.New("entitlement: package does not cover this ball type")

	// ErrInvalidRequest некорректный запрос к валидатору
	ErrInvalidRequest = errors.New("entitlement: invalid request")
)

// Reason машиночитаемая причина отказа
type Reason string

const (
	ReasonNotOwner             Reason = "not_owner"
	ReasonInactive             Reason = "inactive"
	ReasonExpired              Reason = "expired"
	ReasonInsufficientSessions Reason = "insufficient_sessions"
	ReasonCategoryMismatch     Reason = "category_mismatch"
)

// Error отказ в использовании пакета
type Error struct {
	Reason    Reason
	Remaining int // остаток сессий для insufficient_sessions
	err       error
}

func newError(reason Reason, err error) *Error {
	return &Error{Reason: reason, err: err}
}

func (e *Error) Error() string {
	if e.Reason == ReasonInsufficientSessions {
		return fmt.Sprintf("%v: %d remaining", e.err, e.Remaining)
	}
	return e.err.Error()
}

func (e *Error) Unwrap() error {
	return e.err
}
