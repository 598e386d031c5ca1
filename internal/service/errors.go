package service

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Stock and order failures. Callers compare with errors.Is; the wrapped message carries detail.
var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrAlreadyProcessed  = errors.New("already processed")
	ErrAlreadyCancelled  = errors.New("already cancelled")
	ErrReversalConflict  = errors.New("items already stocked in but since sold")
	ErrOrderActive       = errors.New("stock out is linked to an active order")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrTerminalState     = errors.New("order is in a terminal state")
)

var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation failed")
	ErrConflict         = errors.New("already exists")
	ErrInactiveProduct  = errors.New("product is inactive")
	ErrInactiveSupplier = errors.New("supplier is inactive")
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrSessionReplaced    = errors.New("session expired (logged in on another device)")
)

// lookupErr turns a missing record into ErrNotFound and wraps anything else.
func lookupErr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Wrap(ErrNotFound, what)
	}
	return errors.Wrapf(err, "load %s", what)
}

func validationErr(err error) error {
	return errors.Wrap(ErrValidation, err.Error())
}
