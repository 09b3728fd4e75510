package migration

import (
	"errors"
)

var (
	ErrMissingSender       = errors.New("sender account is required")
	ErrMissingRecipient    = errors.New("recipient address is required")
	ErrSameAccount         = errors.New("recipient must differ from the legacy wallet")
	ErrInsufficientForGas  = errors.New("native balance does not cover the gas buffer")
	ErrMigrationInProgress = errors.New("migration already in progress")
)
