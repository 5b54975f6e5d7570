package errors

import "errors"

var (
	ErrInvalidAllocation  = errors.New("amount cannot cover the requested share count")
	ErrInvalidSeedRequest = errors.New("invalid seed request")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrCooldownActive     = errors.New("previous pool is still being consumed")
	ErrTooEarly           = errors.New("pool cannot be returned yet")
	ErrAlreadyClaimed     = errors.New("user already claimed this pool")
	ErrRoundClaimed       = errors.New("user already claimed this festive round in another group")
	ErrRestricted         = errors.New("pool is reserved for another user")
	ErrExhausted          = errors.New("pool has no shares left")
	ErrAlreadySettled     = errors.New("pool is already settled")
	ErrPoolNotFound       = errors.New("no active pool in group")
	ErrPoolConflict       = errors.New("group already has an active pool")
	ErrRoundNotFound      = errors.New("festive round not found")
	ErrUnauthorizedAdmin  = errors.New("admin token rejected")
)
