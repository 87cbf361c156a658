// errors/gate_errors.go
package errors

import "errors"

var (
	ErrInvalidWalletAddress = errors.New("invalid wallet address")
	ErrNoWalletRegistered   = errors.New("no wallet registered")
	ErrUserNotFound         = errors.New("user not found")

	// ErrBalanceUnavailable is the soft failure returned when every balance
	// source failed and no cached value exists for the wallet.
	ErrBalanceUnavailable = errors.New("balance unavailable")

	// ErrRateLimited is returned by a balance source that answered with a
	// rate-limit signal; the oracle skips to the next source.
	ErrRateLimited = errors.New("source rate limited")

	ErrRegistryOperation = errors.New("registry operation failed")
	ErrInternalServer    = errors.New("internal server error")
)
