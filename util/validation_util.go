// util/validation_util.go

package util

import (
	gate_errors "github.com/dev-mohitbeniwal/tokengate/errors"
)

const walletAddressLength = 44

type ValidationUtil struct{}

func NewValidationUtil() *ValidationUtil {
	return &ValidationUtil{}
}

// IsValidWalletAddress reports whether the address is exactly 44 characters
// drawn from the base58 alphabet (digits 1-9, uppercase letters excluding
// I and O, lowercase letters excluding l). Pure check, no network access;
// empty input is rejected, never panics.
func (v *ValidationUtil) IsValidWalletAddress(address string) bool {
	if len(address) != walletAddressLength {
		return false
	}
	for i := 0; i < len(address); i++ {
		if !isBase58Char(address[i]) {
			return false
		}
	}
	return true
}

// ValidateWalletAddress is the error-returning form used by the service
// layer.
func (v *ValidationUtil) ValidateWalletAddress(address string) error {
	if !v.IsValidWalletAddress(address) {
		return gate_errors.ErrInvalidWalletAddress
	}
	return nil
}

func isBase58Char(c byte) bool {
	switch {
	case c >= '1' && c <= '9':
		return true
	case c >= 'A' && c <= 'Z':
		return c != 'I' && c != 'O'
	case c >= 'a' && c <= 'z':
		return c != 'l'
	default:
		return false
	}
}
